package filter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicFilter faults on every call.
type panicFilter struct{}

func (panicFilter) Name() string { return "panic" }
func (panicFilter) Classify(req *Request) Decision { panic("matcher exploded") }

// countingFilter records how often it ran.
type countingFilter struct {
	calls atomic.Int64
}

func (c *countingFilter) Name() string { return "counting" }

func (c *countingFilter) Classify(req *Request) Decision {
	c.calls.Add(1)
	return Allow
}

func TestRegistry_EndToEnd(t *testing.T) {
	t.Run("single group blocks", func(t *testing.T) {
		sw := newSwitch(true)
		r := NewRegistry(NewBase("ads", WithGroups(NewGroup("carousel", KindPath, sw, "carousel_ad"))))
		assert.Equal(t, Block, r.Classify(pathRequest("x|carousel_ad|y", 0)))

		sw.on.Store(false)
		assert.Equal(t, Allow, r.Classify(pathRequest("x|carousel_ad|y", 0)))
	})

	t.Run("exception wins", func(t *testing.T) {
		r := NewRegistry(NewBase("ads",
			WithExceptions("comment_thread"),
			WithGroups(NewGroup("interstitial", KindPath, nil, "_interstitial")),
		))
		assert.Equal(t, Allow, r.Classify(pathRequest("comment_thread|_interstitial", 0)))
	})

	t.Run("content index gate", func(t *testing.T) {
		r := NewRegistry(OnlyAtIndex(NewBase("shelf",
			WithGroups(NewGroup("shelf", KindPath, nil, "horizontal_shelf.eml")),
		), 0))
		assert.Equal(t, Block, r.Classify(pathRequest("horizontal_shelf.eml", 0)))
		assert.Equal(t, Allow, r.Classify(pathRequest("horizontal_shelf.eml", 2)))
	})

	t.Run("anchored pattern", func(t *testing.T) {
		r := NewRegistry(NewBase("buttons",
			WithGroups(NewGroup("action", KindPath, nil, "|video_action_button")),
		))
		assert.Equal(t, Block, r.Classify(pathRequest("ContainerType|video_action_button", 0)))
		assert.Equal(t, Allow, r.Classify(pathRequest("xvideo_action_button", 0)))
	})
}

func TestRegistry_FirstBlockWins(t *testing.T) {
	counter := &countingFilter{}
	r := NewRegistry(
		NewBase("ads", WithGroups(NewGroup("g", KindPath, nil, "ad"))),
		counter,
	)

	assert.Equal(t, Block, r.Classify(pathRequest("x|ad", 0)))
	assert.Equal(t, int64(0), counter.calls.Load(), "filters after a block must not run")

	assert.Equal(t, Allow, r.Classify(pathRequest("x|shelf", 0)))
	assert.Equal(t, int64(1), counter.calls.Load())
}

func TestRegistry_FailOpen(t *testing.T) {
	counter := &countingFilter{}
	exploding := NewBase("toggle-panics", WithGroups(
		NewGroup("g", KindPath, ToggleFunc(func() bool { panic("settings unavailable") }), "shelf"),
	))
	r := NewRegistry(
		panicFilter{},
		exploding,
		counter,
		NewBase("shelf", WithGroups(NewGroup("g", KindPath, nil, "shelf"))),
	)

	var decision Decision
	require.NotPanics(t, func() {
		decision = r.Classify(pathRequest("home|shelf", 0))
	})
	assert.Equal(t, Block, decision, "later filters still decide")
	assert.Equal(t, int64(1), counter.calls.Load())

	assert.Equal(t, Allow, r.Classify(pathRequest("home|other", 0)))
}

func TestRegistry_Idempotent(t *testing.T) {
	r := NewRegistry(NewBase("ads",
		WithExceptions("comment_thread"),
		WithGroups(NewGroup("g", KindPath, newSwitch(true), "carousel_ad")),
	))

	paths := []string{"x|carousel_ad", "comment_thread|carousel_ad", "x|shelf"}
	for _, p := range paths {
		first := r.Classify(pathRequest(p, 0))
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, r.Classify(pathRequest(p, 0)), "path %q", p)
		}
	}
}

func TestRegistry_IsFiltered(t *testing.T) {
	r := NewRegistry(NewBase("mixed", WithGroups(
		NewGroup("ids", KindIdentifier, nil, "info_card_teaser_overlay.eml"),
		NewGroup("paths", KindPath, nil, "carousel_ad"),
		NewGroup("buf", KindBuffer, nil, "yt_outline_gear"),
	)))

	tests := []struct {
		name       string
		identifier string
		path       string
		buffer     []byte
		want       bool
	}{
		{name: "identifier match", identifier: "info_card_teaser_overlay.eml", path: "x", want: true},
		{name: "path match", path: "a|carousel_ad", want: true},
		{name: "buffer match", path: "menu", buffer: []byte("\x01yt_outline_gear"), want: true},
		{name: "identifier pattern in path only", path: "info_card_teaser_overlay.eml", want: false},
		{name: "buffer pattern in path only", path: "yt_outline_gear", want: false},
		{name: "nothing", identifier: "row", path: "a|b", buffer: []byte("c"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsFiltered(tt.identifier, tt.path, tt.buffer, 0))
		})
	}
}

func TestRegistry_Decide(t *testing.T) {
	r := NewRegistry(NewBase("menu", WithGroups(
		NewGroup("buf", KindBuffer, nil, "yt_outline_gear"),
	)))

	// The preset kind is ignored
	req := &Request{Path: "menu", Buffer: []byte("yt_outline_gear"), Kind: KindIdentifier}
	assert.Equal(t, Block, r.Decide(req))
	assert.Equal(t, KindBuffer, req.Kind)

	// Without a buffer the buffer groups never run
	assert.Equal(t, Allow, r.Decide(&Request{Path: "yt_outline_gear"}))
	assert.Equal(t, Allow, r.Decide(nil))
}

func TestRegistry_Stats(t *testing.T) {
	carousel := NewGroup("carousel", KindIdentifier, nil, "carousel_ad")
	general := NewGroup("general", KindPath, newSwitch(false), "banner")
	r := NewRegistry(
		OnlyAtIndex(NewBase("ads", WithGroups(general, carousel)), 0),
		&countingFilter{},
		nil,
	)
	require.Len(t, r.Filters(), 2)

	r.IsFiltered("carousel_ad", "x", nil, 0)
	r.IsFiltered("carousel_ad", "x", nil, 0)

	stats := r.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, GroupStats{Filter: "ads", Group: "carousel", Kind: KindIdentifier, Enabled: true, Hits: 2}, stats[0])
	assert.Equal(t, GroupStats{Filter: "ads", Group: "general", Kind: KindPath, Enabled: false, Hits: 0}, stats[1])
}

func TestRegistry_Concurrent(t *testing.T) {
	sw := newSwitch(true)
	g := NewGroup("g", KindPath, sw, "carousel_ad")
	r := NewRegistry(NewBase("ads", WithExceptions("comment_thread"), WithGroups(g)))

	var wg sync.WaitGroup
	var wrong atomic.Int64
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				if r.Classify(pathRequest("comment_thread|carousel_ad", j)) != Allow {
					wrong.Add(1)
				}
				if r.Classify(pathRequest("x|carousel_ad", j)) != Block {
					wrong.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, wrong.Load())
	assert.Equal(t, uint64(32*500), g.Hits())
}

func TestParallelClassifier(t *testing.T) {
	r := NewRegistry(NewBase("ads", WithGroups(NewGroup("g", KindPath, nil, "carousel_ad"))))
	pc := NewParallelClassifier(r, 3)

	requests := []Request{
		{Path: "x|carousel_ad"},
		{Path: "x|shelf"},
		{Path: "carousel_ad", Kind: KindBuffer},
		{Identifier: "carousel_ad", Path: "feed"},
	}

	var calls atomic.Int64
	result, err := pc.Classify(context.Background(), requests, func(completed, total int) {
		calls.Add(1)
		assert.Equal(t, len(requests), total)
	})
	require.NoError(t, err)

	assert.Equal(t, []Decision{Block, Allow, Block, Allow}, result.Decisions)
	assert.Equal(t, 2, result.Blocked)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, int64(len(requests)), calls.Load())
	assert.Greater(t, result.TotalTime, time.Duration(0))
}

func TestParallelClassifier_Cancelled(t *testing.T) {
	r := NewRegistry(NewBase("ads", WithGroups(NewGroup("g", KindPath, nil, "carousel_ad"))))
	pc := NewParallelClassifier(r, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := pc.Classify(ctx, []Request{{Path: "carousel_ad", Kind: KindPath}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, []Decision{Allow}, result.Decisions)

	empty, err := pc.Classify(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Decisions)
}
