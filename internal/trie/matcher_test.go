package trie

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher_Find(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		input    string
		want     string
		offset   int
		found    bool
	}{
		{
			name:     "free substring",
			patterns: []string{"ads_video"},
			input:    "prefix_ads_video_suffix",
			want:     "ads_video",
			offset:   7,
			found:    true,
		},
		{
			name:     "anchored at start",
			patterns: []string{"|foo"},
			input:    "foo_bar",
			want:     "|foo",
			offset:   0,
			found:    true,
		},
		{
			name:     "anchored after boundary",
			patterns: []string{"|foo"},
			input:    "x|foo_bar",
			want:     "|foo",
			offset:   2,
			found:    true,
		},
		{
			name:     "anchored mid token",
			patterns: []string{"|foo"},
			input:    "xfoo_bar",
			found:    false,
		},
		{
			name:     "anchored action button after container",
			patterns: []string{"|video_action_button"},
			input:    "ContainerType|video_action_button",
			want:     "|video_action_button",
			offset:   14,
			found:    true,
		},
		{
			name:     "anchored action button without boundary",
			patterns: []string{"|video_action_button"},
			input:    "xvideo_action_button",
			found:    false,
		},
		{
			name:     "anchored later occurrence after earlier miss",
			patterns: []string{"|foo"},
			input:    "xfoo|foo",
			want:     "|foo",
			offset:   5,
			found:    true,
		},
		{
			name:     "case sensitive",
			patterns: []string{"carousel_ad"},
			input:    "x|Carousel_Ad|y",
			found:    false,
		},
		{
			name:     "no wildcard semantics",
			patterns: []string{"ads_*"},
			input:    "ads_video",
			found:    false,
		},
		{
			name:     "literal wildcard bytes still match",
			patterns: []string{"ads_*"},
			input:    "x|ads_*|y",
			want:     "ads_*",
			offset:   2,
			found:    true,
		},
		{
			name:     "boundary inside free pattern",
			patterns: []string{"CellType|"},
			input:    "comment_section|CellType|chip",
			want:     "CellType|",
			offset:   16,
			found:    true,
		},
		{
			name:     "empty input",
			patterns: []string{"a"},
			input:    "",
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.patterns...)
			got, ok := m.Find(tt.input)
			require.Equal(t, tt.found, ok)
			if !tt.found {
				return
			}
			assert.Equal(t, tt.want, got.Pattern)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func TestMatcher_RegistrationOrderWins(t *testing.T) {
	// Both patterns start at offset 1; the earlier registration wins even
	// though it is shorter.
	m := New("abc", "abc_long")
	got, ok := m.Find("zabc_long")
	require.True(t, ok)
	assert.Equal(t, "abc", got.Pattern)
	assert.Equal(t, 0, got.Index)

	m = New("abc_long", "abc")
	got, ok = m.Find("zabc_long")
	require.True(t, ok)
	assert.Equal(t, "abc_long", got.Pattern)
}

func TestMatcher_LeftmostOffsetWins(t *testing.T) {
	m := New("shelf", "home")
	got, ok := m.Find("home|shelf")
	require.True(t, ok)
	assert.Equal(t, "home", got.Pattern)
	assert.Equal(t, 1, got.Index)
	assert.Equal(t, 0, got.Offset)
}

func TestMatcher_AnchoredAndFreeSameBody(t *testing.T) {
	m := New("|comment.", "comment.")
	require.Equal(t, 2, m.Len())

	got, ok := m.Find("x|comment.reply")
	require.True(t, ok)
	assert.True(t, got.Anchored)
	assert.Equal(t, "|comment.", got.Pattern)

	got, ok = m.Find("xcomment.reply")
	require.True(t, ok)
	assert.False(t, got.Anchored)
	assert.Equal(t, "comment.", got.Pattern)
}

func TestMatcher_Empty(t *testing.T) {
	m := New()
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Matches("anything"))

	var nilMatcher *Matcher
	assert.False(t, nilMatcher.Matches("anything"))
	assert.Equal(t, 0, nilMatcher.Len())
	assert.Nil(t, nilMatcher.Patterns())
}

func TestMatcher_RejectsMalformedPatterns(t *testing.T) {
	m := New("", "valid", string(AnchorMarker))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, []string{"valid"}, m.Patterns())

	rejected := m.Rejected()
	require.Len(t, rejected, 2)
	assert.Equal(t, 0, rejected[0].Index)
	assert.Equal(t, 2, rejected[1].Index)
	assert.ErrorIs(t, rejected[0], ErrEmptyPattern)

	assert.True(t, m.Matches("a|valid"))
	assert.False(t, m.Matches("|"))
}

func TestCompile(t *testing.T) {
	m, err := Compile("carousel_ad", "|comment.")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	_, err = Compile("ok", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyPattern)
	assert.Contains(t, err.Error(), "pattern 1")
}

func TestMatcher_Duplicates(t *testing.T) {
	m := New("dup", "other", "dup")
	assert.Equal(t, 2, m.Len())
	got, ok := m.Find("x_dup")
	require.True(t, ok)
	assert.Equal(t, 0, got.Index)
}

func TestMatcher_FindBytes(t *testing.T) {
	m := New("yt_outline_gear", "|yt_outline_vr")
	got, ok := m.FindBytes([]byte("\x0a\x12yt_outline_gear\x00"))
	require.True(t, ok)
	assert.Equal(t, "yt_outline_gear", got.Pattern)

	_, ok = m.FindBytes([]byte("\x0ayt_outline_vr"))
	assert.False(t, ok, "anchored body must not match after a non-boundary byte")

	_, ok = m.FindBytes(nil)
	assert.False(t, ok)
}

func TestMatcher_PrefilterAgreesWithTrie(t *testing.T) {
	patterns := make([]string, 0, 24)
	for i := 0; i < 20; i++ {
		patterns = append(patterns, fmt.Sprintf("layout_%02d", i))
	}
	patterns = append(patterns, "|anchored_row", "shelf", "_ad_with")

	inputs := []string{
		"root|layout_07|x",
		"root|anchored_row",
		"rootanchored_row",
		"nothing here at all",
		"a|b|c_ad_with_shelf",
		"layout_1",
		"",
		"home|feed.eml|section_list.eml|compact_video.eml|thumbnail",
		"home|feed.eml|section_list.eml|anchored_row|thumbnail.eml",
		"home|feed.eml|section_list.eml|xanchored_row|thumbnail.eml",
		"home|feed.eml|section_list.eml|video_layout_07.eml",
	}

	withPrefilter := build(patterns, 1)
	require.NotNil(t, withPrefilter.ac)

	withoutPrefilter := build(patterns, 1<<20)
	require.Nil(t, withoutPrefilter.ac)

	for _, in := range inputs {
		a, okA := withPrefilter.Find(in)
		b, okB := withoutPrefilter.Find(in)
		assert.Equal(t, okB, okA, "input %q", in)
		assert.Equal(t, b, a, "input %q", in)
	}
}

func TestMatcher_FindDoesNotAllocate(t *testing.T) {
	patterns := make([]string, 0, 32)
	for i := 0; i < 32; i++ {
		patterns = append(patterns, fmt.Sprintf("layout_%02d_ad", i))
	}
	m := New(patterns...)
	require.NotNil(t, m.ac)

	miss := "home|feed.eml|section_list.eml|compact_video.eml|thumbnail.eml"
	hit := "home|feed.eml|section_list.eml|layout_07_ad.eml"

	allocs := testing.AllocsPerRun(100, func() {
		if _, ok := m.Find(miss); ok {
			t.Fatal("unexpected match")
		}
		if _, ok := m.Find(hit); !ok {
			t.Fatal("expected a match")
		}
	})
	assert.Zero(t, allocs)
}

func TestMatcher_ConcurrentReads(t *testing.T) {
	m := New("carousel_ad", "|comment.", "_interstitial")

	var wg sync.WaitGroup
	failures := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if !m.Matches("x|carousel_ad|y") || m.Matches("xcomment.") {
					failures <- "inconsistent result"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(failures)

	for f := range failures {
		t.Error(f)
	}
}
