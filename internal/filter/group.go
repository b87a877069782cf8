package filter

import (
	"sync/atomic"

	"github.com/bebsworthy/pathsieve/internal/trie"
)

// Toggle is an externally owned on/off switch. Classification only reads it.
type Toggle interface {
	Enabled() bool
}

// ToggleFunc adapts a function to Toggle.
type ToggleFunc func() bool

// Enabled calls f.
func (f ToggleFunc) Enabled() bool {
	return f()
}

// ToggleLookup resolves a toggle by name. It is the seam through which
// settings persistence attaches to the engine.
type ToggleLookup interface {
	Toggle(name string) Toggle
}

// Group is a named bundle of patterns sharing one toggle. A nil toggle means
// the group is always enabled. Only the hit counter mutates after creation.
type Group struct {
	name    string
	kind    Kind
	toggle  Toggle
	matcher *trie.Matcher
	hits    atomic.Uint64
}

// NewGroup compiles patterns into a group. Malformed patterns are logged and
// left out.
func NewGroup(name string, kind Kind, toggle Toggle, patterns ...string) *Group {
	return &Group{
		name:    name,
		kind:    kind,
		toggle:  toggle,
		matcher: trie.New(patterns...),
	}
}

// Name returns the group name
func (g *Group) Name() string {
	return g.name
}

// Kind returns which request field the group matches
func (g *Group) Kind() Kind {
	return g.kind
}

// Patterns returns the accepted patterns
func (g *Group) Patterns() []string {
	return g.matcher.Patterns()
}

// Enabled reports whether the group takes part in classification
func (g *Group) Enabled() bool {
	return g.toggle == nil || g.toggle.Enabled()
}

// Check matches the request field selected by the group kind.
func (g *Group) Check(req *Request) (trie.Match, bool) {
	switch g.kind {
	case KindIdentifier:
		if req.Identifier == "" {
			return trie.Match{}, false
		}
		return g.matcher.Find(req.Identifier)
	case KindPath:
		return g.matcher.Find(req.Path)
	case KindBuffer:
		return g.matcher.FindBytes(req.Buffer)
	}
	return trie.Match{}, false
}

// RecordHit increments the diagnostic hit counter
func (g *Group) RecordHit() {
	g.hits.Add(1)
}

// Hits returns the diagnostic hit counter
func (g *Group) Hits() uint64 {
	return g.hits.Load()
}
