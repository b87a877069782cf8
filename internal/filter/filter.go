package filter

import (
	"fmt"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/internal/trie"
)

// Filter is one classification unit. Implementations must be safe for
// concurrent use and must not block.
type Filter interface {
	Name() string
	Classify(req *Request) Decision
}

// GroupLister is implemented by filters that expose their groups for
// diagnostics.
type GroupLister interface {
	Groups() []*Group
}

// Wrapper is implemented by filters layered around another filter.
type Wrapper interface {
	Unwrap() Filter
}

// Policy decides the outcome after a group of the filter matched. It runs
// after the exception check and group precedence, so it can only turn a
// match into Allow or record state; it never sees excepted requests.
type Policy func(req *Request, matched *Group) Decision

// Base carries the shared algorithm: exception short-circuit on the path,
// then the groups of the request kind in registration order.
type Base struct {
	name       string
	exceptions []*trie.Matcher
	groups     [kindCount][]*Group
}

// Option configures a Base at construction.
type Option func(*Base)

// WithExceptions adds patterns that force Allow when they occur in the path.
func WithExceptions(patterns ...string) Option {
	return func(b *Base) {
		if len(patterns) > 0 {
			b.exceptions = append(b.exceptions, trie.New(patterns...))
		}
	}
}

// WithSharedExceptions composes an exception set owned elsewhere.
func WithSharedExceptions(m *trie.Matcher) Option {
	return func(b *Base) {
		if m != nil {
			b.exceptions = append(b.exceptions, m)
		}
	}
}

// WithGroups registers groups under their kinds, in order.
func WithGroups(groups ...*Group) Option {
	return func(b *Base) {
		for _, g := range groups {
			if g == nil {
				continue
			}
			if !g.kind.valid() {
				debug.LogError(fmt.Errorf("%w: group %s", ErrUnknownKind, g.name), "filter "+b.name)
				continue
			}
			b.groups[g.kind] = append(b.groups[g.kind], g)
		}
	}
}

// NewBase creates a filter from options.
func NewBase(name string, opts ...Option) *Base {
	b := &Base{name: name}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the filter name
func (b *Base) Name() string {
	return b.name
}

// Groups returns every group, identifier kind first
func (b *Base) Groups() []*Group {
	var out []*Group
	for _, groups := range b.groups {
		out = append(out, groups...)
	}
	return out
}

// IsException reports whether path matches any exception pattern
func (b *Base) IsException(path string) bool {
	for _, m := range b.exceptions {
		if m.Matches(path) {
			return true
		}
	}
	return false
}

// Match returns the first enabled group of the request kind that matches,
// or nil when an exception applies or nothing matched.
func (b *Base) Match(req *Request) *Group {
	var first *Group
	b.eachMatch(req, func(g *Group) bool {
		first = g
		return true
	})
	return first
}

// eachMatch calls fn with every enabled matching group of the request kind,
// in registration order, until fn returns true. Nothing is called when an
// exception applies.
func (b *Base) eachMatch(req *Request, fn func(*Group) bool) {
	if req == nil || !req.Kind.valid() {
		return
	}
	if b.IsException(req.Path) {
		return
	}

	for _, g := range b.groups[req.Kind] {
		if !g.Enabled() {
			continue
		}
		if m, ok := g.Check(req); ok {
			debug.LogPatternMatch(m.Pattern, req.Path, true)
			if fn(g) {
				return
			}
		}
	}
}

// Classify blocks when any enabled group matches
func (b *Base) Classify(req *Request) Decision {
	return b.ClassifyWith(req, nil)
}

// ClassifyWith runs the shared algorithm and lets policy decide for each
// matching group in turn. The first Block wins; when policy allows, the next
// matching group is tried. A nil policy blocks.
func (b *Base) ClassifyWith(req *Request, policy Policy) Decision {
	decision := Allow
	b.eachMatch(req, func(g *Group) bool {
		SideEffect(b.name, g.RecordHit)
		if policy == nil {
			decision = Block
		} else {
			decision = policy(req, g)
		}
		return decision == Block
	})
	return decision
}

// SideEffect runs fn and swallows any fault so the decision already computed
// by the caller is still returned.
func SideEffect(owner string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogError(fmt.Errorf("%w: %v", ErrSideEffectPanic, r), "filter "+owner)
		}
	}()
	fn()
}

// indexGate only evaluates requests at one sibling position.
type indexGate struct {
	inner Filter
	index int
}

// OnlyAtIndex restricts f to requests whose content index equals index.
func OnlyAtIndex(f Filter, index int) Filter {
	return &indexGate{inner: f, index: index}
}

func (g *indexGate) Name() string { return g.inner.Name() }
func (g *indexGate) Unwrap() Filter { return g.inner }

func (g *indexGate) Classify(req *Request) Decision {
	if req == nil || req.ContentIndex != g.index {
		return Allow
	}
	return g.inner.Classify(req)
}

// conditionGate only evaluates requests while an external condition holds.
type conditionGate struct {
	inner Filter
	cond  func() bool
}

// When restricts f to moments when cond reports true.
func When(f Filter, cond func() bool) Filter {
	return &conditionGate{inner: f, cond: cond}
}

func (g *conditionGate) Name() string { return g.inner.Name() }
func (g *conditionGate) Unwrap() Filter { return g.inner }

func (g *conditionGate) Classify(req *Request) Decision {
	if !g.cond() {
		return Allow
	}
	return g.inner.Classify(req)
}

// groupsOf walks wrappers down to a filter that lists its groups.
func groupsOf(f Filter) []*Group {
	for f != nil {
		if gl, ok := f.(GroupLister); ok {
			return gl.Groups()
		}
		w, ok := f.(Wrapper)
		if !ok {
			return nil
		}
		f = w.Unwrap()
	}
	return nil
}
