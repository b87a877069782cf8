// Package trie provides an immutable multi-pattern substring matcher tuned for
// short, high-frequency inputs such as UI component paths.
//
// Patterns are exact byte strings. A pattern that starts with AnchorMarker is
// anchored: its body only matches at offset 0 of the input or immediately
// after a Boundary byte. Every other pattern matches anywhere.
//
// Find scans start offsets left to right and, at the first offset where any
// pattern is admissible, returns the pattern registered first. Pattern length
// never breaks ties.
package trie

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/cloudflare/ahocorasick"
)

const (
	// AnchorMarker is the leading byte that marks a pattern as anchored.
	AnchorMarker = '|'
	// Boundary is the input byte after which an anchored pattern may start.
	Boundary = '|'

	// PrefilterThreshold is the pattern count from which a matcher also
	// builds an Aho-Corasick automaton and uses it to reject inputs that
	// contain no pattern body at all.
	PrefilterThreshold = 16

	// prefilterMinInput is the input length below which the trie scan is
	// cheaper than the automaton pass.
	prefilterMinInput = 32
)

// ErrEmptyPattern indicates a pattern with no body.
var ErrEmptyPattern = errors.New("empty pattern")

// Match describes one successful Find.
type Match struct {
	// Pattern is the pattern as registered, including any anchor marker.
	Pattern string
	// Index is the registration index of the pattern in Patterns().
	Index int
	// Offset is where the pattern body starts in the input.
	Offset int
	// Anchored reports whether the pattern was anchored.
	Anchored bool
}

// Rejection records a pattern excluded at build time.
type Rejection struct {
	Index   int
	Pattern string
	Err     error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("pattern %d (%q): %v", r.Index, r.Pattern, r.Err)
}

func (r Rejection) Unwrap() error {
	return r.Err
}

type edge struct {
	b  byte
	to int32
}

// node terminals hold the lowest registration index ending here, -1 if none.
type node struct {
	next     []edge
	free     int32
	anchored int32
}

func (n *node) child(b byte) int32 {
	for _, e := range n.next {
		if e.b == b {
			return e.to
		}
	}
	return -1
}

// Matcher is safe for concurrent use once built.
type Matcher struct {
	nodes    []node
	patterns []string
	anchored []bool
	rejected []Rejection
	ac       *ahocorasick.Matcher
}

// New builds a matcher, excluding and logging malformed patterns. It never
// fails; use Rejected to inspect what was dropped.
func New(patterns ...string) *Matcher {
	m := build(patterns, PrefilterThreshold)
	for _, r := range m.rejected {
		debug.LogError(r, "pattern registration")
	}
	return m
}

// Compile builds a matcher and reports every malformed pattern as an error.
func Compile(patterns ...string) (*Matcher, error) {
	m := build(patterns, PrefilterThreshold)
	if len(m.rejected) == 0 {
		return m, nil
	}

	errs := make([]error, len(m.rejected))
	for i, r := range m.rejected {
		errs[i] = r
	}
	return nil, errors.Join(errs...)
}

func build(patterns []string, prefilterAt int) *Matcher {
	m := &Matcher{
		nodes:    []node{{free: -1, anchored: -1}},
		patterns: make([]string, 0, len(patterns)),
		anchored: make([]bool, 0, len(patterns)),
	}

	bodies := make([]string, 0, len(patterns))
	for i, p := range patterns {
		body, anchored := parsePattern(p)
		if body == "" {
			m.rejected = append(m.rejected, Rejection{Index: i, Pattern: p, Err: ErrEmptyPattern})
			continue
		}

		n := &m.nodes[m.insert(body)]
		slot := &n.free
		if anchored {
			slot = &n.anchored
		}
		if *slot >= 0 {
			// Duplicate; the first registration already owns this terminal.
			continue
		}

		*slot = int32(len(m.patterns))
		m.patterns = append(m.patterns, p)
		m.anchored = append(m.anchored, anchored)
		bodies = append(bodies, body)
	}

	if len(bodies) >= prefilterAt {
		m.ac = ahocorasick.NewStringMatcher(bodies)
	}
	return m
}

func parsePattern(p string) (string, bool) {
	if strings.HasPrefix(p, string(AnchorMarker)) {
		return p[1:], true
	}
	return p, false
}

func (m *Matcher) insert(body string) int32 {
	cur := int32(0)
	for i := 0; i < len(body); i++ {
		next := m.nodes[cur].child(body[i])
		if next < 0 {
			next = int32(len(m.nodes))
			m.nodes = append(m.nodes, node{free: -1, anchored: -1})
			m.nodes[cur].next = append(m.nodes[cur].next, edge{b: body[i], to: next})
		}
		cur = next
	}
	return cur
}

// Find returns the first pattern occurring in input.
func (m *Matcher) Find(input string) (Match, bool) {
	// The automaton only reads the bytes, so the string is not copied.
	if !m.admits(unsafe.Slice(unsafe.StringData(input), len(input))) {
		return Match{}, false
	}
	return scan(m, input)
}

// FindBytes is Find over a raw buffer.
func (m *Matcher) FindBytes(input []byte) (Match, bool) {
	if !m.admits(input) {
		return Match{}, false
	}
	return scan(m, input)
}

// Matches reports whether any pattern occurs in input.
func (m *Matcher) Matches(input string) bool {
	_, ok := m.Find(input)
	return ok
}

// admits reports whether input may contain a pattern body.
func (m *Matcher) admits(input []byte) bool {
	if m == nil || len(m.patterns) == 0 || len(input) == 0 {
		return false
	}
	if m.ac != nil && len(input) >= prefilterMinInput {
		return m.ac.Contains(input)
	}
	return true
}

func scan[T string | []byte](m *Matcher, input T) (Match, bool) {

	for start := 0; start < len(input); start++ {
		atBoundary := start == 0 || input[start-1] == Boundary
		best := int32(-1)
		cur := int32(0)

		for i := start; i < len(input); i++ {
			cur = m.nodes[cur].child(input[i])
			if cur < 0 {
				break
			}
			n := &m.nodes[cur]
			if n.free >= 0 && (best < 0 || n.free < best) {
				best = n.free
			}
			if atBoundary && n.anchored >= 0 && (best < 0 || n.anchored < best) {
				best = n.anchored
			}
		}

		if best >= 0 {
			return Match{
				Pattern:  m.patterns[best],
				Index:    int(best),
				Offset:   start,
				Anchored: m.anchored[best],
			}, true
		}
	}

	return Match{}, false
}

// Len returns the number of accepted patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Patterns returns the accepted patterns in registration order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.patterns))
	copy(out, m.patterns)
	return out
}

// Rejected returns the patterns excluded at build time.
func (m *Matcher) Rejected() []Rejection {
	if m == nil {
		return nil
	}
	out := make([]Rejection, len(m.rejected))
	copy(out, m.rejected)
	return out
}
