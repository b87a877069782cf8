package filter

import (
	"fmt"

	"github.com/bebsworthy/pathsieve/internal/debug"
)

// Registry is the ordered list of filters every host request goes through.
// The list is fixed at construction and read without locks afterwards.
type Registry struct {
	filters []Filter
}

// GroupStats is a diagnostic snapshot of one group
type GroupStats struct {
	Filter  string
	Group   string
	Kind    Kind
	Enabled bool
	Hits    uint64
}

// NewRegistry creates a registry; nil filters are skipped.
func NewRegistry(filters ...Filter) *Registry {
	r := &Registry{filters: make([]Filter, 0, len(filters))}
	for _, f := range filters {
		if f != nil {
			r.filters = append(r.filters, f)
		}
	}
	debug.Log("Registry: %d filters registered", len(r.filters))
	return r
}

// Filters returns the registered filters in order
func (r *Registry) Filters() []Filter {
	out := make([]Filter, len(r.filters))
	copy(out, r.filters)
	return out
}

// Classify returns Block for the first filter that blocks, Allow otherwise.
// A filter that faults counts as Allow and the remaining filters still run.
func (r *Registry) Classify(req *Request) Decision {
	if req == nil {
		return Allow
	}
	for _, f := range r.filters {
		if classifySafely(f, req) == Block {
			debug.LogDecision(f.Name(), "", Block.String(), req.Path)
			return Block
		}
	}
	return Allow
}

// IsFiltered is the host entry point. It classifies the identifier (when
// present), the path, and the buffer (when present) and reports whether any
// of them blocks.
func (r *Registry) IsFiltered(identifier, path string, buffer []byte, contentIndex int) bool {
	return r.Decide(&Request{
		Identifier:   identifier,
		Path:         path,
		Buffer:       buffer,
		ContentIndex: contentIndex,
	}) == Block
}

// Decide classifies every field the request carries, in IsFiltered order.
// The request's Kind is overwritten.
func (r *Registry) Decide(req *Request) Decision {
	if req == nil {
		return Allow
	}

	if req.Identifier != "" {
		req.Kind = KindIdentifier
		if r.Classify(req) == Block {
			return Block
		}
	}

	req.Kind = KindPath
	if r.Classify(req) == Block {
		return Block
	}

	if req.Buffer != nil {
		req.Kind = KindBuffer
		if r.Classify(req) == Block {
			return Block
		}
	}

	return Allow
}

// Stats returns a snapshot of every group's hit counter, in registration order
func (r *Registry) Stats() []GroupStats {
	var stats []GroupStats
	for _, f := range r.filters {
		for _, g := range groupsOf(f) {
			stats = append(stats, GroupStats{
				Filter:  f.Name(),
				Group:   g.Name(),
				Kind:    g.Kind(),
				Enabled: safeEnabled(g),
				Hits:    g.Hits(),
			})
		}
	}
	return stats
}

func classifySafely(f Filter, req *Request) (d Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			debug.LogError(fmt.Errorf("%w: %v", ErrFilterPanic, rec), "filter "+f.Name())
			d = Allow
		}
	}()
	return f.Classify(req)
}

func safeEnabled(g *Group) (enabled bool) {
	defer func() {
		if recover() != nil {
			enabled = false
		}
	}()
	return g.Enabled()
}
