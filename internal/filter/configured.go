package filter

import (
	"fmt"

	"github.com/bebsworthy/pathsieve/pkg/config"
)

// FromConfig builds a filter from its configuration. Group toggles are
// resolved through lookup; a group without a toggle name is always enabled.
// A configured content index wraps the filter with OnlyAtIndex.
func FromConfig(fc *config.FilterConfig, lookup ToggleLookup) (Filter, error) {
	if fc == nil {
		return nil, fmt.Errorf("filter config cannot be nil")
	}
	if err := fc.Validate(); err != nil {
		return nil, fmt.Errorf("filter %q: %w", fc.Name, err)
	}

	groups := make([]*Group, 0, len(fc.Groups))
	for _, gc := range fc.Groups {
		kind, err := ParseKind(gc.Kind)
		if err != nil {
			return nil, fmt.Errorf("filter %q group %q: %w", fc.Name, gc.Name, err)
		}

		var toggle Toggle
		if gc.Toggle != "" {
			if lookup == nil {
				return nil, fmt.Errorf("filter %q group %q: toggle %q needs a toggle lookup", fc.Name, gc.Name, gc.Toggle)
			}
			toggle = lookup.Toggle(gc.Toggle)
		}

		groups = append(groups, NewGroup(gc.Name, kind, toggle, gc.Patterns...))
	}

	var f Filter = NewBase(fc.Name,
		WithExceptions(fc.Exceptions...),
		WithGroups(groups...),
	)
	if fc.ContentIndex != nil {
		f = OnlyAtIndex(f, *fc.ContentIndex)
	}
	return f, nil
}

// FromConfigs builds filters in configuration order
func FromConfigs(fcs []*config.FilterConfig, lookup ToggleLookup) ([]Filter, error) {
	filters := make([]Filter, 0, len(fcs))
	for _, fc := range fcs {
		f, err := FromConfig(fc, lookup)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
