// Package config provides the core configuration types and validation logic for pathsieve.
package config

import (
	"encoding/json"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Group kinds accepted in GroupConfig.Kind
const (
	KindIdentifier = "identifier"
	KindPath       = "path"
	KindBuffer     = "buffer"
)

// anchorMarker mirrors the matcher's anchor prefix; a pattern made of the
// marker alone has no body.
const anchorMarker = "|"

// Config represents the main configuration structure for pathsieve
type Config struct {
	Version  string          `json:"version"`
	Builtins bool            `json:"builtins,omitempty"`
	Toggles  map[string]bool `json:"toggles,omitempty"`
	Include  []string        `json:"include,omitempty"`
	Filters  []*FilterConfig `json:"filters,omitempty"`
}

// FilterSet is the content of an included filter file
type FilterSet struct {
	Toggles map[string]bool `json:"toggles,omitempty"`
	Filters []*FilterConfig `json:"filters"`
}

// FilterConfig defines one classification filter. ContentIndex, when set,
// restricts the filter to elements at that sibling position.
type FilterConfig struct {
	Name         string         `json:"name"`
	Exceptions   []string       `json:"exceptions,omitempty"`
	ContentIndex *int           `json:"contentIndex,omitempty"`
	Groups       []*GroupConfig `json:"groups"`
}

// GroupConfig defines one toggleable bundle of patterns
type GroupConfig struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Toggle   string   `json:"toggle,omitempty"`
	Patterns []string `json:"patterns"`
}

// Validate performs validation on the Config
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	if len(c.Filters) == 0 && len(c.Include) == 0 && !c.Builtins {
		return fmt.Errorf("at least one filter, include or builtins is required")
	}

	for i, pattern := range c.Include {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("include %d: invalid glob %q", i, pattern)
		}
	}

	return validateFilters(c.Filters)
}

// Validate performs validation on the FilterSet
func (s *FilterSet) Validate() error {
	if len(s.Filters) == 0 {
		return fmt.Errorf("at least one filter is required")
	}
	return validateFilters(s.Filters)
}

func validateFilters(filters []*FilterConfig) error {
	seen := make(map[string]bool, len(filters))
	for i, f := range filters {
		if f == nil {
			return fmt.Errorf("filter %d: filter is empty", i)
		}
		if err := f.Validate(); err != nil {
			return fmt.Errorf("filter %d (%s): %w", i, f.Name, err)
		}
		if seen[f.Name] {
			return fmt.Errorf("filter %d: duplicate filter name %q", i, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Validate performs validation on the FilterConfig
func (f *FilterConfig) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(f.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}

	for i, pattern := range f.Exceptions {
		if err := validatePattern(pattern); err != nil {
			return fmt.Errorf("exception %d: %w", i, err)
		}
	}

	if f.ContentIndex != nil && *f.ContentIndex < 0 {
		return fmt.Errorf("content index must be non-negative")
	}

	for i, group := range f.Groups {
		if group == nil {
			return fmt.Errorf("group %d: group is empty", i)
		}
		if err := group.Validate(); err != nil {
			return fmt.Errorf("group %d (%s): %w", i, group.Name, err)
		}
	}

	return nil
}

// Validate performs validation on the GroupConfig
func (g *GroupConfig) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("name is required")
	}

	switch g.Kind {
	case KindIdentifier, KindPath, KindBuffer:
	default:
		return fmt.Errorf("invalid kind %q (expected %s, %s or %s)", g.Kind, KindIdentifier, KindPath, KindBuffer)
	}

	if len(g.Patterns) == 0 {
		return fmt.Errorf("at least one pattern is required")
	}

	for i, pattern := range g.Patterns {
		if err := validatePattern(pattern); err != nil {
			return fmt.Errorf("pattern %d: %w", i, err)
		}
	}

	return nil
}

// validatePattern rejects patterns without a body
func validatePattern(pattern string) error {
	if pattern == "" || pattern == anchorMarker {
		return fmt.Errorf("pattern is empty")
	}
	return nil
}

// LoadConfig loads a configuration from JSON data
func LoadConfig(data []byte) (*Config, error) {
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// LoadFilterSet loads an included filter file from JSON data
func LoadFilterSet(data []byte) (*FilterSet, error) {
	var set FilterSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse filter set: %w", err)
	}

	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid filter set: %w", err)
	}

	return &set, nil
}

// SaveConfig serializes a configuration to JSON
func SaveConfig(config *Config) ([]byte, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	return data, nil
}

// Clone creates a deep copy of the Config
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := &Config{
		Version:  c.Version,
		Builtins: c.Builtins,
	}

	if c.Toggles != nil {
		clone.Toggles = make(map[string]bool, len(c.Toggles))
		for k, v := range c.Toggles {
			clone.Toggles[k] = v
		}
	}

	if c.Include != nil {
		clone.Include = make([]string, len(c.Include))
		copy(clone.Include, c.Include)
	}

	if c.Filters != nil {
		clone.Filters = make([]*FilterConfig, len(c.Filters))
		for i, f := range c.Filters {
			clone.Filters[i] = f.Clone()
		}
	}

	return clone
}

// Clone creates a deep copy of the FilterConfig
func (f *FilterConfig) Clone() *FilterConfig {
	if f == nil {
		return nil
	}

	clone := &FilterConfig{Name: f.Name}

	if f.Exceptions != nil {
		clone.Exceptions = make([]string, len(f.Exceptions))
		copy(clone.Exceptions, f.Exceptions)
	}

	if f.ContentIndex != nil {
		index := *f.ContentIndex
		clone.ContentIndex = &index
	}

	if f.Groups != nil {
		clone.Groups = make([]*GroupConfig, len(f.Groups))
		for i, g := range f.Groups {
			clone.Groups[i] = g.Clone()
		}
	}

	return clone
}

// Clone creates a deep copy of the GroupConfig
func (g *GroupConfig) Clone() *GroupConfig {
	if g == nil {
		return nil
	}

	clone := &GroupConfig{
		Name:   g.Name,
		Kind:   g.Kind,
		Toggle: g.Toggle,
	}

	if g.Patterns != nil {
		clone.Patterns = make([]string, len(g.Patterns))
		copy(clone.Patterns, g.Patterns)
	}

	return clone
}

// ToggleNames returns every toggle referenced by the configured groups, in
// first-seen order
func (c *Config) ToggleNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range c.Filters {
		if f == nil {
			continue
		}
		for _, g := range f.Groups {
			if g == nil || g.Toggle == "" || seen[g.Toggle] {
				continue
			}
			seen[g.Toggle] = true
			names = append(names, g.Toggle)
		}
	}
	return names
}
