package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bebsworthy/pathsieve/internal/trie"
	"github.com/bebsworthy/pathsieve/pkg/config"
)

// ValidationError reports the part of a configuration that failed.
type ValidationError struct {
	// Field locates the failing element, e.g. filters[2].groups[0]
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validator checks a configuration beyond its schema: patterns compile
// strictly, and Warnings points out groups that can never take effect.
type Validator struct {
	// KnownToggles are toggle names declared outside the file, such as the
	// built-in catalog's.
	KnownToggles []string

	versioner *SchemaVersioner
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{versioner: NewSchemaVersioner()}
}

// Validate performs comprehensive validation on a configuration. Older
// schema versions are validated as they will be after migration.
func (v *Validator) Validate(cfg *config.Config) error {
	if cfg == nil {
		return &ValidationError{Err: errors.New("configuration is empty")}
	}
	if err := v.versioner.ValidateVersion(cfg.Version); err != nil {
		return &ValidationError{Field: "version", Err: err}
	}

	migrated, err := v.versioner.MigrateConfig(cfg.Clone())
	if err != nil {
		return &ValidationError{Field: "version", Err: err}
	}
	if err := migrated.Validate(); err != nil {
		return &ValidationError{Err: err}
	}

	for i, f := range migrated.Filters {
		if err := v.validateFilter(f); err != nil {
			return &ValidationError{Field: fmt.Sprintf("filters[%d]", i), Err: err}
		}
	}
	return nil
}

// validateFilter compiles every pattern the way the engine will
func (v *Validator) validateFilter(f *config.FilterConfig) error {
	if len(f.Exceptions) > 0 {
		if _, err := trie.Compile(f.Exceptions...); err != nil {
			return fmt.Errorf("exceptions: %w", err)
		}
	}
	for i, g := range f.Groups {
		if _, err := trie.Compile(g.Patterns...); err != nil {
			return fmt.Errorf("groups[%d] (%s): %w", i, g.Name, err)
		}
	}
	return nil
}

// Warnings lists problems that do not stop the configuration from loading
func (v *Validator) Warnings(cfg *config.Config) []string {
	var warnings []string

	known := make(map[string]bool, len(cfg.Toggles)+len(v.KnownToggles))
	for name := range cfg.Toggles {
		known[name] = true
	}
	for _, name := range v.KnownToggles {
		known[name] = true
	}

	for _, f := range cfg.Filters {
		if f == nil {
			continue
		}
		for _, g := range f.Groups {
			if g == nil {
				continue
			}
			if g.Toggle != "" && !known[g.Toggle] {
				warnings = append(warnings, fmt.Sprintf(
					"filter %q group %q: toggle %q is not declared and starts disabled", f.Name, g.Name, g.Toggle))
			}
			warnings = append(warnings, duplicatePatterns(f.Name, g)...)
			if g.Kind == config.KindPath {
				warnings = append(warnings, shadowedPatterns(f, g)...)
			}
		}
	}
	return warnings
}

func duplicatePatterns(filterName string, g *config.GroupConfig) []string {
	var warnings []string
	seen := make(map[string]bool, len(g.Patterns))
	for _, p := range g.Patterns {
		if seen[p] {
			warnings = append(warnings, fmt.Sprintf(
				"filter %q group %q: pattern %q is listed twice", filterName, g.Name, p))
		}
		seen[p] = true
	}
	return warnings
}

// shadowedPatterns finds path patterns whose every match also matches a
// free exception of the same filter
func shadowedPatterns(f *config.FilterConfig, g *config.GroupConfig) []string {
	var warnings []string
	for _, p := range g.Patterns {
		body := strings.TrimPrefix(p, string(trie.AnchorMarker))
		for _, e := range f.Exceptions {
			if e == "" || e[0] == trie.AnchorMarker {
				continue
			}
			if strings.Contains(body, e) {
				warnings = append(warnings, fmt.Sprintf(
					"filter %q group %q: pattern %q contains exception %q and can never block", f.Name, g.Name, p, e))
				break
			}
		}
	}
	return warnings
}

// SuggestFixes provides suggestions for common configuration errors
func (v *Validator) SuggestFixes(err error) []string {
	if err == nil {
		return nil
	}
	errStr := err.Error()
	suggestions := []string{}

	if strings.Contains(errStr, "version") {
		suggestions = append(suggestions,
			fmt.Sprintf("Set \"version\" to %q", CurrentSchemaVersion),
		)
	}

	if errors.Is(err, trie.ErrEmptyPattern) || strings.Contains(errStr, "pattern is empty") {
		suggestions = append(suggestions,
			"Remove empty patterns",
			"A leading '|' anchors a pattern and must be followed by text, e.g. \"|comment.\"",
		)
	}

	if strings.Contains(errStr, "invalid kind") {
		suggestions = append(suggestions,
			fmt.Sprintf("Use one of %q, %q or %q as the group kind", config.KindIdentifier, config.KindPath, config.KindBuffer),
		)
	}

	if strings.Contains(errStr, "include") {
		suggestions = append(suggestions,
			"Include globs are relative to the configuration file (e.g., 'filters/*.json')",
			"Use ** for recursive matching (e.g., 'filters/**/*.json')",
		)
	}

	if strings.Contains(errStr, "duplicate filter name") || strings.Contains(errStr, "already defined") {
		suggestions = append(suggestions,
			"Give every filter a unique name across the configuration and its includes",
		)
	}

	if strings.Contains(errStr, "content index") {
		suggestions = append(suggestions,
			"Use 0 for the first sibling, or remove \"contentIndex\" to match at any position",
		)
	}

	if strings.Contains(errStr, "at least one") {
		suggestions = append(suggestions,
			"Add a filter with at least one group, include filter files, or set \"builtins\": true",
		)
	}

	return suggestions
}
