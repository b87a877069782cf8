package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bebsworthy/pathsieve/pkg/config"
)

// ConfigBuilder provides a fluent interface for building test configurations.
type ConfigBuilder struct {
	config *config.Config
}

// NewConfigBuilder creates a new ConfigBuilder with default test configuration.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{
		config: &config.Config{
			Version: "1.0",
			Toggles: make(map[string]bool),
		},
	}
}

// WithVersion sets the configuration version.
func (b *ConfigBuilder) WithVersion(version string) *ConfigBuilder {
	b.config.Version = version
	return b
}

// WithBuiltins enables the built-in catalog.
func (b *ConfigBuilder) WithBuiltins() *ConfigBuilder {
	b.config.Builtins = true
	return b
}

// WithToggle declares a toggle and its initial value.
func (b *ConfigBuilder) WithToggle(name string, enabled bool) *ConfigBuilder {
	b.config.Toggles[name] = enabled
	return b
}

// WithInclude adds include globs.
func (b *ConfigBuilder) WithInclude(patterns ...string) *ConfigBuilder {
	b.config.Include = append(b.config.Include, patterns...)
	return b
}

// WithFilter adds a filter configuration.
func (b *ConfigBuilder) WithFilter(f *config.FilterConfig) *ConfigBuilder {
	b.config.Filters = append(b.config.Filters, f)
	return b
}

// WithPathFilter adds a filter with a single always-enabled path group.
func (b *ConfigBuilder) WithPathFilter(name string, patterns ...string) *ConfigBuilder {
	return b.WithFilter(NewFilter(name).WithPathGroup(name, "", patterns...).Build())
}

// Build returns the constructed configuration.
func (b *ConfigBuilder) Build() *config.Config {
	return b.config
}

// WriteToFile writes the configuration to a JSON file without validating
// it, so tests can write broken files too.
func (b *ConfigBuilder) WriteToFile(path string) error {
	data, err := json.MarshalIndent(b.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// FilterBuilder builds a single filter configuration.
type FilterBuilder struct {
	filter *config.FilterConfig
}

// NewFilter starts a filter configuration with the given name.
func NewFilter(name string) *FilterBuilder {
	return &FilterBuilder{filter: &config.FilterConfig{Name: name}}
}

// WithExceptions adds exception patterns.
func (b *FilterBuilder) WithExceptions(patterns ...string) *FilterBuilder {
	b.filter.Exceptions = append(b.filter.Exceptions, patterns...)
	return b
}

// AtIndex restricts the filter to one content index.
func (b *FilterBuilder) AtIndex(index int) *FilterBuilder {
	b.filter.ContentIndex = &index
	return b
}

// WithGroup adds a group. An empty toggle means always enabled.
func (b *FilterBuilder) WithGroup(name, kind, toggle string, patterns ...string) *FilterBuilder {
	b.filter.Groups = append(b.filter.Groups, &config.GroupConfig{
		Name:     name,
		Kind:     kind,
		Toggle:   toggle,
		Patterns: patterns,
	})
	return b
}

// WithPathGroup adds a path group.
func (b *FilterBuilder) WithPathGroup(name, toggle string, patterns ...string) *FilterBuilder {
	return b.WithGroup(name, config.KindPath, toggle, patterns...)
}

// Build returns the constructed filter configuration.
func (b *FilterBuilder) Build() *config.FilterConfig {
	return b.filter
}

// DefaultTestConfig returns a configuration with the built-in catalog and
// one custom filter guarded by the hide_chips toggle.
func DefaultTestConfig() *config.Config {
	return NewConfigBuilder().
		WithBuiltins().
		WithToggle("hide_chips", true).
		WithFilter(NewFilter("chips").
			WithExceptions("comment_thread").
			WithPathGroup("chip-bar", "hide_chips", "feed_filter_chip_bar", "|chip_cloud").
			Build()).
		Build()
}

// CreateTestConfigFile creates a config file in dir and returns its path.
func CreateTestConfigFile(dir string, cfg *config.Config) (string, error) {
	if cfg == nil {
		cfg = DefaultTestConfig()
	}

	configPath := filepath.Join(dir, ".pathsieve.json")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return "", err
	}

	return configPath, nil
}
