// Package config finds, loads and validates pathsieve configuration files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/bebsworthy/pathsieve/internal/debug"
	"github.com/bebsworthy/pathsieve/pkg/config"
)

const (
	// ConfigFileName is the default configuration file name
	ConfigFileName = ".pathsieve.json"

	// ConfigEnvVar is the environment variable to specify custom config path
	ConfigEnvVar = "PATHSIEVE_CONFIG"
)

// ErrNoConfig is returned by Load when no search path holds a configuration file
var ErrNoConfig = errors.New("no configuration file found")

// Loader handles loading configuration files and their includes
type Loader struct {
	// SearchPaths contains the paths to search for configuration files
	SearchPaths []string
}

// Resolved is a configuration with its include files merged in. Filters
// from includes follow the file's own filters; toggles set by the file win
// over toggles set by includes.
type Resolved struct {
	*config.Config

	// Path is the configuration file that was loaded
	Path string

	// Included lists the include files in merge order
	Included []string
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		SearchPaths: getDefaultSearchPaths(),
	}
}

// Load attempts to load configuration from various sources
func (l *Loader) Load() (*Resolved, error) {
	debug.LogSection("Configuration Loading")

	if envPath := os.Getenv(ConfigEnvVar); envPath != "" {
		debug.Log("Loading config from environment variable %s: %s", ConfigEnvVar, envPath)
		res, err := l.loadFromPath(envPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", ConfigEnvVar, err)
		}
		return res, nil
	}

	debug.Log("Searching for config in default paths: %v", l.SearchPaths)
	for _, searchPath := range l.SearchPaths {
		configPath := filepath.Join(searchPath, ConfigFileName)
		debug.Log("Checking path: %s", configPath)
		if _, err := os.Stat(configPath); err == nil {
			debug.Log("Found config at: %s", configPath)
			res, err := l.loadFromPath(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
			return res, nil
		}
	}

	return nil, fmt.Errorf("%w in search paths: %v", ErrNoConfig, l.SearchPaths)
}

// LoadFromPath loads configuration from a specific file path
func (l *Loader) LoadFromPath(path string) (*Resolved, error) {
	return l.loadFromPath(path)
}

// loadFromPath loads and validates configuration from a file, then merges
// its includes
func (l *Loader) loadFromPath(path string) (*Resolved, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	debug.Log("Config file size: %d bytes", len(data))

	// Older files are migrated before validation since they may lack fields
	// the current schema requires.
	var cfg *config.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		debug.LogError(err, "parsing config")
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("failed to parse config: document is null")
	}
	if cfg.Version != "" {
		if cfg, err = NewSchemaVersioner().MigrateConfig(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		debug.LogError(err, "validating config")
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	res := &Resolved{Config: cfg, Path: path}
	if err := res.mergeIncludes(); err != nil {
		return nil, err
	}

	debug.Log("Loaded config: version=%s, filters=%d, includes=%d, builtins=%t",
		cfg.Version, len(cfg.Filters), len(res.Included), cfg.Builtins)

	return res, nil
}

// mergeIncludes expands include globs relative to the configuration file
// and appends every matched filter set
func (r *Resolved) mergeIncludes() error {
	if len(r.Include) == 0 {
		return nil
	}

	files, err := ExpandIncludes(filepath.Dir(r.Path), r.Include)
	if err != nil {
		return err
	}

	self, _ := filepath.Abs(r.Path)
	toggles := make(map[string]bool)
	seen := make(map[string]string, len(r.Filters))
	for _, f := range r.Filters {
		seen[f.Name] = r.Path
	}

	for _, file := range files {
		if abs, _ := filepath.Abs(file); abs == self {
			continue
		}

		data, err := readFile(file)
		if err != nil {
			return err
		}
		set, err := config.LoadFilterSet(data)
		if err != nil {
			return fmt.Errorf("include %s: %w", file, err)
		}

		for _, f := range set.Filters {
			if prev, ok := seen[f.Name]; ok {
				return fmt.Errorf("include %s: filter %q already defined in %s", file, f.Name, prev)
			}
			seen[f.Name] = file
			r.Filters = append(r.Filters, f)
		}
		for name, v := range set.Toggles {
			toggles[name] = v
		}
		r.Included = append(r.Included, file)
	}

	// The configuration file's own toggles take precedence
	for name, v := range r.Toggles {
		toggles[name] = v
	}
	if len(toggles) > 0 {
		r.Toggles = toggles
	}
	return nil
}

// ExpandIncludes resolves include globs against dir. Matches of each glob
// are sorted; a file matched by several globs is returned once.
func ExpandIncludes(dir string, patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid include glob %q", pattern)
		}

		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(dir, pattern)
		}

		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("include %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			debug.Log("Include %q matched no files", pattern)
		}

		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	return files, nil
}

func readFile(path string) ([]byte, error) {
	debug.Log("Loading config from file: %s", path)

	// #nosec G304 - path comes from the search paths, the env var or the user
	file, err := os.Open(path)
	if err != nil {
		debug.LogError(err, "opening config file")
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }() //nolint:errcheck // Best effort cleanup

	data, err := io.ReadAll(file)
	if err != nil {
		debug.LogError(err, "reading config file")
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return data, nil
}

// getDefaultSearchPaths returns the default paths to search for configuration
func getDefaultSearchPaths() []string {
	paths := []string{}

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, cwd)

		// Walk up the directory tree to find root of project
		dir := cwd
		for {
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}

			if isProjectRoot(parent) {
				paths = append(paths, parent)
				break
			}

			dir = parent
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}

	return paths
}

func isProjectRoot(dir string) bool {
	for _, marker := range []string{".git", "go.mod", ConfigFileName} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// ValidateConfigFile validates a configuration file without resolving its
// includes
func ValidateConfigFile(path string) error {
	// #nosec G304 - path is provided by user for validation purposes
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer func() { _ = file.Close() }() //nolint:errcheck // Best effort cleanup

	var cfg config.Config
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return NewValidator().Validate(&cfg)
}
