package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bebsworthy/pathsieve/internal/debug"
	pkgconfig "github.com/bebsworthy/pathsieve/pkg/config"
)

// CurrentSchemaVersion is the current configuration schema version
const CurrentSchemaVersion = "1.0"

// SchemaVersioner handles configuration schema versioning and migration
type SchemaVersioner struct {
	// Map of "from->to" to migration function
	migrations map[string]MigrationFunc
}

// MigrationFunc migrates a configuration from one version to another
type MigrationFunc func(cfg *pkgconfig.Config) (*pkgconfig.Config, error)

// NewSchemaVersioner creates a schema versioner with the known migrations
func NewSchemaVersioner() *SchemaVersioner {
	sv := &SchemaVersioner{
		migrations: make(map[string]MigrationFunc),
	}
	sv.RegisterMigration("0.9", "1.0", migrateV0_9ToV1_0)
	return sv
}

// RegisterMigration registers a migration function for a version transition
func (sv *SchemaVersioner) RegisterMigration(fromVersion, toVersion string, fn MigrationFunc) {
	sv.migrations[fromVersion+"->"+toVersion] = fn
}

// ValidateVersion checks if a configuration version is valid
func (sv *SchemaVersioner) ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("configuration version is required")
	}

	major, minor, err := parseVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version format: %w", err)
	}

	currentMajor, currentMinor, _ := parseVersion(CurrentSchemaVersion)
	if major > currentMajor || (major == currentMajor && minor > currentMinor) {
		return fmt.Errorf("configuration version %s is newer than supported version %s", version, CurrentSchemaVersion)
	}

	return nil
}

// MigrateConfig migrates a configuration to the current schema version
func (sv *SchemaVersioner) MigrateConfig(cfg *pkgconfig.Config) (*pkgconfig.Config, error) {
	if cfg.Version == CurrentSchemaVersion {
		return cfg, nil
	}

	debug.LogSection("Schema Migration")
	debug.Log("Migrating config from %s to %s", cfg.Version, CurrentSchemaVersion)

	if err := sv.ValidateVersion(cfg.Version); err != nil {
		return nil, err
	}

	path, err := sv.findMigrationPath(cfg.Version, CurrentSchemaVersion)
	if err != nil {
		return nil, err
	}

	result := cfg
	for i := 0; i < len(path)-1; i++ {
		fromVer, toVer := path[i], path[i+1]

		migrationFn, exists := sv.migrations[fromVer+"->"+toVer]
		if !exists {
			debug.Log("No migration needed from %s to %s", fromVer, toVer)
			result.Version = toVer
			continue
		}

		debug.Log("Applying migration from %s to %s", fromVer, toVer)
		result, err = migrationFn(result)
		if err != nil {
			return nil, fmt.Errorf("migration from %s to %s failed: %w", fromVer, toVer, err)
		}
		result.Version = toVer
	}

	return result, nil
}

// findMigrationPath lists every minor version from one version to another
func (sv *SchemaVersioner) findMigrationPath(from, to string) ([]string, error) {
	fromMajor, fromMinor, err := parseVersion(from)
	if err != nil {
		return nil, fmt.Errorf("invalid from version: %w", err)
	}
	toMajor, toMinor, err := parseVersion(to)
	if err != nil {
		return nil, fmt.Errorf("invalid to version: %w", err)
	}

	path := []string{from}
	major, minor := fromMajor, fromMinor
	for major < toMajor || (major == toMajor && minor < toMinor) {
		if minor < 9 {
			minor++
		} else {
			major++
			minor = 0
		}
		path = append(path, fmt.Sprintf("%d.%d", major, minor))
	}

	return path, nil
}

// parseVersion parses a version string into major and minor components
func parseVersion(version string) (int, int, error) {
	parts := strings.Split(version, ".")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("version must be in format X.Y")
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid major version: %w", err)
	}

	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minor version: %w", err)
	}

	return major, minor, nil
}

// migrateV0_9ToV1_0 handles 0.9 files, which had no kind on groups and
// matched every group against the path.
func migrateV0_9ToV1_0(cfg *pkgconfig.Config) (*pkgconfig.Config, error) {
	for _, f := range cfg.Filters {
		for _, g := range f.Groups {
			if g.Kind == "" {
				g.Kind = pkgconfig.KindPath
			}
		}
	}
	return cfg, nil
}
