package config

import (
	"strings"
	"testing"

	pkgconfig "github.com/bebsworthy/pathsieve/pkg/config"
)

func TestSchemaVersioner_ValidateVersion(t *testing.T) {
	sv := NewSchemaVersioner()

	tests := []struct {
		version string
		wantErr bool
	}{
		{version: "1.0"},
		{version: "0.9"},
		{version: "0.1"},
		{version: "", wantErr: true},
		{version: "1", wantErr: true},
		{version: "1.x", wantErr: true},
		{version: "1.1", wantErr: true},
		{version: "2.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := sv.ValidateVersion(tt.version)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
		})
	}
}

func TestSchemaVersioner_MigrateConfig(t *testing.T) {
	sv := NewSchemaVersioner()

	cfg := &pkgconfig.Config{
		Version: "0.8",
		Filters: []*pkgconfig.FilterConfig{
			{Name: "f", Groups: []*pkgconfig.GroupConfig{
				{Name: "a", Patterns: []string{"x"}},
				{Name: "b", Kind: pkgconfig.KindBuffer, Patterns: []string{"y"}},
			}},
		},
	}

	migrated, err := sv.MigrateConfig(cfg)
	if err != nil {
		t.Fatalf("MigrateConfig failed: %v", err)
	}
	if migrated.Version != CurrentSchemaVersion {
		t.Errorf("Expected version %s, got %s", CurrentSchemaVersion, migrated.Version)
	}
	if migrated.Filters[0].Groups[0].Kind != pkgconfig.KindPath {
		t.Errorf("Expected missing kind to become %q", pkgconfig.KindPath)
	}
	if migrated.Filters[0].Groups[1].Kind != pkgconfig.KindBuffer {
		t.Error("Explicit kinds must be kept")
	}

	current := &pkgconfig.Config{Version: CurrentSchemaVersion}
	same, err := sv.MigrateConfig(current)
	if err != nil || same != current {
		t.Errorf("Expected current config to be returned unchanged, got %v, %v", same, err)
	}

	if _, err := sv.MigrateConfig(&pkgconfig.Config{Version: "3.0"}); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("Expected error for future version, got %v", err)
	}
}

func TestSchemaVersioner_CustomMigration(t *testing.T) {
	sv := NewSchemaVersioner()
	called := false
	sv.RegisterMigration("0.8", "0.9", func(cfg *pkgconfig.Config) (*pkgconfig.Config, error) {
		called = true
		cfg.Builtins = true
		return cfg, nil
	})

	migrated, err := sv.MigrateConfig(&pkgconfig.Config{Version: "0.8"})
	if err != nil {
		t.Fatalf("MigrateConfig failed: %v", err)
	}
	if !called || !migrated.Builtins {
		t.Error("Expected custom migration to run")
	}
}
