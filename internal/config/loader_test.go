package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bebsworthy/pathsieve/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

const basicConfig = `{
  "version": "1.0",
  "toggles": {"hide_ads": true},
  "filters": [
    {
      "name": "ads",
      "exceptions": ["comment_thread"],
      "groups": [
        {"name": "carousel", "kind": "path", "toggle": "hide_ads", "patterns": ["carousel_ad"]}
      ]
    }
  ]
}`

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	writeFile(t, filepath.Join(tempDir, ConfigFileName), basicConfig)
	t.Setenv(ConfigEnvVar, "")

	loader := &Loader{
		SearchPaths: []string{filepath.Join(tempDir, "missing"), tempDir},
	}

	res, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if res.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", res.Version)
	}
	if len(res.Filters) != 1 || res.Filters[0].Name != "ads" {
		t.Errorf("Expected the ads filter, got %+v", res.Filters)
	}
	if res.Path != filepath.Join(tempDir, ConfigFileName) {
		t.Errorf("Expected path %s, got %s", filepath.Join(tempDir, ConfigFileName), res.Path)
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "custom.json")
	writeFile(t, configPath, basicConfig)
	t.Setenv(ConfigEnvVar, configPath)

	// Search paths are ignored when the env var is set
	loader := &Loader{SearchPaths: []string{t.TempDir()}}

	res, err := loader.Load()
	if err != nil {
		t.Fatalf("Failed to load config from env: %v", err)
	}
	if res.Path != configPath {
		t.Errorf("Expected path %s, got %s", configPath, res.Path)
	}

	t.Setenv(ConfigEnvVar, filepath.Join(tempDir, "nope.json"))
	if _, err := loader.Load(); err == nil || !strings.Contains(err.Error(), ConfigEnvVar) {
		t.Errorf("Expected error mentioning %s, got %v", ConfigEnvVar, err)
	}
}

func TestLoader_NoConfigFound(t *testing.T) {
	t.Setenv(ConfigEnvVar, "")
	loader := &Loader{SearchPaths: []string{t.TempDir()}}

	_, err := loader.Load()
	if err == nil {
		t.Fatal("Expected error when no config exists")
	}
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestLoader_InvalidFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{name: "malformed json", content: `{"version": `, errMsg: "failed to parse config"},
		{name: "null document", content: `null`, errMsg: "document is null"},
		{name: "no filters", content: `{"version": "1.0"}`, errMsg: "at least one filter"},
		{name: "future version", content: `{"version": "2.0", "builtins": true}`, errMsg: "newer than supported"},
		{
			name:    "bad kind",
			content: `{"version": "1.0", "filters": [{"name": "f", "groups": [{"name": "g", "kind": "regex", "patterns": ["x"]}]}]}`,
			errMsg:  "invalid kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFileName)
			writeFile(t, path, tt.content)

			_, err := (&Loader{}).LoadFromPath(path)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestLoader_MigratesOldVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	writeFile(t, path, `{
  "version": "0.9",
  "filters": [{"name": "shelf", "groups": [{"name": "g", "patterns": ["horizontal_shelf.eml"]}]}]
}`)

	res, err := (&Loader{}).LoadFromPath(path)
	if err != nil {
		t.Fatalf("Failed to load 0.9 config: %v", err)
	}
	if res.Version != CurrentSchemaVersion {
		t.Errorf("Expected version %s, got %s", CurrentSchemaVersion, res.Version)
	}
	if kind := res.Filters[0].Groups[0].Kind; kind != config.KindPath {
		t.Errorf("Expected migrated kind %q, got %q", config.KindPath, kind)
	}
}

func TestLoader_Includes(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	writeFile(t, configPath, `{
  "version": "1.0",
  "toggles": {"hide_chips": false},
  "include": ["filters/**/*.json"],
  "filters": [{"name": "root", "groups": [{"name": "g", "kind": "path", "patterns": ["root_only"]}]}]
}`)
	writeFile(t, filepath.Join(dir, "filters", "b.json"), `{
  "toggles": {"hide_chips": true, "hide_shelf": true},
  "filters": [{"name": "shelf", "contentIndex": 0, "groups": [{"name": "g", "kind": "path", "toggle": "hide_shelf", "patterns": ["horizontal_shelf.eml"]}]}]
}`)
	writeFile(t, filepath.Join(dir, "filters", "nested", "a.json"), `{
  "filters": [{"name": "chips", "groups": [{"name": "g", "kind": "path", "toggle": "hide_chips", "patterns": ["chip_bar"]}]}]
}`)

	res, err := (&Loader{}).LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config with includes: %v", err)
	}

	var names []string
	for _, f := range res.Filters {
		names = append(names, f.Name)
	}
	if strings.Join(names, ",") != "root,shelf,chips" {
		t.Errorf("Unexpected filter order: %v", names)
	}
	if len(res.Included) != 2 {
		t.Errorf("Expected 2 included files, got %v", res.Included)
	}
	if res.Toggles["hide_chips"] {
		t.Error("The configuration file's own toggle should win over an include")
	}
	if !res.Toggles["hide_shelf"] {
		t.Error("Expected toggle from include to be merged")
	}
}

func TestLoader_IncludeErrors(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ConfigFileName)
	writeFile(t, configPath, `{"version": "1.0", "include": ["*.json"], "filters": [{"name": "dup", "groups": [{"name": "g", "kind": "path", "patterns": ["x"]}]}]}`)
	writeFile(t, filepath.Join(dir, "other.json"), `{"filters": [{"name": "dup", "groups": [{"name": "g", "kind": "path", "patterns": ["y"]}]}]}`)

	_, err := (&Loader{}).LoadFromPath(configPath)
	if err == nil || !strings.Contains(err.Error(), "already defined") {
		t.Errorf("Expected duplicate filter error, got %v", err)
	}

	writeFile(t, filepath.Join(dir, "other.json"), `{"filters": []}`)
	_, err = (&Loader{}).LoadFromPath(configPath)
	if err == nil || !strings.Contains(err.Error(), "include") {
		t.Errorf("Expected include error, got %v", err)
	}
}

func TestExpandIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.json"), "{}")
	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	writeFile(t, filepath.Join(dir, "sub", "c.json"), "{}")

	files, err := ExpandIncludes(dir, []string{"*.json", "a.json", "**/c.json"})
	if err != nil {
		t.Fatalf("ExpandIncludes failed: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "sub", "c.json"),
	}
	if strings.Join(files, "\n") != strings.Join(want, "\n") {
		t.Errorf("Expected %v, got %v", want, files)
	}

	if _, err := ExpandIncludes(dir, []string{"[unclosed"}); err == nil {
		t.Error("Expected error for invalid glob")
	}
}

func TestValidateConfigFile(t *testing.T) {
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.json")
	writeFile(t, valid, basicConfig)
	if err := ValidateConfigFile(valid); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	unknown := filepath.Join(dir, "unknown.json")
	writeFile(t, unknown, `{"version": "1.0", "builtins": true, "colour": "red"}`)
	if err := ValidateConfigFile(unknown); err == nil {
		t.Error("Expected error for unknown field")
	}

	if err := ValidateConfigFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestGetDefaultSearchPaths(t *testing.T) {
	paths := getDefaultSearchPaths()
	if len(paths) == 0 {
		t.Fatal("Expected at least one search path")
	}

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if paths[0] != cwd {
		t.Errorf("Expected first search path to be %s, got %s", cwd, paths[0])
	}
}
