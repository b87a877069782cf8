package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bebsworthy/pathsieve/internal/testutil"
	pkgconfig "github.com/bebsworthy/pathsieve/pkg/config"
)

func TestConfigCmd_Validate(t *testing.T) {
	stdout, stderr, _, err := execute(t, "", "--config", testutil.ConfigFixture(t, "basic"), "config", "--validate")
	if err != nil {
		t.Fatalf("config --validate failed: %v\n%s", err, stderr)
	}

	for _, want := range []string{
		"Configuration is valid",
		"Built-in catalog: true",
		"Filters: 1 configured",
		"chips (1 groups, 1 exceptions, any position)",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
	if strings.Contains(stderr, "Warnings") {
		t.Errorf("Expected no warnings, got:\n%s", stderr)
	}
}

func TestConfigCmd_Includes(t *testing.T) {
	dir := testutil.CreateTempFixture(t, "configs/layered")

	stdout, _, _, err := execute(t, "", "--config", filepath.Join(dir, ".pathsieve.json"), "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"Includes: 1 files", "community (1 groups, 0 exceptions, content index 0)", "Toggles: 2 referenced"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("Expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestConfigCmd_Warnings(t *testing.T) {
	path, err := testutil.CreateTestConfigFile(t.TempDir(), testutil.NewConfigBuilder().
		WithFilter(testutil.NewFilter("typo").WithPathGroup("g", "hide_tpyo", "banner").Build()).
		Build())
	if err != nil {
		t.Fatal(err)
	}

	_, stderr, _, err := execute(t, "", "--config", path, "config", "--validate")
	if err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	if !strings.Contains(stderr, `toggle "hide_tpyo" is not declared`) {
		t.Errorf("Expected undeclared toggle warning, got:\n%s", stderr)
	}
}

func TestConfigCmd_Invalid(t *testing.T) {
	_, stderr, _, err := execute(t, "", "--config", testutil.ConfigFixture(t, "invalid"), "config", "--validate")
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
	if !strings.Contains(stderr, "Suggestions") || !strings.Contains(stderr, "identifier") {
		t.Errorf("Expected kind suggestion, got:\n%s", stderr)
	}
}

func TestConfigCmd_Init(t *testing.T) {
	output := filepath.Join(t.TempDir(), ".pathsieve.json")

	if _, _, _, err := execute(t, "", "config", "--init", "--output", output); err != nil {
		t.Fatalf("config --init failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := pkgconfig.LoadConfig(data)
	if err != nil {
		t.Fatalf("Starter configuration does not load: %v", err)
	}
	if !cfg.Builtins || len(cfg.Filters) != 1 {
		t.Errorf("Unexpected starter configuration: %+v", cfg)
	}

	if _, _, _, err := execute(t, "", "config", "--init", "--output", output); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("Expected overwrite to be refused, got %v", err)
	}
	if _, _, _, err := execute(t, "", "config", "--init", "--output", output, "--force"); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}
}
