package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/bebsworthy/pathsieve/internal/filter"
	"github.com/bebsworthy/pathsieve/internal/reporter"
)

// FixturePath returns the absolute path to a fixture file or directory.
// The path is relative to the test/fixtures directory.
func FixturePath(t *testing.T, relativePath string) string {
	t.Helper()

	// Get the directory of this source file
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get source file path")
	}

	projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
	fixturePath := filepath.Clean(filepath.Join(projectRoot, "test", "fixtures", relativePath))

	if _, err := os.Stat(fixturePath); err != nil {
		t.Fatalf("Fixture not found: %s", fixturePath)
	}

	return fixturePath
}

// LoadFixture reads and returns the contents of a fixture file.
func LoadFixture(t *testing.T, relativePath string) []byte {
	t.Helper()

	path := FixturePath(t, relativePath)
	data, err := os.ReadFile(path) // #nosec G304 - paths are controlled by tests
	if err != nil {
		t.Fatalf("Failed to read fixture %s: %v", relativePath, err)
	}

	return data
}

// ConfigFixture returns the path to a configuration fixture. A bare name
// gets the .pathsieve.json suffix.
func ConfigFixture(t *testing.T, name string) string {
	t.Helper()
	if !strings.HasSuffix(name, ".json") {
		name += ".pathsieve.json"
	}
	return FixturePath(t, filepath.Join("configs", name))
}

// RequestFixture loads a JSON lines file of requests from test/fixtures/requests.
func RequestFixture(t *testing.T, name string) []filter.Request {
	t.Helper()
	if !strings.HasSuffix(name, ".jsonl") {
		name += ".jsonl"
	}

	requests, err := reporter.ReadRequests(bytes.NewReader(LoadFixture(t, filepath.Join("requests", name))))
	if err != nil {
		t.Fatalf("Invalid request fixture %s: %v", name, err)
	}
	return requests
}

// CreateTempFixture copies a fixture to a temporary directory and returns the path.
// The temporary directory is automatically cleaned up when the test completes.
func CreateTempFixture(t *testing.T, fixturePath string) string {
	t.Helper()

	tempDir := t.TempDir()
	if err := copyDir(FixturePath(t, fixturePath), tempDir); err != nil {
		t.Fatalf("Failed to copy fixture to temp dir: %v", err)
	}

	return tempDir
}

// copyDir recursively copies a directory. A file is copied into dst.
func copyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if !srcInfo.IsDir() {
		return copyFile(src, filepath.Join(dst, filepath.Base(src)), srcInfo.Mode())
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if err := copyFile(srcPath, dstPath, info.Mode()); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src) // #nosec G304 - paths are controlled by tests
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, mode)
}
