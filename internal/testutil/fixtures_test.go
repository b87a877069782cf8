package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/pathsieve/pkg/config"
)

func TestFixturePath(t *testing.T) {
	tests := []struct {
		name         string
		relativePath string
	}{
		{name: "config fixture", relativePath: "configs/basic.pathsieve.json"},
		{name: "layered directory", relativePath: "configs/layered"},
		{name: "request fixture", relativePath: "requests/feed.jsonl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := FixturePath(t, tt.relativePath)

			assert.Contains(t, filepath.ToSlash(path), "test/fixtures")
			assert.True(t, filepath.IsAbs(path), "path is not absolute: %s", path)
			_, err := os.Stat(path)
			assert.NoError(t, err)
		})
	}
}

func TestConfigFixture(t *testing.T) {
	for _, input := range []string{"basic", "basic.pathsieve.json"} {
		path := ConfigFixture(t, input)
		assert.True(t, strings.HasSuffix(filepath.ToSlash(path), "configs/basic.pathsieve.json"), path)
	}

	cfg, err := config.LoadConfig(LoadFixture(t, "configs/basic.pathsieve.json"))
	require.NoError(t, err)
	assert.True(t, cfg.Builtins)
}

func TestRequestFixture(t *testing.T) {
	requests := RequestFixture(t, "feed")

	require.Len(t, requests, 7)
	assert.Equal(t, "carousel_ad", requests[2].Identifier)
	assert.Nil(t, requests[0].Buffer)
	assert.Equal(t, 0, requests[4].ContentIndex)
}

func TestCreateTempFixture(t *testing.T) {
	t.Run("copy config", func(t *testing.T) {
		tempPath := CreateTempFixture(t, "configs/basic.pathsieve.json")

		_, err := os.Stat(filepath.Join(tempPath, "basic.pathsieve.json"))
		assert.NoError(t, err)
	})

	t.Run("copy layered directory", func(t *testing.T) {
		tempPath := CreateTempFixture(t, "configs/layered")

		for _, file := range []string{".pathsieve.json", filepath.Join("filters", "community.json")} {
			_, err := os.Stat(filepath.Join(tempPath, file))
			assert.NoError(t, err, file)
		}
	})
}
