package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DriverRod, cfg.Driver)
	assert.Equal(t, 30000, cfg.Timeout)
	assert.Equal(t, 5, cfg.Concurrency)
	assert.Equal(t, []string{"console"}, cfg.Reporters)
	assert.Empty(t, cfg.Screenshots)
	assert.False(t, cfg.GetParallel())
	assert.False(t, cfg.GetBail())
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetNoColor())
	assert.True(t, cfg.GetHeadless())
	assert.True(t, cfg.IsDefault())
}

func TestFindAndLoadConfig(t *testing.T) {
	t.Run("no file gives defaults", func(t *testing.T) {
		cfg, err := FindAndLoadConfig(t.TempDir())
		require.NoError(t, err)
		assert.True(t, cfg.IsDefault())
	})

	t.Run("reads first matching file", func(t *testing.T) {
		dir := t.TempDir()
		content := `{
  "screenshots": "artifacts",
  "driver": "static",
  "parallel": true,
  "browser": {"headless": false, "viewportWidth": 800}
}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".webspecrc"), []byte(content), 0644))

		cfg, err := FindAndLoadConfig(dir)
		require.NoError(t, err)
		assert.Equal(t, "artifacts", cfg.Screenshots)
		assert.Equal(t, DriverStatic, cfg.Driver)
		assert.True(t, cfg.GetParallel())
		assert.False(t, cfg.GetHeadless())
		assert.Equal(t, 800, cfg.Browser.ViewportWidth)
		// untouched fields keep defaults
		assert.Equal(t, 5, cfg.Concurrency)
		assert.False(t, cfg.IsDefault())
	})

	t.Run("invalid json", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "webspec.config.json"), []byte("{"), 0644))

		_, err := FindAndLoadConfig(dir)
		assert.Error(t, err)
	})
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Browser = &BrowserConfig{Bin: "/usr/bin/chromium", ViewportWidth: 1024}

	merged := base.Merge(&Config{
		Screenshots: "shots",
		Concurrency: 2,
		Rate:        4,
		Bail:        BoolPtr(true),
		Reporters:   []string{"junit"},
		Browser:     &BrowserConfig{Headless: BoolPtr(false), ViewportHeight: 600},
	})

	want := &Config{
		Screenshots: "shots",
		Driver:      DriverRod,
		Timeout:     30000,
		Concurrency: 2,
		Rate:        4,
		Bail:        BoolPtr(true),
		Reporters:   []string{"junit"},
		Browser: &BrowserConfig{
			Bin:            "/usr/bin/chromium",
			Headless:       BoolPtr(false),
			ViewportWidth:  1024,
			ViewportHeight: 600,
		},
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}

	// the receiver is not modified
	assert.Empty(t, base.Screenshots)
	assert.Nil(t, base.Bail)
	assert.Nil(t, base.Browser.Headless)
	assert.Same(t, base, base.Merge(nil))
}

func TestMerge_Variables(t *testing.T) {
	base := &Config{
		Variables: map[string]string{"baseUrl": "http://localhost", "user": "alice"},
		EnvFile:   ".env",
	}
	merged := base.Merge(&Config{
		Variables: map[string]string{"user": "bob"},
	})

	assert.Equal(t, map[string]string{"baseUrl": "http://localhost", "user": "bob"}, merged.Variables)
	assert.Equal(t, ".env", merged.EnvFile)
	// The base map is left alone.
	assert.Equal(t, "alice", base.Variables["user"])
	assert.False(t, merged.IsDefault())
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".webspec.config.json")
	cfg := DefaultConfig()
	cfg.Screenshots = "out"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out", loaded.Screenshots)
	assert.Equal(t, cfg.Reporters, loaded.Reporters)
}
