package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/webspec/packages/core/config"
	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
	"github.com/abdul-hamid-achik/webspec/packages/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSuite = `url: ./page.html
checks:
  - selector: "#hello"
    expect: to exist
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.webspec.yaml"), validSuite)
	writeFile(t, filepath.Join(dir, "nested", "b.webspec.yml"), validSuite)
	writeFile(t, filepath.Join(dir, "notes.yaml"), "x: 1")
	writeFile(t, filepath.Join(dir, "page.html"), "<p>hi</p>")

	t.Run("directory", func(t *testing.T) {
		files, err := collectFiles([]string{dir})
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(dir, "a.webspec.yaml"),
			filepath.Join(dir, "nested", "b.webspec.yml"),
		}, files)
	})

	t.Run("single non-suite file is ignored", func(t *testing.T) {
		files, err := collectFiles([]string{filepath.Join(dir, "notes.yaml")})
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := collectFiles([]string{filepath.Join(dir, "nope")})
		assert.Error(t, err)
	})
}

func TestIsWatched(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"home.webspec.yaml", true},
		{"home.webspec.yml", true},
		{"fixture.html", true},
		{"fixture.HTM", true},
		{"config.yaml", false},
		{"main.go", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isWatched(tt.path))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"console", "junit"}, splitList(" console, ,junit "))
	assert.Nil(t, splitList(""))
}

func TestNewFormatter(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("single", func(t *testing.T) {
		f, err := newFormatter([]string{"junit"}, &bytes.Buffer{}, cfg, "")
		require.NoError(t, err)
		assert.IsType(t, &output.JUnitFormatter{}, f)
	})

	t.Run("several", func(t *testing.T) {
		f, err := newFormatter([]string{"console", "JSON"}, &bytes.Buffer{}, cfg, "")
		require.NoError(t, err)
		m, ok := f.(multiFormatter)
		require.True(t, ok)
		assert.Len(t, m, 2)
		_, flushable := f.(output.Flushable)
		assert.True(t, flushable)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := newFormatter([]string{"yaml"}, nil, cfg, "")
		assert.ErrorContains(t, err, `unknown output format "yaml"`)
	})
}

func TestNewOpener_UnknownDriver(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Driver = "selenium"
	_, _, err := newOpener(t.Context(), cfg, nil)
	assert.ErrorContains(t, err, `unknown driver "selenium"`)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "expected a", firstLine("expected a\n\n-diff"))
	assert.Equal(t, "single", firstLine("single"))
}

func TestExitError(t *testing.T) {
	err := withExitCode(ExitParseError, errors.New("bad suite"))
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitParseError, ee.code)
	assert.Equal(t, "bad suite", err.Error())
	assert.Equal(t, "exit status 1", withExitCode(ExitTestFailure, nil).Error())
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.webspec.yaml")
	bad := filepath.Join(dir, "bad.webspec.yaml")
	writeFile(t, good, validSuite)

	var out, errOut bytes.Buffer
	validateCmd.SetOut(&out)
	validateCmd.SetErr(&errOut)
	t.Cleanup(func() {
		validateCmd.SetOut(nil)
		validateCmd.SetErr(nil)
	})

	require.NoError(t, validateCommand(validateCmd, []string{good}))
	assert.Contains(t, out.String(), "Valid: "+good)

	writeFile(t, bad, "checks: []\n")
	err := validateCommand(validateCmd, []string{bad})
	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitParseError, ee.code)
	assert.Contains(t, errOut.String(), "bad.webspec.yaml")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	var out bytes.Buffer
	initCmd.SetOut(&out)
	t.Cleanup(func() { initCmd.SetOut(nil) })

	require.NoError(t, initCommand(initCmd, nil))
	assert.Contains(t, out.String(), "webspec project initialized!")

	cfg, err := config.LoadConfig(filepath.Join(dir, "webspec.config.json"))
	require.NoError(t, err)
	assert.Equal(t, config.DriverStatic, cfg.Driver)
	assert.Equal(t, "screenshots", cfg.Screenshots)

	f, err := suite.ParseFile(filepath.Join(dir, "example.webspec.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "example", f.Name)
	assert.Len(t, f.Checks, 6)

	// A second run refuses to overwrite.
	err = initCommand(initCmd, nil)
	assert.ErrorContains(t, err, "file already exists")
}
