package output

import (
	"bytes"
	"encoding/xml"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func sampleResult() *runner.RunResult {
	return &runner.RunResult{
		ID:       "run-1",
		File:     "suites/home.webspec.yaml",
		Name:     "home",
		URL:      "suites/fixture.html",
		Duration: 120 * time.Millisecond,
		Passed:   1,
		Failed:   2,
		Skipped:  1,
		Timings: &runner.Timings{
			Count: 3,
			P50:   10 * time.Millisecond,
			P95:   20 * time.Millisecond,
			P99:   20 * time.Millisecond,
			Max:   20 * time.Millisecond,
		},
		Results: []*runner.CheckResult{
			{
				Name:      "greeting",
				Selector:  "#hello",
				Assertion: "to contain text",
				Args:      []string{"'Hello Webdriver'"},
				Line:      4,
				Passed:    true,
				Duration:  10 * time.Millisecond,
			},
			{
				Name:       "world",
				Selector:   "#hello",
				Assertion:  "to contain text",
				Args:       []string{"'Hello World'"},
				Line:       8,
				Duration:   20 * time.Millisecond,
				Message:    "expected WebElement to contain text 'Hello World'",
				Diff:       "Hello Webdriver\n^^^^^^^",
				Screenshot: "shots/screenshot-1.png",
			},
			{
				Name:      "sparkle",
				Selector:  "#hello",
				Assertion: "to sparkle",
				Line:      12,
				Duration:  time.Millisecond,
				Message:   `unknown assertion "to sparkle"`,
				Error:     errors.New(`unknown assertion "to sparkle"`),
			},
			{
				Name:       "later",
				Assertion:  "to exist",
				Skipped:    true,
				SkipReason: "not ready",
			},
		},
	}
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatHeader("1.0.0")
	f.FormatResult(sampleResult())
	f.FormatError(errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "webspec 1.0.0")
	assert.Contains(t, out, "Running: suites/home.webspec.yaml")
	assert.Contains(t, out, "✓ greeting (10ms)")
	assert.Contains(t, out, "✗ world (20ms)")
	assert.Contains(t, out, "→ expected WebElement to contain text 'Hello World'")
	assert.Contains(t, out, "      Hello Webdriver\n      ^^^^^^^\n")
	assert.Contains(t, out, "Screenshot: shots/screenshot-1.png")
	assert.Contains(t, out, `x sparkle (unknown assertion "to sparkle")`)
	assert.Contains(t, out, "- later (not ready)")
	assert.Contains(t, out, "1 passed, 2 failed, 1 skipped, 4 total")
	assert.Contains(t, out, "Timing: p50 10ms, p95 20ms, p99 20ms, max 20ms")
	assert.Contains(t, out, "Error: boom")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	require.True(t, gjson.Valid(out))

	assert.Equal(t, int64(4), gjson.Get(out, "summary.total").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "summary.passed").Int())
	assert.Equal(t, int64(2), gjson.Get(out, "summary.failed").Int())
	assert.Equal(t, int64(1), gjson.Get(out, "summary.skipped").Int())
	assert.Equal(t, 1000.0, gjson.Get(out, "duration").Float())

	assert.Equal(t, "run-1", gjson.Get(out, "suites.0.id").String())
	assert.Equal(t, 20.0, gjson.Get(out, "suites.0.timings.p95").Float())

	assert.Equal(t, "greeting", gjson.Get(out, "tests.0.name").String())
	assert.False(t, gjson.Get(out, "tests.0.message").Exists())
	assert.Equal(t, "'Hello World'", gjson.Get(out, "tests.1.args.0").String())
	assert.Equal(t, "Hello Webdriver\n^^^^^^^", gjson.Get(out, "tests.1.diff").String())
	assert.Equal(t, "shots/screenshot-1.png", gjson.Get(out, "tests.1.screenshot").String())
	assert.Equal(t, int64(8), gjson.Get(out, "tests.1.line").Int())
	assert.Equal(t, `unknown assertion "to sparkle"`, gjson.Get(out, "tests.2.error").String())
	assert.Equal(t, "not ready", gjson.Get(out, "tests.3.skipReason").String())
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))

	var suites JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &suites))
	assert.Equal(t, "webspec", suites.Name)
	assert.Equal(t, 4, suites.Tests)
	assert.Equal(t, 1, suites.Failures)
	assert.Equal(t, 1, suites.Errors)
	assert.Equal(t, 1, suites.Skipped)

	require.Len(t, suites.TestSuites, 1)
	s := suites.TestSuites[0]
	assert.Equal(t, "home", s.Name)
	require.Len(t, s.TestCases, 4)

	world := s.TestCases[1]
	assert.Equal(t, "suites/home.webspec.yaml:8", world.ClassName)
	require.NotNil(t, world.Failure)
	assert.Equal(t, "expected WebElement to contain text 'Hello World'", world.Failure.Message)
	assert.Contains(t, world.Failure.Content, "^^^^^^^")
	assert.Equal(t, "[[ATTACHMENT|shots/screenshot-1.png]]", world.SystemOut)

	require.NotNil(t, s.TestCases[2].Error)
	require.NotNil(t, s.TestCases[3].Skipped)
	assert.Equal(t, "not ready", s.TestCases[3].Skipped.Message)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "TAP version 13\n1..4\n"))
	assert.Contains(t, out, "ok 1 - greeting\n")
	assert.Contains(t, out, "not ok 2 - world\n")
	assert.Contains(t, out, "  message: \"expected WebElement to contain text 'Hello World'\"\n")
	assert.Contains(t, out, "  diff: |\n    Hello Webdriver\n    ^^^^^^^\n")
	assert.Contains(t, out, "  screenshot: shots/screenshot-1.png\n")
	assert.Contains(t, out, "not ok 3 - sparkle\n")
	assert.Contains(t, out, "  severity: error\n")
	assert.Contains(t, out, "ok 4 - later # SKIP not ready\n")
}

func TestHTMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewHTMLFormatter(HTMLWithWriter(&buf), HTMLWithBaseDir("shots"))
	f.FormatHeader("1.0.0")
	f.FormatResult(sampleResult())
	require.NoError(t, f.Flush(time.Second))

	out := buf.String()
	assert.Contains(t, out, "webspec 1.0.0")
	assert.Contains(t, out, `<div class="check failed">`)
	assert.Contains(t, out, `<img src="screenshot-1.png"`)
	assert.Contains(t, out, "4 total")
	assert.Contains(t, out, "Hello Webdriver\n^^^^^^^")
	assert.Contains(t, out, "unknown assertion &#34;to sparkle&#34;")
}

func TestHTMLFormatter_LinkWithoutBaseDir(t *testing.T) {
	f := NewHTMLFormatter()
	assert.Equal(t, "shots/screenshot-1.png", f.link(filepath.Join("shots", "screenshot-1.png")))
}
