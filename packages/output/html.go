package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/runner"
)

//go:embed report.html.tmpl
var htmlTemplate string

// HTMLOutput represents the complete HTML output structure
type HTMLOutput struct {
	Version        string
	Summary        HTMLSummary
	Tests          []HTMLTest
	Duration       float64
	Time           string
	PassedPercent  float64
	FailedPercent  float64
	SkippedPercent float64
}

// HTMLSummary represents the check summary for HTML output
type HTMLSummary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// HTMLTest represents a single check result for HTML output
type HTMLTest struct {
	Name        string
	File        string
	Selector    string
	Assertion   string
	Args        []string
	Passed      bool
	Skipped     bool
	SkipReason  string
	Duration    float64
	Message     string
	Diff        string
	Error       string
	Screenshot  string
	StatusClass string
}

// HTMLFormatter formats check results as a standalone HTML report
type HTMLFormatter struct {
	writer  io.Writer
	results []HTMLTest
	version string
	baseDir string
}

// HTMLOption is a functional option for HTMLFormatter
type HTMLOption func(*HTMLFormatter)

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(opts ...HTMLOption) *HTMLFormatter {
	f := &HTMLFormatter{
		writer:  os.Stdout,
		results: make([]HTMLTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// HTMLWithWriter sets the output writer
func HTMLWithWriter(w io.Writer) HTMLOption {
	return func(f *HTMLFormatter) {
		f.writer = w
	}
}

// HTMLWithBaseDir makes screenshot links relative to dir, the directory the
// report is written to.
func HTMLWithBaseDir(dir string) HTMLOption {
	return func(f *HTMLFormatter) {
		f.baseDir = dir
	}
}

// FormatResult accumulates a suite result
func (f *HTMLFormatter) FormatResult(result *runner.RunResult) {
	for _, r := range result.Results {
		test := HTMLTest{
			Name:      r.Name,
			File:      result.File,
			Selector:  r.Selector,
			Assertion: r.Assertion,
			Args:      r.Args,
			Passed:    r.Passed,
			Skipped:   r.Skipped,
			Duration:  float64(r.Duration.Milliseconds()),
			Message:   r.Message,
			Diff:      r.Diff,
		}

		if r.Skipped {
			test.StatusClass = "skipped"
		} else if r.Passed {
			test.StatusClass = "passed"
		} else {
			test.StatusClass = "failed"
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		if r.Screenshot != "" {
			test.Screenshot = f.link(r.Screenshot)
		}

		f.results = append(f.results, test)
	}
}

func (f *HTMLFormatter) link(path string) string {
	if f.baseDir == "" {
		return filepath.ToSlash(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	base, err := filepath.Abs(f.baseDir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// FormatError handles errors (no-op for HTML, errors are in check results)
func (f *HTMLFormatter) FormatError(err error) {
	// Errors are included in individual check results
}

// FormatHeader captures the version for the HTML report
func (f *HTMLFormatter) FormatHeader(version string) {
	f.version = version
}

// Flush writes the accumulated HTML output
func (f *HTMLFormatter) Flush(totalDuration time.Duration) error {
	var passed, failed, skipped int
	for _, t := range f.results {
		if t.Skipped {
			skipped++
		} else if t.Passed {
			passed++
		} else {
			failed++
		}
	}

	total := len(f.results)
	var passedPct, failedPct, skippedPct float64
	if total > 0 {
		passedPct = float64(passed) / float64(total) * 100
		failedPct = float64(failed) / float64(total) * 100
		skippedPct = float64(skipped) / float64(total) * 100
	}

	output := HTMLOutput{
		Version: f.version,
		Summary: HTMLSummary{
			Total:   total,
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Tests:          f.results,
		Duration:       float64(totalDuration.Milliseconds()),
		Time:           time.Now().Format("2006-01-02 15:04:05"),
		PassedPercent:  passedPct,
		FailedPercent:  failedPct,
		SkippedPercent: skippedPct,
	}

	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse HTML template: %w", err)
	}

	return tmpl.Execute(f.writer, output)
}
