package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/runner"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary  JSONSummary `json:"summary"`
	Suites   []JSONSuite `json:"suites"`
	Tests    []JSONTest  `json:"tests"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary represents the check summary
type JSONSummary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// JSONSuite describes one executed suite file
type JSONSuite struct {
	ID       string       `json:"id"`
	File     string       `json:"file"`
	Name     string       `json:"name"`
	URL      string       `json:"url"`
	Duration float64      `json:"duration"`
	Timings  *JSONTimings `json:"timings,omitempty"`
}

// JSONTimings are check duration percentiles in milliseconds
type JSONTimings struct {
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

// JSONTest represents a single check result
type JSONTest struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Line       int      `json:"line,omitempty"`
	Selector   string   `json:"selector,omitempty"`
	Assertion  string   `json:"assertion"`
	Args       []string `json:"args,omitempty"`
	Passed     bool     `json:"passed"`
	Skipped    bool     `json:"skipped,omitempty"`
	SkipReason string   `json:"skipReason,omitempty"`
	Duration   float64  `json:"duration"`
	Message    string   `json:"message,omitempty"`
	Diff       string   `json:"diff,omitempty"`
	Screenshot string   `json:"screenshot,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// JSONFormatter formats check results as JSON
type JSONFormatter struct {
	writer  io.Writer
	suites  []JSONSuite
	results []JSONTest
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		suites:  make([]JSONSuite, 0),
		results: make([]JSONTest, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	s := JSONSuite{
		ID:       result.ID,
		File:     result.File,
		Name:     result.Name,
		URL:      result.URL,
		Duration: millis(result.Duration),
	}
	if t := result.Timings; t != nil && t.Count > 0 {
		s.Timings = &JSONTimings{
			P50: millis(t.P50),
			P95: millis(t.P95),
			P99: millis(t.P99),
			Max: millis(t.Max),
		}
	}
	f.suites = append(f.suites, s)

	for _, r := range result.Results {
		test := JSONTest{
			Name:       r.Name,
			File:       result.File,
			Line:       r.Line,
			Selector:   r.Selector,
			Assertion:  r.Assertion,
			Args:       r.Args,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Duration:   millis(r.Duration),
			Message:    r.Message,
			Diff:       r.Diff,
			Screenshot: r.Screenshot,
		}

		if r.SkipReason != "" && r.SkipReason != "filtered out" {
			test.SkipReason = r.SkipReason
		}

		if r.Error != nil {
			test.Error = r.Error.Error()
		}

		f.results = append(f.results, test)
	}
}

func (f *JSONFormatter) FormatError(err error) {
	// Errors are included in individual check results
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
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

	output := JSONOutput{
		Summary: JSONSummary{
			Total:   len(f.results),
			Passed:  passed,
			Failed:  failed,
			Skipped: skipped,
		},
		Suites:   f.suites,
		Tests:    f.results,
		Duration: millis(totalDuration),
		Time:     time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
