package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/env"
	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
	"github.com/abdul-hamid-achik/webspec/packages/expect"
	"github.com/abdul-hamid-achik/webspec/packages/screenshot"
	"github.com/abdul-hamid-achik/webspec/packages/webassert"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultConcurrency is the default number of concurrent checks in parallel mode
	DefaultConcurrency = 5
)

// Opener opens a page and returns the session driving it. Sessions that
// implement io.Closer are closed when the suite finishes.
type Opener interface {
	Open(ctx context.Context, url string) (webdriver.Session, error)
}

type Runner struct {
	opener   Opener
	registry *expect.Registry
	capturer *screenshot.Capturer
	config   *Config
	logger   *zap.Logger
}

type Config struct {
	Verbose     bool
	Timeout     time.Duration // per check
	Bail        bool
	NameFilter  string
	TagsFilter  []string
	Parallel    bool
	Concurrency int
	// Rate limits how many checks start per second in parallel mode. Zero
	// means unlimited.
	Rate float64
	// Screenshots is the directory for failure screenshots. Empty disables
	// them.
	Screenshots string
	// Variables resolves {{name}} placeholders in suites. Nil leaves them
	// as written.
	Variables *env.Resolver
	Logger    *zap.Logger
}

// NewRunner creates a runner. All files it runs share one screenshot
// counter, so file names are unique for the whole run.
func NewRunner(cfg *Config, opener Opener) (*Runner, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if opener == nil {
		return nil, errors.New("runner: nil opener")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	capturer := screenshot.New(cfg.Screenshots, screenshot.WithLogger(logger))
	registry, err := webassert.NewRegistry(webassert.Options{Capturer: capturer})
	if err != nil {
		return nil, err
	}

	return &Runner{
		opener:   opener,
		registry: registry,
		capturer: capturer,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Registry returns the assertion registry checks run against.
func (r *Runner) Registry() *expect.Registry {
	return r.registry
}

type RunResult struct {
	ID       string
	File     string
	Name     string
	URL      string
	Started  time.Time
	Results  []*CheckResult
	Duration time.Duration
	Passed   int
	Failed   int
	Skipped  int
	Timings  *Timings
}

type CheckResult struct {
	Name       string
	Selector   string
	Assertion  string
	Args       []string
	Line       int
	Passed     bool
	Skipped    bool
	SkipReason string
	Duration   time.Duration
	// Message and Diff describe an assertion failure.
	Message string
	Diff    string
	// Screenshot is the path of the screenshot taken on failure.
	Screenshot string
	// Error is set when the check could not be evaluated, such as an
	// unknown assertion or a wrong subject type.
	Error error
}

func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	file, err := suite.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return r.RunSuite(ctx, file)
}

// RunSuite opens the suite's page and runs its checks.
func (r *Runner) RunSuite(ctx context.Context, file *suite.File) (*RunResult, error) {
	start := time.Now()
	file = interpolate(r.config.Variables, file)
	result := &RunResult{
		ID:      uuid.NewString(),
		File:    file.Path,
		Name:    file.Name,
		URL:     resolveURL(file.URL, filepath.Dir(file.Path)),
		Started: start,
	}
	logger := r.logger.With(zap.String("run", result.ID), zap.String("file", file.Path))

	hasOnly := false
	for _, c := range file.Checks {
		if c.Only {
			hasOnly = true
			break
		}
	}

	var checks []*suite.Check
	for _, c := range file.Checks {
		if !r.shouldRun(file, c, hasOnly) {
			result.Results = append(result.Results, skipped(c, "filtered out"))
			result.Skipped++
			continue
		}
		if c.Skip != "" {
			result.Results = append(result.Results, skipped(c, c.Skip))
			result.Skipped++
			continue
		}
		checks = append(checks, c)
	}

	if len(checks) == 0 {
		result.Duration = time.Since(start)
		result.Timings = computeTimings(nil)
		return result, nil
	}

	session, err := r.opener.Open(ctx, result.URL)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", result.URL, err)
	}
	defer func() {
		if c, ok := session.(io.Closer); ok {
			if err := c.Close(); err != nil {
				logger.Warn("error closing session", zap.Error(err))
			}
		}
	}()

	var results []*CheckResult
	if err := r.waitForPage(ctx, session, file.WaitFor); err != nil {
		logger.Debug("page not ready", zap.Error(err))
		results = notReady(checks, err, r.capturer.Capture(ctx, session))
	} else if r.config.Parallel {
		results = r.runParallel(ctx, session, checks)
	} else {
		results = r.runSequential(ctx, session, checks)
	}

	for _, cr := range results {
		result.Results = append(result.Results, cr)
		switch {
		case cr.Passed:
			result.Passed++
		case cr.Skipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}

	result.Duration = time.Since(start)
	result.Timings = computeTimings(result.Results)
	logger.Debug("suite finished",
		zap.Int("passed", result.Passed),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped),
		zap.Duration("duration", result.Duration))
	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, session webdriver.Session, checks []*suite.Check) []*CheckResult {
	var results []*CheckResult
	for i, c := range checks {
		cr := r.runCheck(ctx, session, c)
		results = append(results, cr)
		if !cr.Passed && r.config.Bail {
			for _, rest := range checks[i+1:] {
				results = append(results, skipped(rest, "bail"))
			}
			break
		}
	}
	return results
}

func (r *Runner) runParallel(ctx context.Context, session webdriver.Session, checks []*suite.Check) []*CheckResult {
	concurrency := r.config.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var limiter *rate.Limiter
	if r.config.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.Rate), 1)
	}

	results := make([]*CheckResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range checks {
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				results[i] = failed(c, err)
				continue
			}
		}
		g.Go(func() error {
			results[i] = r.runCheck(gctx, session, c)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func (r *Runner) runCheck(ctx context.Context, session webdriver.Session, c *suite.Check) *CheckResult {
	cr := &CheckResult{
		Name:      c.Title(),
		Selector:  c.Selector,
		Assertion: c.Expect,
		Args:      r.inspectArgs(c.Args),
		Line:      c.Line,
	}

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	subject, args := subjectOf(ctx, session, c)

	start := time.Now()
	err := r.registry.Expect(ctx, subject, c.Expect, args...)
	cr.Duration = time.Since(start)

	r.logger.Debug("check finished",
		zap.String("check", cr.Name),
		zap.Duration("duration", cr.Duration),
		zap.Error(err))

	if err == nil {
		cr.Passed = true
		return cr
	}

	if f, ok := expect.AsFailure(err); ok {
		cr.Message = f.Message
		cr.Diff = f.Diff
		if cr.Diff == "" && f.Cause != nil {
			if _, nested := expect.AsFailure(f.Cause); !nested {
				cr.Diff = f.Cause.Error()
			}
		}
		cr.Screenshot = f.Screenshot
		return cr
	}
	cr.Message = err.Error()
	cr.Error = err
	return cr
}

// subjectOf picks what a check asserts on. "to locate" turns the selector
// into a pending lookup against the session; a check without a selector
// asserts on the session itself.
func subjectOf(ctx context.Context, session webdriver.Session, c *suite.Check) (any, []any) {
	if c.Selector == "" {
		return session, c.Args
	}
	if c.Expect == "to locate" {
		return session, append([]any{webassert.Locate(session, c.Selector)}, c.Args...)
	}
	return session.FindElement(ctx, c.Selector), c.Args
}

func (r *Runner) inspectArgs(args []any) []string {
	if len(args) == 0 {
		return nil
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = r.registry.Inspect(a)
	}
	return out
}

func (r *Runner) shouldRun(file *suite.File, c *suite.Check, hasOnly bool) bool {
	if hasOnly && !c.Only {
		return false
	}

	if r.config.NameFilter != "" {
		if !matchesPattern(c.Title(), r.config.NameFilter) {
			return false
		}
	}

	if len(r.config.TagsFilter) > 0 {
		tags := append(append([]string{}, file.Tags...), c.Tags...)
		if !hasAnyTag(tags, r.config.TagsFilter) {
			return false
		}
	}

	return true
}

func skipped(c *suite.Check, reason string) *CheckResult {
	return &CheckResult{
		Name:       c.Title(),
		Selector:   c.Selector,
		Assertion:  c.Expect,
		Line:       c.Line,
		Skipped:    true,
		SkipReason: reason,
	}
}

func failed(c *suite.Check, err error) *CheckResult {
	return &CheckResult{
		Name:      c.Title(),
		Selector:  c.Selector,
		Assertion: c.Expect,
		Line:      c.Line,
		Message:   err.Error(),
		Error:     err,
	}
}

// notReady fails every check with the wait error. The one screenshot of the
// unready page is attached to the first.
func notReady(checks []*suite.Check, err error, shot string) []*CheckResult {
	results := make([]*CheckResult, len(checks))
	for i, c := range checks {
		results[i] = failed(c, err)
	}
	results[0].Screenshot = shot
	return results
}

// resolveURL makes a relative file reference relative to the suite's
// directory. URLs with a scheme are returned as is.
func resolveURL(raw, baseDir string) string {
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		return raw
	}
	if filepath.IsAbs(raw) {
		return raw
	}
	return filepath.Join(baseDir, raw)
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' && len(pattern) > 1 {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
