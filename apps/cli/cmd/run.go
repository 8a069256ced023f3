package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/config"
	"github.com/abdul-hamid-achik/webspec/packages/core/env"
	"github.com/abdul-hamid-achik/webspec/packages/core/runner"
	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
	"github.com/abdul-hamid-achik/webspec/packages/driver/roddriver"
	"github.com/abdul-hamid-achik/webspec/packages/driver/staticdriver"
	"github.com/abdul-hamid-achik/webspec/packages/history"
	"github.com/abdul-hamid-achik/webspec/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory>",
	Short: "Run checks from webspec suite files",
	Long: `Run checks defined in .webspec.yaml files.

Examples:
  webspec run home.webspec.yaml
  webspec run ./checks/ --tags smoke
  webspec run ./checks/ --driver static --screenshots ./shots
  webspec run ./checks/ --parallel --concurrency 4 --rate 10
  webspec run home.webspec.yaml -o junit --output-file report.xml
  webspec run ./checks/ --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	driverFlag      string
	screenshotsFlag string
	historyFlag     string
	nameFlag        string
	tagsFlag        string
	verboseFlag     int // 0=off, 1=-v, 2=-vv
	quietFlag       bool
	noColorFlag     bool
	outputFlag      string
	outputFileFlag  string
	bailFlag        bool
	timeoutFlag     string
	parallelFlag    bool
	concurrencyFlag int
	rateFlag        float64
	watchFlag       bool
	dryRunFlag      bool

	// Variable flags
	envFileFlag string
	varFlag     map[string]string

	// Browser flags
	browserBinFlag  string
	headlessFlag    bool
	debuggerURLFlag string
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&driverFlag, "driver", getEnvString("WEBSPEC_DRIVER", ""), "Driver: rod (headless browser) or static (HTML only) (env: WEBSPEC_DRIVER)")
	runCmd.Flags().StringVar(&screenshotsFlag, "screenshots", getEnvString("WEBSPEC_SCREENSHOTS", ""), "Directory for failure screenshots (env: WEBSPEC_SCREENSHOTS)")
	runCmd.Flags().StringVar(&historyFlag, "history", getEnvString("WEBSPEC_HISTORY", ""), "SQLite file to record results in (env: WEBSPEC_HISTORY)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only checks matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("WEBSPEC_TAGS", ""), "Run only checks with specified tags (comma-separated) (env: WEBSPEC_TAGS)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v for timings, -vv for driver logs)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("WEBSPEC_QUIET", false), "Suppress all output except errors (env: WEBSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("WEBSPEC_NO_COLOR", false), "Disable colored output (env: WEBSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("WEBSPEC_OUTPUT", ""), "Output formats, comma-separated: console, json, junit, tap, html (env: WEBSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("WEBSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: WEBSPEC_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("WEBSPEC_BAIL", false), "Stop on first failure (env: WEBSPEC_BAIL)")
	runCmd.Flags().StringVar(&timeoutFlag, "timeout", getEnvString("WEBSPEC_TIMEOUT", ""), "Per-check timeout (e.g., 30s, 1m) (env: WEBSPEC_TIMEOUT)")
	runCmd.Flags().BoolVarP(&parallelFlag, "parallel", "p", getEnvBool("WEBSPEC_PARALLEL", false), "Run checks of a suite in parallel (env: WEBSPEC_PARALLEL)")
	runCmd.Flags().IntVar(&concurrencyFlag, "concurrency", getEnvInt("WEBSPEC_CONCURRENCY", 0), "Number of concurrent checks when running in parallel (env: WEBSPEC_CONCURRENCY)")
	runCmd.Flags().Float64Var(&rateFlag, "rate", getEnvFloat("WEBSPEC_RATE", 0), "Checks started per second when running in parallel, 0 for unlimited (env: WEBSPEC_RATE)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch files for changes and re-run checks")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Parse and show what would run without executing")

	// Variable flags
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("WEBSPEC_ENV_FILE", ""), "Path to .env file for {{variable}} interpolation (env: WEBSPEC_ENV_FILE)")
	runCmd.Flags().StringToStringVar(&varFlag, "var", nil, "Set a suite variable (e.g., --var baseUrl=http://localhost:3000)")

	// Browser flags
	runCmd.Flags().StringVar(&browserBinFlag, "browser-bin", getEnvString("WEBSPEC_BROWSER_BIN", ""), "Path to the Chrome/Chromium binary (env: WEBSPEC_BROWSER_BIN)")
	runCmd.Flags().BoolVar(&headlessFlag, "headless", getEnvBool("WEBSPEC_HEADLESS", true), "Run the browser headless (env: WEBSPEC_HEADLESS)")
	runCmd.Flags().StringVar(&debuggerURLFlag, "debugger-url", getEnvString("WEBSPEC_DEBUGGER_URL", ""), "Connect to a running browser instead of launching one (env: WEBSPEC_DEBUGGER_URL)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// explicitBool returns v when the flag was given on the command line or
// through its environment variable, nil otherwise.
func explicitBool(cmd *cobra.Command, name, env string, v bool) *bool {
	if cmd.Flags().Changed(name) || os.Getenv(env) != "" {
		return config.BoolPtr(v)
	}
	return nil
}

// flagOverrides collects the settings given as flags or environment
// variables. Zero values leave the config file setting alone.
func flagOverrides(cmd *cobra.Command) (*config.Config, error) {
	o := &config.Config{
		Screenshots: screenshotsFlag,
		Driver:      strings.ToLower(driverFlag),
		Concurrency: concurrencyFlag,
		Rate:        rateFlag,
		History:     historyFlag,
		EnvFile:     envFileFlag,
		Parallel:    explicitBool(cmd, "parallel", "WEBSPEC_PARALLEL", parallelFlag),
		Bail:        explicitBool(cmd, "bail", "WEBSPEC_BAIL", bailFlag),
		NoColor:     explicitBool(cmd, "no-color", "WEBSPEC_NO_COLOR", noColorFlag),
	}
	if verboseFlag > 0 {
		o.Verbose = config.BoolPtr(true)
	}
	if quietFlag {
		o.NoColor = config.BoolPtr(true)
	}

	if timeoutFlag != "" {
		timeout, err := time.ParseDuration(timeoutFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout value %q: %w (use format like 30s, 1m, 500ms)", timeoutFlag, err)
		}
		if timeout <= 0 {
			return nil, fmt.Errorf("invalid timeout value %q: must be positive", timeoutFlag)
		}
		o.Timeout = int(timeout.Milliseconds())
	}

	if outputFlag != "" {
		o.Reporters = splitList(outputFlag)
	}

	headless := explicitBool(cmd, "headless", "WEBSPEC_HEADLESS", headlessFlag)
	if browserBinFlag != "" || debuggerURLFlag != "" || headless != nil {
		o.Browser = &config.BrowserConfig{
			Bin:         browserBinFlag,
			Headless:    headless,
			DebuggerURL: debuggerURLFlag,
		}
	}

	return o, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newLogger builds the diagnostics logger. Driver and screenshot logs are
// only shown at -vv.
func newLogger(verbosity int) (*zap.Logger, error) {
	if verbosity < 2 {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// newOpener creates the driver named by cfg. The returned func releases it.
func newOpener(ctx context.Context, cfg *config.Config, logger *zap.Logger) (runner.Opener, func() error, error) {
	switch cfg.Driver {
	case config.DriverStatic:
		d := staticdriver.New(staticdriver.WithLogger(logger))
		return d, d.Close, nil
	case config.DriverRod, "":
		b := cfg.Browser
		if b == nil {
			b = &config.BrowserConfig{}
		}
		d, err := roddriver.Launch(ctx, roddriver.Config{
			Bin:               b.Bin,
			Headless:          b.Headless,
			DebuggerURL:       b.DebuggerURL,
			ViewportWidth:     b.ViewportWidth,
			ViewportHeight:    b.ViewportHeight,
			NavigationTimeout: time.Duration(cfg.Timeout) * time.Millisecond,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown driver %q (use %s or %s)", cfg.Driver, config.DriverRod, config.DriverStatic)
	}
}

// multiFormatter sends every result to several formatters.
type multiFormatter []output.Formatter

func (m multiFormatter) FormatResult(result *runner.RunResult) {
	for _, f := range m {
		f.FormatResult(result)
	}
}

func (m multiFormatter) FormatError(err error) {
	for _, f := range m {
		f.FormatError(err)
	}
}

func (m multiFormatter) FormatHeader(version string) {
	for _, f := range m {
		f.FormatHeader(version)
	}
}

func (m multiFormatter) Flush(totalDuration time.Duration) error {
	var errs []error
	for _, f := range m {
		if flushable, ok := f.(output.Flushable); ok {
			errs = append(errs, flushable.Flush(totalDuration))
		}
	}
	return errors.Join(errs...)
}

// newFormatter creates the formatters named in reporters. A nil writer
// means stdout. baseDir is where relative screenshot links in reports
// resolve from.
func newFormatter(reporters []string, w io.Writer, cfg *config.Config, baseDir string) (output.Formatter, error) {
	var m multiFormatter
	for _, name := range reporters {
		switch strings.ToLower(name) {
		case "json":
			opts := []output.JSONOption{}
			if w != nil {
				opts = append(opts, output.JSONWithWriter(w))
			}
			m = append(m, output.NewJSONFormatter(opts...))
		case "junit":
			opts := []output.JUnitOption{}
			if w != nil {
				opts = append(opts, output.JUnitWithWriter(w))
			}
			m = append(m, output.NewJUnitFormatter(opts...))
		case "tap":
			opts := []output.TAPOption{}
			if w != nil {
				opts = append(opts, output.TAPWithWriter(w))
			}
			m = append(m, output.NewTAPFormatter(opts...))
		case "html":
			opts := []output.HTMLOption{output.HTMLWithBaseDir(baseDir)}
			if w != nil {
				opts = append(opts, output.HTMLWithWriter(w))
			}
			m = append(m, output.NewHTMLFormatter(opts...))
		case "console":
			consoleOpts := []output.ConsoleOption{
				output.WithVerbose(cfg.GetVerbose()),
				output.WithNoColor(cfg.GetNoColor()),
			}
			if w != nil {
				consoleOpts = append(consoleOpts, output.WithWriter(w))
			}
			m = append(m, output.NewConsoleFormatter(consoleOpts...))
		default:
			return nil, fmt.Errorf("unknown output format %q (use console, json, junit, tap or html)", name)
		}
	}
	if len(m) == 1 {
		return m[0], nil
	}
	return m, nil
}

func runCommand(cmd *cobra.Command, args []string) error {
	overrides, err := flagOverrides(cmd)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	// Load config from file (if present) and apply CLI overrides
	fileConfig, err := config.LoadConfig(configFlag)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}
	cfg := fileConfig.Merge(overrides)

	reporters := cfg.Reporters
	if len(reporters) == 0 {
		reporters = []string{"console"}
	}
	if outputFileFlag != "" && len(reporters) > 1 {
		return withExitCode(ExitUsageError, errors.New("--output-file takes a single output format"))
	}

	// Setup output writer
	var outWriter io.Writer
	baseDir, _ := os.Getwd()
	if outputFileFlag != "" {
		f, err := os.Create(outputFileFlag)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("cannot create output file: %w", err))
		}
		defer f.Close()
		outWriter = f
		if abs, err := filepath.Abs(filepath.Dir(outputFileFlag)); err == nil {
			baseDir = abs
		}
	}

	formatter, err := newFormatter(reporters, outWriter, cfg, baseDir)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		return withExitCode(ExitUsageError, err)
	}
	if len(files) == 0 {
		err := errors.New("no .webspec.yaml files found")
		formatter.FormatError(err)
		return withExitCode(ExitUsageError, err)
	}

	if dryRunFlag {
		for _, file := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "Would run: %s\n", file)
		}
		return nil
	}

	logger, err := newLogger(verboseFlag)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("creating logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opener, closeDriver, err := newOpener(ctx, cfg, logger)
	if err != nil {
		return withExitCode(ExitDriverError, fmt.Errorf("starting %s driver: %w", cfg.Driver, err))
	}
	defer func() {
		if err := closeDriver(); err != nil {
			logger.Warn("closing driver", zap.Error(err))
		}
	}()

	var store *history.Store
	if cfg.History != "" {
		store, err = history.Open(cfg.History)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("opening history: %w", err))
		}
		defer store.Close()
	}

	vars, err := env.Load(cfg.Variables, cfg.EnvFile, varFlag)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	vars.SetWarnFunc(func(format string, a ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", a...)
	})

	r, err := runner.NewRunner(&runner.Config{
		Verbose:     cfg.GetVerbose(),
		Timeout:     time.Duration(cfg.Timeout) * time.Millisecond,
		Bail:        cfg.GetBail(),
		NameFilter:  nameFlag,
		TagsFilter:  splitList(tagsFlag),
		Parallel:    cfg.GetParallel(),
		Concurrency: cfg.Concurrency,
		Rate:        cfg.Rate,
		Screenshots: cfg.Screenshots,
		Variables:   vars,
		Logger:      logger,
	}, opener)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	// runTests runs every file once and reports the exit code.
	runTests := func(formatter output.Formatter) int {
		formatter.FormatHeader(version)

		var failed, parseErrors, runErrors int
		startTime := time.Now()

		for _, file := range files {
			if ctx.Err() != nil {
				break
			}

			result, err := r.RunFile(ctx, file)
			if err != nil {
				var pe *suite.ParseError
				if errors.As(err, &pe) {
					formatter.FormatError(err)
					parseErrors++
				} else {
					formatter.FormatError(fmt.Errorf("%s: %w", file, err))
					runErrors++
				}
				if cfg.GetBail() {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			failed += result.Failed

			if store != nil {
				if err := store.Record(ctx, result); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: failed to record history: %v\n", err)
				}
			}

			if cfg.GetBail() && result.Failed > 0 {
				break
			}
		}

		// Flush output for formatters that accumulate results
		if flushable, ok := formatter.(output.Flushable); ok {
			if err := flushable.Flush(time.Since(startTime)); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error writing output: %v\n", err)
			}
		}

		switch {
		case parseErrors > 0:
			return ExitParseError
		case runErrors > 0:
			return ExitDriverError
		case failed > 0:
			return ExitTestFailure
		}
		return ExitSuccess
	}

	code := runTests(formatter)

	// If watch mode is not enabled, exit normally
	if !watchFlag {
		if code != ExitSuccess {
			return withExitCode(code, nil)
		}
		return nil
	}

	return watch(ctx, cmd, args, files, func() {
		// Accumulating formatters need fresh state for every run.
		formatter, err := newFormatter(reporters, outWriter, cfg, baseDir)
		if err != nil {
			return
		}
		runTests(formatter)
	})
}

// watch re-runs rerun whenever a suite or a local page next to one changes,
// until ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, args, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Add files and directories to watch
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	// Also watch the original args if they're directories
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	// Debounce rapid file changes
	var (
		pending <-chan time.Time
		changed string
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && isWatched(event.Name) {
				changed = event.Name
				pending = time.After(WatchDebounceDelay)
			}

		case <-pending:
			pending = nil
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running checks...\n\n", changed)
			rerun()
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

func isWatched(path string) bool {
	if suite.IsSuiteFile(path) {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && suite.IsSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if suite.IsSuiteFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}
