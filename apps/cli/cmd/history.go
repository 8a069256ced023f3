package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/config"
	"github.com/abdul-hamid-achik/webspec/packages/history"
	"github.com/spf13/cobra"
)

var (
	historyDBFlag    string
	historyLimitFlag int
	historyRunsFlag  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded failures and runs",
	Long: `Show checks that failed in recorded runs, with their screenshots.
Runs are recorded by 'webspec run --history <file>'.

Examples:
  webspec history --db webspec.db
  webspec history --db webspec.db --runs --limit 5`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBFlag, "db", getEnvString("WEBSPEC_HISTORY", ""), "History database (default: history from config) (env: WEBSPEC_HISTORY)")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum number of entries, 0 for all")
	historyCmd.Flags().BoolVar(&historyRunsFlag, "runs", false, "List runs instead of failures")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	path := historyDBFlag
	if path == "" {
		cfg, err := config.LoadConfig(configFlag)
		if err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
		}
		path = cfg.History
	}
	if path == "" {
		return withExitCode(ExitUsageError, errors.New("no history database: pass --db or set history in the config file"))
	}

	store, err := history.Open(path)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	defer w.Flush()

	if historyRunsFlag {
		runs, err := store.Runs(cmd.Context(), historyLimitFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "STARTED\tFILE\tPASSED\tFAILED\tSKIPPED\tDURATION")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
				r.Started.Local().Format(time.DateTime), r.File, r.Passed, r.Failed, r.Skipped, r.Duration)
		}
		return nil
	}

	failures, err := store.Failures(cmd.Context(), historyLimitFlag)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		fmt.Fprintln(w, "No failures recorded.")
		return nil
	}
	fmt.Fprintln(w, "STARTED\tLOCATION\tCHECK\tMESSAGE\tSCREENSHOT")
	for _, f := range failures {
		screenshot := f.Screenshot
		if screenshot == "" {
			screenshot = "-"
		}
		fmt.Fprintf(w, "%s\t%s:%d\t%s\t%s\t%s\n",
			f.Started.Local().Format(time.DateTime), f.File, f.Line, f.Check, firstLine(f.Message), screenshot)
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
