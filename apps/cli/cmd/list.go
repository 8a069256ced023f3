package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List all checks in webspec suite files",
	Long: `List all checks defined in .webspec.yaml files.

Examples:
  webspec list home.webspec.yaml
  webspec list ./checks/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, errors.New("no .webspec.yaml files found"))
	}

	out := cmd.OutOrStdout()
	for _, file := range files {
		f, err := suite.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %v\n", err)
			continue
		}

		fmt.Fprintf(out, "\n%s (%s):\n", file, f.URL)
		for _, c := range f.Checks {
			fmt.Fprintf(out, "  - %s", c.Title())
			switch {
			case c.Skip != "":
				fmt.Fprintf(out, " [skip: %s]", c.Skip)
			case c.Only:
				fmt.Fprint(out, " [only]")
			}
			fmt.Fprintln(out)
			if tags := append(append([]string{}, f.Tags...), c.Tags...); len(tags) > 0 {
				fmt.Fprintf(out, "    tags: %s\n", strings.Join(tags, ", "))
			}
		}
	}

	return nil
}
