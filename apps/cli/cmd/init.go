package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/webspec/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new webspec project",
	Long: `Initialize a new webspec project in the current directory.

This creates:
  - webspec.config.json   - Configuration file
  - example.html          - A page to check
  - example.webspec.yaml  - Example suite

Examples:
  webspec init
  webspec init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const examplePage = `<!DOCTYPE html>
<html>
  <head><title>webspec example</title></head>
  <body>
    <div id="hello"><h1>Hello Webdriver</h1></div>
    <div id="hidden" style="visibility: hidden;">You cannot see me</div>
    <a id="docs" href="https://example.com/docs">Docs</a>
  </body>
</html>
`

const exampleSuite = `name: example
url: ./example.html
tags: [smoke]
waitFor:
  selector: "#hello"
  timeout: 5s
checks:
  - name: page has a greeting
    selector: "#hello"
    expect: to contain text
    args: ["Hello Webdriver"]

  - name: greeting is visible
    selector: "#hello"
    expect: to be visible

  - name: greeting matches a pattern
    selector: "#hello"
    expect: to contain html
    args: ["/<h1>hello/i"]

  - name: docs link points at the docs
    selector: "#docs"
    expect: to have attribute
    args: [href, "https://example.com/docs"]

  - name: hidden block has no class
    selector: "#hidden"
    expect: not to have attribute
    args: [class]

  - name: hidden block is hidden
    selector: "#hidden"
    expect: to be visible
    skip: fails on purpose, remove this line to see a screenshot
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "webspec.config.json")
	pageFile := filepath.Join(cwd, "example.html")
	suiteFile := filepath.Join(cwd, "example.webspec.yaml")

	if !forceInit {
		for _, f := range []string{configFile, pageFile, suiteFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Driver = config.DriverStatic
	cfg.Screenshots = "screenshots"
	cfg.Browser = &config.BrowserConfig{
		Headless:       config.BoolPtr(true),
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(pageFile, []byte(examplePage), 0644); err != nil {
		return fmt.Errorf("failed to create example page: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", pageFile)

	if err := os.WriteFile(suiteFile, []byte(exampleSuite), 0644); err != nil {
		return fmt.Errorf("failed to create example suite: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", suiteFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nwebspec project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'webspec run example.webspec.yaml' to execute the example checks.\n")

	return nil
}
