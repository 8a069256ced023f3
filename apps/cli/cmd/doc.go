// Package cmd implements the webspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute checks from webspec suite files
//   - validate: Check suite files against the schema without running them
//   - list: Display all checks defined in files
//   - init: Create a config file and an example suite
//   - history: Show recorded runs and failures
//   - version: Show webspec version information
//
// The CLI supports flags for filtering, output formatting, parallel
// execution, failure screenshots and watch mode.
package cmd
