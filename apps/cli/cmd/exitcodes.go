package cmd

// Exit codes for webspec CLI
const (
	// ExitSuccess indicates all checks passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more checks failed
	ExitTestFailure = 1

	// ExitParseError indicates a suite file could not be parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitDriverError indicates the browser or page could not be opened
	ExitDriverError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
