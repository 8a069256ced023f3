package output

import (
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/core/runner"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

var (
	_ Formatter = (*ConsoleFormatter)(nil)
	_ Flushable = (*JSONFormatter)(nil)
	_ Flushable = (*JUnitFormatter)(nil)
	_ Flushable = (*TAPFormatter)(nil)
	_ Flushable = (*HTMLFormatter)(nil)
)
