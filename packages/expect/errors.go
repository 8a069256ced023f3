package expect

import (
	"errors"
	"fmt"
	"strings"
)

// Failure is returned when an assertion does not hold.
type Failure struct {
	// Message is the standard message, e.g. "expected WebElement to exist".
	Message string
	// Diff optionally shows expected against actual values.
	Diff string
	// Screenshot is the path of a diagnostic screenshot taken when the
	// failure happened, or empty when none was taken.
	Screenshot string
	// Cause is the underlying error, such as a driver error.
	Cause error
}

func (f *Failure) Error() string {
	if f.Diff == "" {
		return f.Message
	}
	return f.Message + "\n\n" + f.Diff
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// TypeError is returned when no registered assertion accepts the subject or
// arguments it was invoked with.
type TypeError struct {
	Subject     string // inspected subject
	SubjectType string
	Assertion   string
	Args        string // inspected arguments
	Candidates  []string
}

func (e *TypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "expected %s %s", e.Subject, e.Assertion)
	if e.Args != "" {
		fmt.Fprintf(&b, " %s", e.Args)
	}
	fmt.Fprintf(&b, "\n  The assertion %q does not have a matching signature for: <%s> %s", e.Assertion, e.SubjectType, e.Assertion)
	if len(e.Candidates) > 0 {
		b.WriteString("\n  did you mean:")
		for _, c := range e.Candidates {
			fmt.Fprintf(&b, "\n    %s", c)
		}
	}
	return b.String()
}

// UnknownAssertionError is returned for assertion names nothing registered.
type UnknownAssertionError struct {
	Assertion string
}

func (e *UnknownAssertionError) Error() string {
	return fmt.Sprintf("unknown assertion %q", e.Assertion)
}

// AsFailure returns the *Failure in err's chain, if any.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// IsTypeError reports whether err is a wrong-type error.
func IsTypeError(err error) bool {
	var te *TypeError
	return errors.As(err, &te)
}
