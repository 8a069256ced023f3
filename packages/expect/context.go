package expect

import (
	"context"
	"strings"
)

// ErrorMode controls how a nested assertion's failure is reported by the
// assertion that invoked it.
type ErrorMode int

const (
	// WrapWithContext replaces the nested message with the outer assertion's
	// standard message, keeping the nested diff and error as cause.
	WrapWithContext ErrorMode = iota
	// Bubble returns the nested failure unchanged.
	Bubble
)

// Context is handed to a CheckFunc. It describes one invocation.
type Context struct {
	Subject any
	Args    []any
	// Not is set when the negated form of a [not] assertion was invoked.
	Not bool
	// Name is the invoked assertion, including "not" when negated.
	Name string

	registry *Registry
	def      *Assertion
}

// Assertion returns the definition being run.
func (x *Context) Assertion() *Assertion {
	return x.def
}

// Standard returns the standard failure message for this invocation.
func (x *Context) Standard() string {
	var b strings.Builder
	b.WriteString("expected ")
	b.WriteString(x.registry.Inspect(x.Subject))
	b.WriteString(" ")
	b.WriteString(x.Name)
	if args := x.registry.inspectArgs(x.Args); args != "" {
		b.WriteString(" ")
		b.WriteString(args)
	}
	return b.String()
}

// Fail builds a failure carrying the standard message.
func (x *Context) Fail(diff string, cause error) *Failure {
	return &Failure{
		Message: x.Standard(),
		Diff:    diff,
		Cause:   cause,
	}
}

// Expect runs a nested assertion. With Bubble its failure is returned as is;
// with WrapWithContext it is reported under this invocation's standard message.
func (x *Context) Expect(ctx context.Context, mode ErrorMode, subject any, assertion string, args ...any) error {
	err := x.registry.Expect(ctx, subject, assertion, args...)
	if err == nil || mode == Bubble {
		return err
	}

	wrapped := x.Fail("", err)
	if nested, ok := AsFailure(err); ok {
		wrapped.Diff = nested.Diff
		wrapped.Screenshot = nested.Screenshot
	}
	return wrapped
}

// Inspect renders v the way failure messages do.
func (x *Context) Inspect(v any) string {
	return x.registry.Inspect(v)
}
