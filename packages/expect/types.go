package expect

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Built-in type names.
const (
	TypeAny     = "any"
	TypeString  = "string"
	TypeRegexp  = "regexp"
	TypePending = "Pending"
)

// Type describes a kind of value assertions can be registered for.
type Type struct {
	// Name is used in assertion patterns, e.g. <WebElement>.
	Name string
	// Identify reports whether a value belongs to the type.
	Identify func(v any) bool
	// Inspect renders a value of the type in failure messages. When nil the
	// inspector of the next matching type is used.
	Inspect func(v any) string
}

// Pending is an operation whose result is not known yet, such as an element
// lookup that still has to reach the browser.
type Pending interface {
	Resolve(ctx context.Context) (any, error)
}

// PendingFunc adapts a function to Pending.
type PendingFunc func(ctx context.Context) (any, error)

// Resolve calls f.
func (f PendingFunc) Resolve(ctx context.Context) (any, error) {
	return f(ctx)
}

func builtinTypes() []*Type {
	return []*Type{
		{
			Name:     TypeAny,
			Identify: func(v any) bool { return true },
			Inspect:  inspectDefault,
		},
		{
			Name: TypeString,
			Identify: func(v any) bool {
				_, ok := v.(string)
				return ok
			},
			Inspect: func(v any) string {
				return "'" + strings.ReplaceAll(v.(string), "'", `\'`) + "'"
			},
		},
		{
			Name: TypeRegexp,
			Identify: func(v any) bool {
				re, ok := v.(*regexp.Regexp)
				return ok && re != nil
			},
			Inspect: func(v any) string {
				return "/" + v.(*regexp.Regexp).String() + "/"
			},
		},
		{
			Name: TypePending,
			Identify: func(v any) bool {
				_, ok := v.(Pending)
				return ok
			},
			Inspect: func(v any) string {
				if s, ok := v.(fmt.Stringer); ok {
					return s.String()
				}
				return "Pending"
			},
		},
	}
}

func inspectDefault(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case fmt.Stringer:
		return val.String()
	case error:
		return val.Error()
	}
	return fmt.Sprintf("%v", v)
}
