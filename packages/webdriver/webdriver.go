package webdriver

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoSuchElement is returned by element operations when the lookup
	// that produced the element matched nothing.
	ErrNoSuchElement = errors.New("no such element")
	// ErrUnsupported is returned when a driver cannot perform an operation.
	ErrUnsupported = errors.New("operation not supported by driver")
	// ErrWaitTimeout is returned by Wait when the condition never held.
	ErrWaitTimeout = errors.New("wait timed out")
)

// Element is a handle to one node in a rendered document.
//
// Element references are lazy: looking one up never fails, and lookup errors
// surface from the first operation performed on it.
type Element interface {
	// ID resolves the element and returns its driver-side identity.
	ID(ctx context.Context) (string, error)
	// Attribute returns the attribute value, or nil when it is absent.
	Attribute(ctx context.Context, name string) (*string, error)
	// Text returns the rendered text of the element.
	Text(ctx context.Context) (string, error)
	// HTML returns the inner markup of the element.
	HTML(ctx context.Context) (string, error)
	// Displayed reports whether the element is rendered visibly.
	Displayed(ctx context.Context) (bool, error)
	// Session returns the session that produced the element.
	Session() Session
}

// Session is a handle to one browser automation session.
type Session interface {
	// ExecuteScript runs a script in the page and returns its JSON-decoded result.
	ExecuteScript(ctx context.Context, script string, args ...any) (any, error)
	// FindElement returns a lazy reference to the first element matching the
	// CSS selector.
	FindElement(ctx context.Context, selector string) Element
	// Wait blocks until cond holds or timeout elapses.
	Wait(ctx context.Context, cond Condition, timeout time.Duration) error
	// Screenshot captures the viewport as a base64-encoded PNG.
	Screenshot(ctx context.Context) (string, error)
}

// Kind is the result of classifying an arbitrary value.
type Kind int

const (
	KindUnknown Kind = iota
	KindElement
	KindSession
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindSession:
		return "Session"
	default:
		return "Unknown"
	}
}

// Classify reports which capability set v exposes. Element wins when a value
// implements both.
func Classify(v any) Kind {
	switch v.(type) {
	case Element:
		return KindElement
	case Session:
		return KindSession
	default:
		return KindUnknown
	}
}

// IsElement reports whether v exposes the Element capabilities.
func IsElement(v any) bool {
	return Classify(v) == KindElement
}

// IsSession reports whether v exposes the Session capabilities.
func IsSession(v any) bool {
	return Classify(v) == KindSession
}

// OwningSession returns the session to use for v: the element's owner, the
// session itself, or nil when v is neither.
func OwningSession(v any) Session {
	switch t := v.(type) {
	case Element:
		return t.Session()
	case Session:
		return t
	default:
		return nil
	}
}
