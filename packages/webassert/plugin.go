package webassert

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/webspec/packages/expect"
	"github.com/abdul-hamid-achik/webspec/packages/screenshot"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"go.uber.org/zap"
)

const (
	// PluginName identifies the plugin in an expect.Registry.
	PluginName = "webspec-webdriver"

	// TypeElement is the expect type name of page elements.
	TypeElement = "WebElement"
	// TypeSession is the expect type name of browser sessions.
	TypeSession = "WebDriver"
)

// Options configures the plugin.
type Options struct {
	// Screenshots is the directory failure screenshots are written to.
	// Empty disables screenshots.
	Screenshots string
	// Capturer overrides the capturer built from Screenshots, so several
	// registries can share one file counter.
	Capturer *screenshot.Capturer
	Logger   *zap.Logger
}

// Plugin registers the browser assertions.
type Plugin struct {
	capturer *screenshot.Capturer
}

// New creates the plugin.
func New(opts Options) *Plugin {
	c := opts.Capturer
	if c == nil {
		c = screenshot.New(opts.Screenshots, screenshot.WithLogger(opts.Logger))
	}
	return &Plugin{capturer: c}
}

// NewRegistry returns a registry with the plugin installed.
func NewRegistry(opts Options) (*expect.Registry, error) {
	r := expect.New()
	if err := r.Use(New(opts)); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *Plugin) Name() string {
	return PluginName
}

// Capturer returns the screenshot capturer used on failure.
func (p *Plugin) Capturer() *screenshot.Capturer {
	return p.capturer
}

func (p *Plugin) Install(r *expect.Registry) error {
	types := []expect.Type{
		{
			Name:     TypeElement,
			Identify: webdriver.IsElement,
			Inspect:  func(any) string { return TypeElement },
		},
		{
			Name:     TypeSession,
			Identify: webdriver.IsSession,
			Inspect:  func(any) string { return TypeSession },
		},
	}
	for _, t := range types {
		if err := r.AddType(t); err != nil {
			return err
		}
	}

	assertions := []struct {
		pattern string
		check   expect.CheckFunc
	}{
		{"<WebElement> to exist", p.toExist},
		{"<WebDriver> to locate <Pending>", p.toLocate},
		{"<WebElement> to be visible", p.toBeVisible},
		{"<WebElement> to contain text <string+>", p.containsAll(textOf)},
		{"<WebElement> to contain text <regexp>", p.matches(textOf)},
		{"<WebElement> to contain html <string+>", p.containsAll(htmlOf)},
		{"<WebElement> to contain html <regexp>", p.matches(htmlOf)},
		{"<WebElement> [not] to have attribute <string>", p.hasAttribute},
		{"<WebElement> to have attribute <string> <string>", p.hasAttributeValue},
	}
	for _, a := range assertions {
		if err := r.AddAssertion(a.pattern, a.check); err != nil {
			return err
		}
	}
	return nil
}

// withScreenshot annotates a failure with a screenshot taken through the
// session owning target. Failures that already carry a screenshot, taken by a
// nested assertion, are returned untouched.
func (p *Plugin) withScreenshot(ctx context.Context, target any, err error) error {
	if err == nil {
		return nil
	}
	f, ok := err.(*expect.Failure)
	if !ok {
		f = &expect.Failure{Message: err.Error(), Cause: err}
	}
	if f.Screenshot == "" {
		f.Screenshot = p.capturer.Capture(ctx, target)
	}
	return f
}

func (p *Plugin) toExist(ctx context.Context, x *expect.Context) error {
	el := x.Subject.(webdriver.Element)
	if _, err := el.ID(ctx); err != nil {
		return p.withScreenshot(ctx, el, x.Fail("", err))
	}
	return nil
}

// toLocate bubbles the lookup error so the driver's reason is reported as is.
func (p *Plugin) toLocate(ctx context.Context, x *expect.Context) error {
	session := x.Subject.(webdriver.Session)
	v, err := x.Args[0].(expect.Pending).Resolve(ctx)
	if err != nil {
		return p.withScreenshot(ctx, session, err)
	}
	if !webdriver.IsElement(v) {
		return p.withScreenshot(ctx, session, &expect.Failure{
			Message: fmt.Sprintf("expected %s to be a %s", x.Inspect(v), TypeElement),
		})
	}
	return nil
}

func (p *Plugin) toBeVisible(ctx context.Context, x *expect.Context) error {
	el := x.Subject.(webdriver.Element)
	if err := x.Expect(ctx, expect.Bubble, el, "to exist"); err != nil {
		return err
	}

	shown, err := el.Displayed(ctx)
	if err != nil {
		return p.withScreenshot(ctx, el, driverFailure(x, err))
	}
	if !shown {
		return p.withScreenshot(ctx, el, x.Fail("", nil))
	}
	return nil
}

// driverFailure reports a driver error, such as a missing or stale element,
// as the reason an assertion failed.
func driverFailure(x *expect.Context, err error) *expect.Failure {
	return x.Fail(err.Error(), err)
}

// source reads the string an assertion checks from an element.
type source func(ctx context.Context, el webdriver.Element) (string, error)

func textOf(ctx context.Context, el webdriver.Element) (string, error) {
	return el.Text(ctx)
}

func htmlOf(ctx context.Context, el webdriver.Element) (string, error) {
	return el.HTML(ctx)
}

func (p *Plugin) containsAll(read source) expect.CheckFunc {
	return func(ctx context.Context, x *expect.Context) error {
		el := x.Subject.(webdriver.Element)
		actual, err := read(ctx, el)
		if err != nil {
			return p.withScreenshot(ctx, el, driverFailure(x, err))
		}

		var diffs []string
		for _, arg := range x.Args {
			if want := arg.(string); !strings.Contains(actual, want) {
				diffs = append(diffs, highlightPartialMatch(actual, want))
			}
		}
		if len(diffs) > 0 {
			return p.withScreenshot(ctx, el, x.Fail(strings.Join(diffs, "\n\n"), nil))
		}
		return nil
	}
}

func (p *Plugin) matches(read source) expect.CheckFunc {
	return func(ctx context.Context, x *expect.Context) error {
		el := x.Subject.(webdriver.Element)
		actual, err := read(ctx, el)
		if err != nil {
			return p.withScreenshot(ctx, el, driverFailure(x, err))
		}
		if !x.Args[0].(*regexp.Regexp).MatchString(actual) {
			return p.withScreenshot(ctx, el, x.Fail("", nil))
		}
		return nil
	}
}

func (p *Plugin) hasAttribute(ctx context.Context, x *expect.Context) error {
	el := x.Subject.(webdriver.Element)
	name := x.Args[0].(string)

	value, err := el.Attribute(ctx, name)
	if err != nil {
		return p.withScreenshot(ctx, el, driverFailure(x, err))
	}

	switch {
	case value != nil && x.Not:
		return p.withScreenshot(ctx, el, x.Fail(fmt.Sprintf("attribute '%s' is present with value '%s'", name, *value), nil))
	case value == nil && !x.Not:
		return p.withScreenshot(ctx, el, x.Fail(fmt.Sprintf("attribute '%s' is absent", name), nil))
	}
	return nil
}

func (p *Plugin) hasAttributeValue(ctx context.Context, x *expect.Context) error {
	el := x.Subject.(webdriver.Element)
	name, want := x.Args[0].(string), x.Args[1].(string)

	value, err := el.Attribute(ctx, name)
	if err != nil {
		return p.withScreenshot(ctx, el, driverFailure(x, err))
	}
	if value == nil {
		return p.withScreenshot(ctx, el, x.Fail(fmt.Sprintf("attribute '%s' is absent", name), nil))
	}
	if *value != want {
		return p.withScreenshot(ctx, el, x.Fail(valueDiff(want, *value), nil))
	}
	return nil
}
