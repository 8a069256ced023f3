package roddriver

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"github.com/go-rod/rod"
)

// Session is one browser page.
type Session struct {
	driver *Driver
	page   *rod.Page
	url    string
}

// Page returns the underlying rod page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// URL returns the address the page was opened at.
func (s *Session) URL() string {
	return s.url
}

// ExecuteScript runs script as the body of a function, so it can use
// "arguments" and "return" the way WebDriver scripts do.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	res, err := s.page.Context(ctx).Evaluate(rod.Eval("function() {\n"+script+"\n}", args...))
	if err != nil {
		return nil, fmt.Errorf("execute script: %w", err)
	}
	return res.Value.Val(), nil
}

func (s *Session) FindElement(ctx context.Context, selector string) webdriver.Element {
	return &Element{session: s, selector: selector}
}

func (s *Session) Wait(ctx context.Context, cond webdriver.Condition, timeout time.Duration) error {
	return webdriver.Poll(ctx, s, cond, timeout, webdriver.DefaultPollInterval)
}

func (s *Session) Screenshot(ctx context.Context) (string, error) {
	data, err := s.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Close closes the page. Closing a session twice, or after its driver was
// closed, does nothing.
func (s *Session) Close() error {
	if s.driver != nil && !s.driver.untrack(s.page) {
		return nil
	}
	return s.page.Close()
}

// Element is a lazy reference to the first node matching a CSS selector. It
// is looked up again on every call, so it never goes stale.
type Element struct {
	session  *Session
	selector string
}

func (e *Element) resolve(ctx context.Context) (*rod.Element, error) {
	has, el, err := e.session.page.Context(ctx).Has(e.selector)
	if err != nil {
		return nil, fmt.Errorf("find %q: %w", e.selector, err)
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", webdriver.ErrNoSuchElement, e.selector)
	}
	return el, nil
}

func (e *Element) ID(ctx context.Context) (string, error) {
	el, err := e.resolve(ctx)
	if err != nil {
		return "", err
	}
	return string(el.Object.ObjectID), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (*string, error) {
	el, err := e.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return el.Attribute(name)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	el, err := e.resolve(ctx)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// HTML returns the element's inner markup.
func (e *Element) HTML(ctx context.Context) (string, error) {
	el, err := e.resolve(ctx)
	if err != nil {
		return "", err
	}
	v, err := el.Property("innerHTML")
	if err != nil {
		return "", err
	}
	return v.Str(), nil
}

func (e *Element) Displayed(ctx context.Context) (bool, error) {
	el, err := e.resolve(ctx)
	if err != nil {
		return false, err
	}
	return el.Visible()
}

func (e *Element) Session() webdriver.Session {
	return e.session
}

func (e *Element) String() string {
	return fmt.Sprintf("element '%s'", e.selector)
}
