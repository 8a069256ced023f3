package webassert

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/webspec/packages/expect"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
)

// Locate returns a pending lookup of selector for use with "to locate".
func Locate(s webdriver.Session, selector string) expect.Pending {
	return &lookup{session: s, selector: selector}
}

type lookup struct {
	session  webdriver.Session
	selector string
}

// Resolve finds the element and makes sure it exists. A rejected lookup
// returns the driver's error untouched.
func (l *lookup) Resolve(ctx context.Context) (any, error) {
	el := l.session.FindElement(ctx, l.selector)
	if _, err := el.ID(ctx); err != nil {
		return nil, err
	}
	return el, nil
}

func (l *lookup) String() string {
	return fmt.Sprintf("element '%s'", l.selector)
}

// ScreenshotPath returns the screenshot attached to an assertion failure.
func ScreenshotPath(err error) (string, bool) {
	f, ok := expect.AsFailure(err)
	if !ok || f.Screenshot == "" {
		return "", false
	}
	return f.Screenshot, true
}
