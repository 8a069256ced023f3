package staticdriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Element is a lazy reference to the first node matching a selector.
type Element struct {
	session  *Session
	selector string
}

func (e *Element) resolve() (*goquery.Selection, error) {
	if _, err := cascadia.Compile(e.selector); err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", e.selector, err)
	}
	sel := e.session.doc.Find(e.selector).First()
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", webdriver.ErrNoSuchElement, e.selector)
	}
	return sel, nil
}

// ID returns the node's position in document order.
func (e *Element) ID(ctx context.Context) (string, error) {
	sel, err := e.resolve()
	if err != nil {
		return "", err
	}
	target := sel.Get(0)

	n := 0
	found := false
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		for c := node.FirstChild; c != nil && !found; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			n++
			if c == target {
				found = true
				return
			}
			walk(c)
		}
	}
	walk(e.session.doc.Get(0))
	return fmt.Sprintf("node-%d", n), nil
}

func (e *Element) Attribute(ctx context.Context, name string) (*string, error) {
	sel, err := e.resolve()
	if err != nil {
		return nil, err
	}
	v, ok := sel.Attr(name)
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// Text returns the element's visible text with whitespace collapsed.
func (e *Element) Text(ctx context.Context) (string, error) {
	sel, err := e.resolve()
	if err != nil {
		return "", err
	}
	node := sel.Get(0)
	if !displayed(node) {
		return "", nil
	}
	var b strings.Builder
	visibleText(&b, node)
	return strings.Join(strings.Fields(b.String()), " "), nil
}

func (e *Element) HTML(ctx context.Context) (string, error) {
	sel, err := e.resolve()
	if err != nil {
		return "", err
	}
	return sel.Html()
}

func (e *Element) Displayed(ctx context.Context) (bool, error) {
	sel, err := e.resolve()
	if err != nil {
		return false, err
	}
	return displayed(sel.Get(0)), nil
}

func (e *Element) Session() webdriver.Session {
	return e.session
}

func (e *Element) String() string {
	return fmt.Sprintf("element '%s'", e.selector)
}
