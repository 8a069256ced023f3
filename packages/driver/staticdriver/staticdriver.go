// Package staticdriver implements webdriver sessions over static HTML
// documents. It does not run scripts or lay pages out; visibility is derived
// from markup and inline styles.
package staticdriver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"go.uber.org/zap"
)

const userAgent = "webspec/1.0 (+https://github.com/abdul-hamid-achik/webspec)"

// Driver opens static sessions from files or HTTP URLs.
type Driver struct {
	client *http.Client
	logger *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithHTTPClient sets the client used to fetch http(s) URLs.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Driver) {
		d.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// New creates a Driver.
func New(opts ...Option) *Driver {
	d := &Driver{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Open loads the document at target, which is an http(s) URL, a file:// URL
// or a file path.
func (d *Driver) Open(ctx context.Context, target string) (webdriver.Session, error) {
	body, err := d.load(ctx, target)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	s, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", target, err)
	}
	s.url = target
	d.logger.Debug("opened static page", zap.String("url", target))
	return s, nil
}

// Close is a no-op; static sessions hold no browser.
func (d *Driver) Close() error {
	return nil
}

func (d *Driver) load(ctx context.Context, target string) (io.ReadCloser, error) {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
		f, err := os.Open(target)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", target, err)
		}
		return f, nil
	}

	if u.Scheme == "file" {
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", target, err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching %s: received status code %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

// Session is a parsed document.
type Session struct {
	doc *goquery.Document
	url string
}

// Parse reads an HTML document into a session.
func Parse(r io.Reader) (*Session, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Session{doc: doc}, nil
}

// ParseString is Parse over a string.
func ParseString(html string) (*Session, error) {
	return Parse(strings.NewReader(html))
}

// URL returns the address the session was opened from.
func (s *Session) URL() string {
	return s.url
}

// Title returns the document title.
func (s *Session) Title() string {
	return strings.TrimSpace(s.doc.Find("title").First().Text())
}

func (s *Session) ExecuteScript(ctx context.Context, script string, args ...any) (any, error) {
	return nil, webdriver.ErrUnsupported
}

func (s *Session) FindElement(ctx context.Context, selector string) webdriver.Element {
	return &Element{session: s, selector: selector}
}

func (s *Session) Wait(ctx context.Context, cond webdriver.Condition, timeout time.Duration) error {
	return webdriver.Poll(ctx, s, cond, timeout, webdriver.DefaultPollInterval)
}

// Screenshot returns a blank placeholder image, there is no rendering.
func (s *Session) Screenshot(ctx context.Context) (string, error) {
	return placeholder()
}

// Source returns the serialized document.
func (s *Session) Source() (string, error) {
	return s.doc.Html()
}
