// Package roddriver implements webdriver sessions on Chrome through the
// DevTools protocol using go-rod.
package roddriver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// Config controls how the browser is started.
type Config struct {
	// Bin is the browser executable. Empty lets the launcher find or
	// download one.
	Bin string
	// Headless defaults to true.
	Headless *bool
	// DebuggerURL attaches to a running browser instead of launching one.
	DebuggerURL string
	// ViewportWidth and ViewportHeight size new pages. Zero means 1280x800.
	ViewportWidth  int
	ViewportHeight int
	// NavigationTimeout bounds page loads. Zero means 30s.
	NavigationTimeout time.Duration
}

// IsHeadless returns whether the browser runs headless.
func (c Config) IsHeadless() bool {
	if c.Headless == nil {
		return true
	}
	return *c.Headless
}

func (c Config) viewport() (int, int) {
	w, h := c.ViewportWidth, c.ViewportHeight
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 800
	}
	return w, h
}

func (c Config) navigationTimeout() time.Duration {
	if c.NavigationTimeout <= 0 {
		return 30 * time.Second
	}
	return c.NavigationTimeout
}

// Driver owns one browser connection. Pages opened through it are independent
// sessions.
type Driver struct {
	cfg      Config
	browser  *rod.Browser
	launcher *launcher.Launcher
	logger   *zap.Logger

	mu    sync.Mutex
	pages []*rod.Page
}

// Launch starts or attaches to a browser.
func Launch(ctx context.Context, cfg Config, logger *zap.Logger) (*Driver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{cfg: cfg, logger: logger}

	controlURL := cfg.DebuggerURL
	if controlURL == "" {
		l := launcher.New().Context(ctx).Headless(cfg.IsHeadless())
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
		d.launcher = l
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		d.killLauncher()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	d.browser = browser

	logger.Debug("browser connected",
		zap.String("controlURL", controlURL),
		zap.Bool("headless", cfg.IsHeadless()))
	return d, nil
}

// Open creates a page, navigates to url and waits for it to load.
func (d *Driver) Open(ctx context.Context, url string) (_ webdriver.Session, err error) {
	page, err := d.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		if err != nil {
			_ = page.Close()
		}
	}()

	w, h := d.cfg.viewport()
	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: 1.0,
	}).Call(page); err != nil {
		d.logger.Warn("failed to set viewport", zap.Error(err))
	}

	nav := page.Context(ctx).Timeout(d.cfg.navigationTimeout())
	defer nav.CancelTimeout()
	if err := nav.Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}

	d.track(page)

	d.logger.Debug("page opened", zap.String("url", url), zap.String("target", string(page.TargetID)))
	return &Session{driver: d, page: page, url: url}, nil
}

func (d *Driver) track(page *rod.Page) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pages = append(d.pages, page)
}

// untrack forgets page and reports whether it was still open.
func (d *Driver) untrack(page *rod.Page) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, p := range d.pages {
		if p == page {
			d.pages = append(d.pages[:i], d.pages[i+1:]...)
			return true
		}
	}
	return false
}

// Close closes every page still open and the browser. A launched browser process is
// killed.
func (d *Driver) Close() error {
	d.mu.Lock()
	pages := d.pages
	d.pages = nil
	d.mu.Unlock()

	var errs []error
	for _, p := range pages {
		if err := p.Close(); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	if d.launcher == nil {
		return errors.Join(errs...)
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, err)
	}
	d.killLauncher()
	return errors.Join(errs...)
}

func (d *Driver) killLauncher() {
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher.Cleanup()
	}
}
