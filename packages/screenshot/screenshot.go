// Package screenshot saves diagnostic screenshots when a browser assertion
// fails.
package screenshot

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"go.uber.org/zap"
)

const (
	// FilePrefix is the file name prefix of every saved screenshot.
	FilePrefix = "screenshot-"
	// FileExt is the extension of every saved screenshot.
	FileExt = ".png"
)

// Capturer writes screenshots to a directory under unique, increasing names.
// A Capturer with an empty directory is disabled. It is safe for concurrent use.
type Capturer struct {
	dir     string
	counter atomic.Int64
	logger  *zap.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithLogger sets the logger used to report capture problems.
func WithLogger(l *zap.Logger) Option {
	return func(c *Capturer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Capturer writing into dir. An empty dir disables capture.
func New(dir string, opts ...Option) *Capturer {
	c := &Capturer{
		dir:    dir,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether captures are written anywhere.
func (c *Capturer) Enabled() bool {
	return c != nil && c.dir != ""
}

// Dir returns the output directory.
func (c *Capturer) Dir() string {
	return c.dir
}

// Capture takes a screenshot through the session owning target (an element's
// session, or target itself when it is a session) and returns the path of the
// written file.
//
// Capture never fails: when capture is disabled, target has no session, the
// driver cannot take the screenshot or the file cannot be written, it returns
// an empty path. Problems are logged.
func (c *Capturer) Capture(ctx context.Context, target any) string {
	if !c.Enabled() {
		return ""
	}

	session := webdriver.OwningSession(target)
	if session == nil {
		c.logger.Debug("no session to capture screenshot from", zap.String("target", fmt.Sprintf("%T", target)))
		return ""
	}

	encoded, err := session.Screenshot(ctx)
	if err != nil {
		c.logger.Debug("screenshot request failed", zap.Error(err))
		return ""
	}

	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		c.logger.Warn("screenshot payload is not valid base64", zap.Error(err))
		return ""
	}

	path := filepath.Join(c.dir, c.nextName())
	if err := c.write(path, image); err != nil {
		c.logger.Warn("error writing screenshot", zap.String("path", path), zap.Error(err))
		return ""
	}

	c.logger.Debug("screenshot saved", zap.String("path", path))
	return path
}

// nextName returns the next unused file name. The first is screenshot-1.png.
func (c *Capturer) nextName() string {
	n := c.counter.Add(1)
	return fmt.Sprintf("%s%d%s", FilePrefix, n, FileExt)
}

func (c *Capturer) write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
