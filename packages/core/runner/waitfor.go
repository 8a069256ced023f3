package runner

import (
	"context"
	"fmt"

	"github.com/abdul-hamid-achik/webspec/packages/core/suite"
	"github.com/abdul-hamid-achik/webspec/packages/webdriver"
	"go.uber.org/zap"
)

// waitForPage blocks until the waitFor selector is present on the page or
// its timeout elapses.
func (r *Runner) waitForPage(ctx context.Context, session webdriver.Session, cfg *suite.WaitFor) error {
	if cfg == nil {
		return nil
	}

	r.logger.Debug("waiting for page",
		zap.String("selector", cfg.Selector),
		zap.Duration("timeout", cfg.Timeout))

	if err := session.Wait(ctx, webdriver.ElementLocated(cfg.Selector), cfg.Timeout); err != nil {
		return fmt.Errorf("page not ready: %s not found: %w", cfg.Selector, err)
	}
	return nil
}
