package webdriver

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultPollInterval is how often Poll re-evaluates a condition.
const DefaultPollInterval = 100 * time.Millisecond

// Condition is evaluated repeatedly by Session.Wait until it returns true.
// Returning an error stops the wait with that error.
type Condition func(ctx context.Context, s Session) (bool, error)

// Poll evaluates cond against s every interval until it holds, it fails, the
// timeout elapses or ctx is done. Drivers use it to implement Session.Wait.
func Poll(ctx context.Context, s Session, cond Condition, timeout, interval time.Duration) error {
	if cond == nil {
		return errors.New("nil wait condition")
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(ctx, s)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %v", ErrWaitTimeout, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ElementLocated holds once selector matches an element.
func ElementLocated(selector string) Condition {
	return func(ctx context.Context, s Session) (bool, error) {
		if _, err := s.FindElement(ctx, selector).ID(ctx); err != nil {
			if errors.Is(err, ErrNoSuchElement) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}
}

// ElementVisible holds once selector matches a displayed element.
func ElementVisible(selector string) Condition {
	return func(ctx context.Context, s Session) (bool, error) {
		shown, err := s.FindElement(ctx, selector).Displayed(ctx)
		if errors.Is(err, ErrNoSuchElement) {
			return false, nil
		}
		return shown, err
	}
}
