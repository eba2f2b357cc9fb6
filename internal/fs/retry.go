package fs

import (
	"context"
	"time"

	"github.com/juju/clock"
	"github.com/juju/errors"
)

const maxRetries = 5

var (
	retryBase  = 100 * time.Millisecond
	retryClock clock.Clock = clock.WallClock
)

// retry runs fn until it succeeds, fails with a non-transient error, or has
// been tried maxRetries times. The delay doubles after every attempt.
func retry(ctx context.Context, opName string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return errors.Annotatef(err, "%s failed permanently", opName)
		}
		lastErr = err

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-retryClock.After(retryBase << (attempt - 1)):
		}
	}
	return errors.Annotatef(lastErr, "%s failed after %d retries", opName, maxRetries)
}
