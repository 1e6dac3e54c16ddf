package behaviors

import (
	"context"
	"fmt"
	"time"

	"github.com/opencafe/saiokit/pkg/swift"
)

// Default polling cadence for waits.
const (
	defaultWaitInterval = 500 * time.Millisecond
	defaultWaitTimeout  = 30 * time.Second
)

// WaitOptions tune a polling wait. Zero values fall back to the defaults.
type WaitOptions struct {
	Interval time.Duration
	Timeout  time.Duration
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Interval <= 0 {
		o.Interval = defaultWaitInterval
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultWaitTimeout
	}
	return o
}

// TimeoutError reports a wait that did not reach its condition in time
type TimeoutError struct {
	What    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.What)
}

// WaitForObjectExists polls until the object is visible
func (b *Behaviors) WaitForObjectExists(ctx context.Context, container, name string, opts WaitOptions) error {
	return b.waitFor(ctx, fmt.Sprintf("object %s/%s to exist", container, name), opts,
		func(ctx context.Context) (bool, error) {
			_, err := b.client.StatObject(ctx, container, name)
			if swift.IsNotFound(err) {
				return false, nil
			}
			if err != nil {
				return false, err
			}
			return true, nil
		})
}

// WaitForObjectGone polls until the object stops being visible, e.g. after
// its scheduled expiry.
func (b *Behaviors) WaitForObjectGone(ctx context.Context, container, name string, opts WaitOptions) error {
	return b.waitFor(ctx, fmt.Sprintf("object %s/%s to disappear", container, name), opts,
		func(ctx context.Context) (bool, error) {
			_, err := b.client.StatObject(ctx, container, name)
			if swift.IsNotFound(err) {
				return true, nil
			}
			if err != nil {
				return false, err
			}
			return false, nil
		})
}

// waitFor polls check at the configured interval until it reports done,
// errors, or the timeout lapses.
func (b *Behaviors) waitFor(ctx context.Context, what string, opts WaitOptions, check func(context.Context) (bool, error)) error {
	opts = opts.withDefaults()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		done, err := check(ctx)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return &TimeoutError{What: what, Timeout: opts.Timeout}
			}
			return fmt.Errorf("waiting for %s: %w", what, err)
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return &TimeoutError{What: what, Timeout: opts.Timeout}
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
