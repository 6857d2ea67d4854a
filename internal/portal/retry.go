// Where: internal/portal/retry.go
// What: Bounded retry with backoff for transient portal failures.
// Why: Ride out brief outages without ever re-submitting rejected forms.
package portal

import (
	"errors"
	"time"
)

// retryPolicy retries an operation while it fails with a TransientError.
// Any other error, and any success, ends the loop immediately.
type retryPolicy struct {
	attempts int
	backoff  time.Duration
	sleep    func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		attempts: 3,
		backoff:  500 * time.Millisecond,
		sleep:    time.Sleep,
	}
}

func (p retryPolicy) do(fn func() error) error {
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	delay := p.backoff
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleep(delay)
			delay *= 2
		}
		err = fn()
		if err == nil {
			return nil
		}
		var transientErr *TransientError
		if !errors.As(err, &transientErr) {
			return err
		}
	}
	return err
}
