package github

import (
	"context"
	"time"

	ghErrors "github.com/krsjen/github-project-mcp/pkg/errors"
)

const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// withRetry executes op up to retryAttempts times, sleeping
// retryBaseDelay * 2^attempt between retryable failures. Terminal
// failures come back classified and tagged with label. This is the
// single retry policy for every outbound call in the package.
func (c *Client) withRetry(ctx context.Context, label string, op func() error) error {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err

		lastAttempt := attempt == retryAttempts-1
		if !ghErrors.IsRetryable(err) || lastAttempt {
			if lastAttempt {
				label += " (max retries exceeded)"
			}
			return ghErrors.Classify(err, label)
		}

		delay := retryBaseDelay * (1 << attempt)
		c.logger.Debug("retrying after transient failure",
			"context", label, "attempt", attempt+1, "delay", delay, "error", err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return ghErrors.Classify(lastErr, label)
		}
	}
	return ghErrors.Classify(lastErr, label)
}
