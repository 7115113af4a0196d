package ai

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// Pacer throttles outgoing completion calls client-side so a chatty agent
// cannot hammer the service.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer allows rps requests per second with the given burst.
func NewPacer(rps float64, burst int) *Pacer {
	if burst < 1 {
		burst = 1
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a slot is available or ctx is cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}

// retryable tells overload apart from caller errors: 429 and 5xx are worth
// one more attempt, anything else is not going to improve.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || (se.Code >= 500 && se.Code < 600)
	}
	// Network-level failures (timeouts, resets) come through untyped.
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// CompleteWithRetry makes one attempt at full parameters and, on a
// recoverable failure, exactly one more with reduced parameters. Anything
// after that is surfaced to the caller; committed state is never touched by
// a failed completion.
func CompleteWithRetry(ctx context.Context, p Provider, pacer *Pacer, req Request) (string, error) {
	if err := pacer.Wait(ctx); err != nil {
		return "", err
	}
	out, err := p.Complete(ctx, req)
	if err == nil {
		return out, nil
	}
	if !retryable(err) || ctx.Err() != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(500 * time.Millisecond):
	}

	reduced := Reduced(Params{Temperature: req.Temperature, MaxTokens: req.MaxTokens})
	req.Temperature = reduced.Temperature
	req.MaxTokens = reduced.MaxTokens
	return p.Complete(ctx, req)
}
