package transport

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited drops envelopes beyond a steady rate. It never blocks the
// caller.
type Limited struct {
	next    Transport
	limiter *rate.Limiter
}

// WithRateLimit allows perSecond envelopes with bursts of burst.
func WithRateLimit(next Transport, perSecond float64, burst int) *Limited {
	if burst < 1 {
		burst = 1
	}
	return &Limited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (l *Limited) Post(ctx context.Context, e Envelope) error {
	if !l.limiter.Allow() {
		return ErrRateLimited
	}
	return l.next.Post(ctx, e)
}

func (l *Limited) Close() error {
	return l.next.Close()
}
