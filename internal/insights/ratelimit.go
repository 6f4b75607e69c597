package insights

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinInterval is the default minimum spacing between outbound
// reasoning calls.
const DefaultMinInterval = time.Second

// CallSpacer enforces a minimum interval between outbound reasoning calls,
// process-wide. It is a depth-1 token bucket: reservations are serialized,
// so no two callers that pass Wait are ever spaced closer than the
// configured interval. Construct one and pass it by reference to every
// caller; there is no global instance.
type CallSpacer struct {
	lim *rate.Limiter
}

// NewCallSpacer creates a spacer with the given minimum interval. A
// non-positive interval disables spacing.
func NewCallSpacer(minInterval time.Duration) *CallSpacer {
	if minInterval <= 0 {
		return &CallSpacer{lim: rate.NewLimiter(rate.Inf, 1)}
	}
	return &CallSpacer{lim: rate.NewLimiter(rate.Every(minInterval), 1)}
}

// Wait suspends the caller until its outbound slot is free, or until ctx is
// done.
func (s *CallSpacer) Wait(ctx context.Context) error {
	return s.lim.Wait(ctx)
}
