package insights

import (
	"errors"
	"fmt"
)

// Failure taxonomy for the reasoning boundary. Each kind maps to a distinct
// status code at the API layer; none of them is retried automatically and
// none of them ever populates the insight cache.
var (
	ErrUpstreamUnauthorized = errors.New("reasoning service rejected credentials")
	ErrUpstreamRateLimited  = errors.New("reasoning service rate limit reached")
	ErrUpstreamBadRequest   = errors.New("reasoning service rejected the request")
	ErrUpstreamServer       = errors.New("reasoning service internal error")
)

// ParseError reports a reasoning response that did not match the required
// AiInsights shape.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid reasoning response: %s", e.Reason)
}
