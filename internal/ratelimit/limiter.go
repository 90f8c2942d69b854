package ratelimit

import (
	"context"
	"time"
)

type Limiter interface {
	// Check decides whether one more request from identifier fits inside
	// the trailing window, appending it to the request log when it does.
	Check(ctx context.Context, identifier string) (Result, error)

	Limit() int

	Window() time.Duration
}

// Result is the outcome of a limiter check. RetryAfter is whole seconds and
// nil when no estimate could be computed.
type Result struct {
	Allowed    bool
	Identifier string
	RetryAfter *int
}
