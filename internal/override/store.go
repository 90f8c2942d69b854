package override

import "context"

// Store holds per-client limiter bypass flags. A client with no recorded
// flag is not bypassed.
type Store interface {
	// Get reports the bypass flag for clientID, false when unset.
	Get(ctx context.Context, clientID string) (bool, error)

	// Set upserts the bypass flag for clientID.
	Set(ctx context.Context, clientID string, enabled bool) error

	// All returns a snapshot of every recorded flag.
	All(ctx context.Context) (map[string]bool, error)
}
