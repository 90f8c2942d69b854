package admission

import (
	"fmt"
	"strings"
	"time"

	"admission-gateway/internal/ratelimit"
	"admission-gateway/internal/storage"
)

// Tier names one rate-limit band. Identifiers starting with Prefix belong to
// it; the empty prefix marks the catch-all tier.
type Tier struct {
	Name        string
	Prefix      string
	Window      time.Duration
	MaxRequests int
}

type tierLimiter struct {
	tier    Tier
	limiter ratelimit.Limiter
}

// TierSet matches identifiers to tiers in declaration order and holds one
// long-lived limiter per tier.
type TierSet struct {
	entries []tierLimiter
}

// NewTierSet builds the per-tier limiters up front. The set must contain a
// tier with an empty prefix so every identifier lands somewhere. keyPrefix
// namespaces the request logs in the store; empty selects the default.
func NewTierSet(store storage.Store, strategy, keyPrefix string, tiers []Tier) (*TierSet, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("at least one tier required")
	}

	hasCatchAll := false
	entries := make([]tierLimiter, 0, len(tiers))
	for _, tier := range tiers {
		if tier.Name == "" {
			return nil, fmt.Errorf("tier with prefix %q has no name", tier.Prefix)
		}
		if tier.Window <= 0 || tier.MaxRequests <= 0 {
			return nil, fmt.Errorf("tier %q: window and max requests must be positive", tier.Name)
		}
		if tier.Prefix == "" {
			hasCatchAll = true
		}
		entries = append(entries, tierLimiter{
			tier:    tier,
			limiter: ratelimit.NewLimiter(store, strategy, tier.MaxRequests, tier.Window, keyPrefix),
		})
	}
	if !hasCatchAll {
		return nil, fmt.Errorf("no catch-all tier: one tier must have an empty prefix")
	}

	return &TierSet{entries: entries}, nil
}

// Select returns the first tier whose prefix matches the identifier. The
// catch-all tier guarantees a match.
func (t *TierSet) Select(identifier string) (Tier, ratelimit.Limiter) {
	for _, e := range t.entries {
		if strings.HasPrefix(identifier, e.tier.Prefix) {
			return e.tier, e.limiter
		}
	}
	// Unreachable: construction requires an empty-prefix tier.
	last := t.entries[len(t.entries)-1]
	return last.tier, last.limiter
}

// Tiers lists the configured tiers in match order.
func (t *TierSet) Tiers() []Tier {
	out := make([]Tier, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e.tier)
	}
	return out
}
