package admission

import (
	"context"

	"admission-gateway/internal/override"
)

// Kind is the closed set of admission outcomes.
type Kind int

const (
	// KindAdmitted lets the request through with capacity left.
	KindAdmitted Kind = iota

	// KindDenied rejects the request because the window is full.
	KindDenied

	// KindBypassed lets the request through on an admin override without
	// touching the limiter.
	KindBypassed

	// KindNoIdentity rejects a request that carries neither a usable
	// token nor a source address.
	KindNoIdentity

	// KindFailed reports a store failure; the request is rejected rather
	// than admitted unlimited.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindAdmitted:
		return "admitted"
	case KindDenied:
		return "denied"
	case KindBypassed:
		return "bypassed"
	case KindNoIdentity:
		return "no_identity"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the terminal admission decision for one request. RetryAfter is
// set only on denials where the wait could be computed; Err only on failures.
type Outcome struct {
	Kind       Kind
	Identity   Identity
	Tier       string
	RetryAfter *int
	Err        error
}

// Dispatcher resolves a request identity, consults overrides and runs the
// matching tier's limiter. Decide never returns a Go error; failures come
// back as KindFailed so the HTTP boundary renders every outcome in one place.
type Dispatcher struct {
	tiers     *TierSet
	overrides override.Store
}

func NewDispatcher(tiers *TierSet, overrides override.Store) *Dispatcher {
	return &Dispatcher{tiers: tiers, overrides: overrides}
}

func (d *Dispatcher) Decide(ctx context.Context, authorization, sourceAddr string) Outcome {
	identity, ok := ResolveIdentity(authorization, sourceAddr)
	if !ok {
		return Outcome{Kind: KindNoIdentity}
	}

	tier, limiter := d.tiers.Select(identity.Value)

	// Overrides apply to token identities only.
	if identity.Class == ClassToken {
		bypass, err := d.overrides.Get(ctx, identity.Value)
		if err != nil {
			return Outcome{Kind: KindFailed, Identity: identity, Tier: tier.Name, Err: err}
		}
		if bypass {
			return Outcome{Kind: KindBypassed, Identity: identity, Tier: tier.Name}
		}
	}

	res, err := limiter.Check(ctx, identity.Value)
	if err != nil {
		return Outcome{Kind: KindFailed, Identity: identity, Tier: tier.Name, Err: err}
	}

	out := Outcome{Identity: identity, Tier: tier.Name, RetryAfter: res.RetryAfter}
	if res.Allowed {
		out.Kind = KindAdmitted
	} else {
		out.Kind = KindDenied
	}
	return out
}

// Tiers exposes the configured tiers for status reporting.
func (d *Dispatcher) Tiers() []Tier {
	return d.tiers.Tiers()
}
