package service

import (
	"context"
	"testing"

	"admission-gateway/internal/override"

	"github.com/stretchr/testify/require"
)

func TestOverrideServiceApplyAndList(t *testing.T) {
	svc := NewOverrideService(override.NewMemoryStore(), nil)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, "c2", true, "req-1"))

	flags, err := svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"c2": true}, flags)

	require.NoError(t, svc.Apply(ctx, "c2", false, "req-2"))

	flags, err = svc.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"c2": false}, flags)
}

func TestOverrideServiceAuditsAreOptional(t *testing.T) {
	svc := NewOverrideService(override.NewMemoryStore(), nil)

	audits, err := svc.RecentAudits(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, audits)
}
