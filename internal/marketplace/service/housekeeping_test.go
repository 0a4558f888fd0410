package service

import (
	"testing"
	"time"

	"github.com/ponliv/marketplace/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ledger := f.store.RevokedTokens()
	now := time.Now()

	require.NoError(t, ledger.RevokeToken(t.Context(), "expired-1", now.Add(-time.Hour)))
	require.NoError(t, ledger.RevokeToken(t.Context(), "expired-2", now.Add(-time.Minute)))
	require.NoError(t, ledger.RevokeToken(t.Context(), "live", now.Add(time.Hour)))

	reg := prometheus.NewRegistry()
	hk := NewHousekeepingService(ledger, slogx.Discard(), time.Hour, reg)

	require.EqualValues(t, 2, hk.Cleanup(t.Context()))
	require.EqualValues(t, 0, hk.Cleanup(t.Context()))
	require.InDelta(t, 2, testutil.ToFloat64(hk.pruned), 0)

	revoked, err := ledger.IsTokenRevoked(t.Context(), "live", now)
	require.NoError(t, err)
	require.True(t, revoked)
}

func TestHousekeepingStartStop(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	hk := NewHousekeepingService(f.store.RevokedTokens(), slogx.Discard(), 0, nil)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
