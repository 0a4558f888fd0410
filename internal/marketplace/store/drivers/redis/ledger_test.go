package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	if testing.Short() {
		t.Skip("redis ledger tests need docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	require.NoError(t, err)

	l, err := NewLedger(ctx, Config{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestLedger(t *testing.T) {
	l := newTestLedger(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, l.Ping(ctx))

	require.NoError(t, l.RevokeToken(ctx, "fp-live", now.Add(time.Hour)))
	require.NoError(t, l.RevokeToken(ctx, "fp-live", now.Add(time.Hour)))
	revoked, err := l.IsTokenRevoked(ctx, "fp-live", now)
	require.NoError(t, err)
	require.True(t, revoked)

	require.NoError(t, l.RevokeToken(ctx, "fp-stale", now.Add(-time.Minute)))
	revoked, err = l.IsTokenRevoked(ctx, "fp-stale", now)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, l.RevokeToken(ctx, "fp-short", time.Now().Add(300*time.Millisecond)))
	require.Eventually(t, func() bool {
		revoked, err := l.IsTokenRevoked(ctx, "fp-short", time.Now())
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)

	n, err := l.DeleteExpiredRevokedTokens(ctx, now)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestNewLedgerUnreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewLedger(ctx, Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
