package marketplace_test

import (
	"context"
	"maps"
	"net/http"
	"testing"
	"time"

	"github.com/ponliv/marketplace/pkg/marketsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startSidecar runs a dependency on nw reachable under alias.
func startSidecar(t *testing.T, nw *testcontainers.DockerNetwork, image, alias string, port string, waitFor wait.Strategy) {
	t.Helper()

	c, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          image,
			ExposedPorts:   []string{port},
			Networks:       []string{nw.Name},
			NetworkAliases: map[string][]string{nw.Name: {alias}},
			WaitingFor:     waitFor,
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })
}

// TestMongoAndRedisBackends runs the session lifecycle with users and books
// in Mongo and the logout ledger in Redis.
func TestMongoAndRedisBackends(t *testing.T) {
	if testing.Short() {
		t.Skip("e2e tests need docker")
	}

	nw, err := network.New(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = nw.Remove(context.Background()) })

	startSidecar(t, nw, "mongo:7", "mongo", "27017/tcp",
		wait.ForListeningPort("27017/tcp").WithStartupTimeout(60*time.Second))
	startSidecar(t, nw, "redis:7-alpine", "redis", "6379/tcp",
		wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second))

	env := maps.Clone(relaxedLimits)
	env["STORE_DRIVER"] = "mongo"
	env["STORE_URL"] = "mongodb://mongo:27017"
	env["STORE_DATABASE"] = "marketplace_e2e"
	env["REVOCATION_BACKEND"] = "redis"
	env["REDIS_ADDR"] = "redis:6379"

	client := setupMarketplace(t, withEnv(env), withNetwork(nw.Name))
	ctx := t.Context()

	health, err := client.GetReadiness(ctx)
	assertHealthy(t, health, err)
	require.Equal(t, "ok", health.Checks.Ledger)

	seller := signUp(t, client, "seller", "loja@example.com")
	_, err = client.Register(ctx, registration("student", "LOJA@example.com"))
	assertAPIError(t, err, http.StatusBadRequest, marketsdk.KindDuplicateEmail)

	book, err := seller.CreateBook(ctx, listing("Fisico-Quimica 8", "9789720000002"))
	require.NoError(t, err)

	results, err := client.SearchBooks(ctx, map[string][]string{"q": {"QUIMICA"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, book.ID, results[0].ID)

	require.NoError(t, seller.Logout(ctx))
	_, err = seller.Me(ctx)
	assertAPIError(t, err, http.StatusUnauthorized, marketsdk.KindTokenRevoked)
}
