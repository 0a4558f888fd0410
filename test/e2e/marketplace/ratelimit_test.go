package marketplace_test

import (
	"net/http"
	"testing"

	"github.com/ponliv/marketplace/pkg/marketsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLogin checks the strict profile: 5 attempts per minute for
// one IP and email.
func TestRateLimitLogin(t *testing.T) {
	client := setupMarketplace(t)

	for i := range 5 {
		_, err := client.Login(t.Context(), "nobody@example.com", "wrong-password")
		require.Error(t, err)
		assertAPIError(t, err, http.StatusUnauthorized, marketsdk.KindInvalidCredentials)
		t.Logf("attempt %d rejected with invalid credentials", i+1)
	}

	_, err := client.Login(t.Context(), "nobody@example.com", "wrong-password")
	assertAPIError(t, err, http.StatusTooManyRequests, marketsdk.KindRateLimited)
}
