package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ponliv/marketplace/pkg/httpx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := httpx.NewHTTPMetrics(reg, "marketplace")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := httpx.Chain(mux, m.Middleware())

	for _, id := range []string{"a", "b"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/books/"+id, nil))
	}

	count, err := testutil.GatherAndCount(reg, "marketplace_http_requests_total")
	require.NoError(t, err)
	require.Equal(t, 1, count, "ids must collapse into one route series")
}
