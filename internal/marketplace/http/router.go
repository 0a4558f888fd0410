package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/pkg/httpx"
	"github.com/ponliv/marketplace/pkg/jwtx"
	"github.com/ponliv/marketplace/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/ponliv/marketplace/api/marketplace" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Pinger is a dependency probed by /readyz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	metrics  *httpx.HTTPMetrics
	gatherer prometheus.Gatherer

	Database Pinger
	Ledger   Pinger // nil when revocations live in the database

	SessionService *service.SessionService
	BookService    *service.BookService
}

// NewRouter wires the global middleware. reg receives the HTTP collectors
// and is also served on /metrics.
func NewRouter(verifier jwtx.Verifier, buildVersion string, logger *slog.Logger, reg *prometheus.Registry) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		metrics:      httpx.NewHTTPMetrics(reg, "marketplace"),
		gatherer:     reg,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerBooks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
// Metrics wrap the mux directly so the matched pattern is visible to them.
//
//	@title			School Book Marketplace API
//	@version		0.1.0
//	@description	Accounts, sessions and second-hand school book listings.
//	@description
//	@description				Session tokens are HS256 JWTs returned by the login endpoint.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.metrics.Middleware()(r.Mux), r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) secured(h http.Handler, extra ...httpx.Middleware) http.Handler {
	mws := append([]httpx.Middleware{httpx.AuthnMiddleware(r.verifier, r.SessionService)}, extra...)
	return httpx.Chain(h, mws...)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Sessions: r.SessionService}

	// POST /register - strict by IP (account creation)
	r.Mux.Handle("POST /api/users/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict by IP + email to slow credential stuffing
	r.Mux.Handle("POST /api/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	r.Mux.Handle("GET /api/users/me", r.secured(http.HandlerFunc(h.HandleMe),
		httpx.RateLimitByUser(httpx.PublicLimit),
	))
	r.Mux.Handle("PUT /api/users/{id}", r.secured(http.HandlerFunc(h.HandleUpdate),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("DELETE /api/users/{id}", r.secured(http.HandlerFunc(h.HandleDelete),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("POST /api/users/logout", r.secured(http.HandlerFunc(h.HandleLogout),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
}

func (r *Router) registerBooks() {
	h := &BooksHandler{Books: r.BookService}

	sellers := httpx.RequireAnyRole("seller", "admin")

	r.Mux.Handle("POST /api/books", r.secured(http.HandlerFunc(h.HandleCreate),
		sellers,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("PUT /api/books/{id}", r.secured(http.HandlerFunc(h.HandleUpdate),
		sellers,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))
	r.Mux.Handle("DELETE /api/books/{id}", r.secured(http.HandlerFunc(h.HandleDelete),
		sellers,
		httpx.RateLimitByUser(httpx.ModerateLimit),
	))

	// Public catalogue reads
	public := httpx.RateLimitByIP(httpx.PublicLimit)
	r.Mux.Handle("GET /api/books/search", httpx.Chain(http.HandlerFunc(h.HandleSearch), public))
	r.Mux.Handle("GET /api/books/isbn/{isbn}", httpx.Chain(http.HandlerFunc(h.HandleGetByISBN), public))
	r.Mux.Handle("GET /api/books/title/{title}", httpx.Chain(http.HandlerFunc(h.HandleGetByTitle), public))
	r.Mux.Handle("GET /api/books/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), public))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.Database, r.Ledger))
	r.Mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
}
