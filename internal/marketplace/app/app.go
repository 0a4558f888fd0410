package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/ponliv/marketplace/internal/marketplace/http"
	"github.com/ponliv/marketplace/internal/marketplace/service"
	"github.com/ponliv/marketplace/internal/marketplace/store"
	"github.com/ponliv/marketplace/internal/marketplace/store/drivers/mongo"
	"github.com/ponliv/marketplace/internal/marketplace/store/drivers/redis"
	"github.com/ponliv/marketplace/internal/marketplace/store/drivers/sqlite"
	"github.com/ponliv/marketplace/pkg/cryptox"
	"github.com/ponliv/marketplace/pkg/httpx"
	"github.com/ponliv/marketplace/pkg/jwtx"
	"github.com/ponliv/marketplace/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// connectTimeout bounds the initial dial to Mongo and Redis.
const connectTimeout = 10 * time.Second

// Application encapsulates the marketplace service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	ledger   *redis.Ledger // nil when revocations live in db
	hasher   *cryptox.Hasher
	signer   jwtx.Signer
	verifier jwtx.Verifier
	registry *prometheus.Registry

	// Services
	sessionService      *service.SessionService
	bookService         *service.BookService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "marketplace",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		registry: prometheus.NewRegistry(),
	}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpx.LoadRateLimitsFromEnv()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initLedger(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initCrypto(); err != nil {
		app.closeStores()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("marketplace service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"revocation", app.cfg.RevocationBackend,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down marketplace service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.ledger != nil {
		if err := app.ledger.Close(); err != nil {
			app.logger.Error("error closing revocation ledger", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("marketplace service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		db, err = mongo.NewStore(ctx, app.cfg.StoreURL, app.cfg.StoreDatabase)
		cancel()
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.StoreURL)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize %s store: %w", app.cfg.StoreDriver, err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initLedger connects to Redis when revocations are kept outside the store
func (app *Application) initLedger() error {
	if app.cfg.RevocationBackend != RevocationRedis {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	ledger, err := redis.NewLedger(ctx, redis.Config{
		Addr:     app.cfg.RedisAddr,
		Password: app.cfg.RedisPassword,
		DB:       app.cfg.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to redis at %s: %w", app.cfg.RedisAddr, err)
	}
	app.ledger = ledger
	return nil
}

// initCrypto loads the pepper and builds the hasher, signer and verifier
func (app *Application) initCrypto() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	app.hasher, err = cryptox.NewHasher(
		cryptox.WithPepper(pepper),
		cryptox.WithTimeout(app.cfg.HashTimeout),
		cryptox.WithConcurrency(app.cfg.HashConcurrency),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	secret := []byte(app.cfg.JWTSecret)
	app.signer, err = jwtx.NewSignerHS256(secret)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.verifier, err = jwtx.NewVerifierHS256(secret, jwtx.VerifyOptions{
		Issuer: app.cfg.JWTIssuer,
		Leeway: app.cfg.TokenLeeway,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}
	return nil
}

// revocations is the ledger every service and the housekeeper share.
func (app *Application) revocations() store.RevokedTokens {
	if app.ledger != nil {
		return app.ledger
	}
	return app.db.RevokedTokens()
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:        app.db,
		Ledger:       app.revocations(),
		Hasher:       app.hasher,
		Signer:       app.signer,
		Issuer:       app.cfg.JWTIssuer,
		TokenTTL:     app.cfg.TokenTTL,
		StoreTimeout: app.cfg.StoreTimeout,
	}
	app.bookService = &service.BookService{
		Store:        app.db,
		StoreTimeout: app.cfg.StoreTimeout,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.revocations(),
		app.logger,
		app.cfg.HousekeepingInterval,
		app.registry,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.verifier, BuildVersion, app.logger, app.registry)

	router.Database = app.db
	if app.ledger != nil {
		router.Ledger = app.ledger
	}
	router.SessionService = app.sessionService
	router.BookService = app.bookService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

func (app *Application) closeStores() {
	if app.ledger != nil {
		_ = app.ledger.Close()
	}
	_ = app.db.Close()
}
