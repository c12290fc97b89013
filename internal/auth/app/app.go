package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/wagglex2/waggle/internal/auth/http"
	"github.com/wagglex2/waggle/internal/auth/metrics"
	"github.com/wagglex2/waggle/internal/auth/service"
	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/internal/auth/store/drivers/memory"
	"github.com/wagglex2/waggle/internal/auth/store/drivers/redis"
	"github.com/wagglex2/waggle/internal/auth/store/drivers/sqlite"
	"github.com/wagglex2/waggle/pkg/cryptox"
	"github.com/wagglex2/waggle/pkg/jwtx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/wagglex2/waggle/internal/auth/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          *sqlite.Store
	credentials store.Credentials
	keyManager  *jwtx.KeyManager
	codec       *jwtx.Codec
	registry    *prometheus.Registry
	metrics     *metrics.Collector

	// Services
	sessionService      *service.SessionService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService // nil when the backend expires entries itself
	housekeepingRunning bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with every dependency initialised. The
// credential store is contacted here, so an unreachable Redis fails fast.
func New(ctx context.Context, cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "waggle-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCredentials(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	km, err := InitAuthKeys(cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, err
	}
	app.keyManager = km

	app.codec, err = jwtx.NewCodec(km, cfg.Issuer)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	app.registry = metrics.NewRegistry()
	app.metrics = metrics.NewCollector(app.registry)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	if app.housekeepingService != nil {
		app.housekeepingService.Start()
		app.housekeepingRunning = true
	}

	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"credential_store", app.cfg.CredentialStore,
	)
	app.logBootstrapState(context.Background())

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.stopBackground()
			app.closeStores()
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.stopBackground()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// logBootstrapState warns when nobody can log in yet.
func (app *Application) logBootstrapState(ctx context.Context) {
	done, err := app.bootstrapService.IsBootstrapped(ctx)
	switch {
	case err != nil:
		app.logger.Error("failed to inspect directory", "error", err)
	case done:
	case app.bootstrapService.Enabled():
		app.logger.Warn("directory is empty; create the first administrator with POST /api/v1/bootstrap")
	default:
		app.logger.Warn("directory is empty and bootstrap is disabled; use waggle-user create --admin")
	}
}

func (app *Application) stopBackground() {
	if app.housekeepingRunning {
		app.housekeepingService.Stop()
		app.housekeepingRunning = false
	}
}

// closeStores closes the credential store (when it owns a connection) and
// then the directory database.
func (app *Application) closeStores() error {
	var errs []error
	if c, ok := app.credentials.(io.Closer); ok {
		if err := c.Close(); err != nil {
			app.logger.Error("error closing credential store", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the principal directory and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initCredentials selects the rotation record backend.
func (app *Application) initCredentials(ctx context.Context) error {
	switch app.cfg.CredentialStore {
	case CredentialStoreRedis:
		creds, err := redis.NewFromEnv(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect credential store: %w", err)
		}
		app.credentials = creds
	case CredentialStoreSQLite:
		app.credentials = app.db.RotationRecords()
	case CredentialStoreMemory:
		app.credentials = memory.New()
		app.logger.Warn("in-memory credential store: sessions are lost on restart and not shared between replicas")
	default:
		return fmt.Errorf("unsupported credential store %q", app.cfg.CredentialStore)
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Codec:       app.codec,
		Credentials: app.credentials,
		Directory:   store.NewDirectoryAdapter(app.db),
		AccessTTL:   app.cfg.AccessTTL,
		RefreshTTL:  app.cfg.RefreshTTL,
		Metrics:     app.metrics,
	}

	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	// Redis expires keys itself; the other backends need sweeping.
	if sweeper, ok := app.credentials.(store.Sweeper); ok {
		app.housekeepingService = service.NewHousekeepingService(
			sweeper,
			app.logger,
			app.cfg.HousekeepingInterval,
		)
		app.housekeepingService.Metrics = app.metrics
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		app.codec,
		BuildVersion,
		app.logger,
	)

	router.SessionService = app.sessionService
	router.BootstrapService = app.bootstrapService
	router.Cookies.Secure = app.cfg.CookieSecure
	router.Metrics = app.metrics
	router.Gatherer = app.registry
	router.Readiness = map[string]store.Pinger{"directory": app.db}
	if p, ok := app.credentials.(store.Pinger); ok && app.cfg.CredentialStore == CredentialStoreRedis {
		router.Readiness["credentials"] = p
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
