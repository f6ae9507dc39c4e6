package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Undertone0809/ecjtu/internal/domain"
	httpapi "github.com/Undertone0809/ecjtu/internal/http"
	"github.com/Undertone0809/ecjtu/internal/portal"
	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/internal/store"
	"github.com/Undertone0809/ecjtu/internal/store/drivers/sqlite"
	"github.com/Undertone0809/ecjtu/pkg/cryptox"
	"github.com/Undertone0809/ecjtu/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	endpoints portal.Endpoints

	tokenService *service.TokenService
	cache        *httpapi.ResponseCache

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ecjtu-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		endpoints: portal.EndpointsForBases(cfg.CASBaseURL, cfg.JWXTBaseURL),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("api service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down api service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.cache.Close(); err != nil {
		app.logger.Error("error closing response cache", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s", app.cfg.DatabaseFile)
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

// initServices initializes the token service, portal wiring and cache.
func (app *Application) initServices() error {
	master, err := cryptox.LoadOrCreateKey(app.cfg.MasterKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load signing master key: %w", err)
	}
	accessSecret, err := cryptox.DeriveKey(master, "access-token")
	if err != nil {
		return fmt.Errorf("failed to derive access token key: %w", err)
	}
	refreshSecret, err := cryptox.DeriveKey(master, "refresh-token")
	if err != nil {
		return fmt.Errorf("failed to derive refresh token key: %w", err)
	}

	app.tokenService = &service.TokenService{
		Store:         app.db,
		Authenticator: &portalAuthenticator{endpoints: app.endpoints, logger: app.logger},
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        app.cfg.Issuer,
		AccessTTL:     app.cfg.AccessTTL,
		RefreshTTL:    app.cfg.RefreshTTL,
	}

	app.cache, err = httpapi.NewResponseCache(app.cfg.CacheTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize response cache: %w", err)
	}
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.OpenPortal = app.openPortal
	router.Cache = app.cache
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// openPortal rebuilds a cookie-only portal session for an authenticated
// student. If the persisted cookies have lapsed upstream the request fails
// with a session-expired error and the student must log in again.
func (app *Application) openPortal(ctx context.Context, studentID string) (httpapi.StudentPortal, error) {
	cookies, err := app.tokenService.CookiesFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	client, err := portal.New(
		portal.WithEndpoints(app.endpoints),
		portal.WithCookies(cookies),
		portal.WithLogger(app.logger),
	)
	if err != nil {
		return nil, err
	}
	return portal.NewSession(client), nil
}

// portalAuthenticator adapts the portal client to the token service's login
// hook: each login runs on a fresh jar so students never share cookies.
type portalAuthenticator struct {
	endpoints portal.Endpoints
	logger    *slog.Logger
}

func (a *portalAuthenticator) Login(ctx context.Context, studentID, password string) ([]domain.Cookie, error) {
	client, err := portal.New(
		portal.WithEndpoints(a.endpoints),
		portal.WithCredentials(studentID, password),
		portal.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	if err := client.Login(ctx); err != nil {
		return nil, err
	}
	return client.Cookies(), nil
}
