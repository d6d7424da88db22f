// Package app wires the service together: configuration, logging, key
// container, token codec, stores, services and the HTTP server.
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

	"github.com/enotes/enotes/internal/auth"
	"github.com/enotes/enotes/internal/httpapi"
	"github.com/enotes/enotes/internal/notes"
	"github.com/enotes/enotes/internal/store/memory"
	"github.com/enotes/enotes/pkg/keyvault"
	"github.com/enotes/enotes/pkg/slogx"
	"github.com/enotes/enotes/pkg/tokens"
)

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	codec     *tokens.Codec
	validator *tokens.AccessValidator

	authService  *auth.Service
	notesService *notes.Service

	server *http.Server
	router *httpapi.Router
}

// New builds the application. It fails, and the process must not serve,
// if configuration is incomplete or the key container cannot be opened.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "enotes",
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initTokens(); err != nil {
		return nil, err
	}
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("enotes service starting", "port", app.cfg.Port)

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

// Shutdown gracefully stops the HTTP server, giving in-flight requests a
// deadline to finish.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down enotes service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.logger.Info("enotes service stopped")
	return nil
}

// initTokens loads or creates the key container and builds the token
// codec plus the verify-only access validator for the notes routes.
func (app *Application) initTokens() error {
	material, err := keyvault.LoadOrCreate(context.Background(), keyvault.Config{
		Path:          app.cfg.KeystorePath,
		StorePassword: app.cfg.KeystorePassword,
		KeyPassword:   app.cfg.KeyPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to load key container: %w", err)
	}
	app.logger.Info("key container loaded", "path", app.cfg.KeystorePath)

	codec, err := tokens.NewCodec(tokens.Keys{
		Secret:     material.Secret,
		PrivateKey: material.PrivateKey,
		PublicKey:  material.PublicKey,
	}, tokens.Options{Issuer: app.cfg.Issuer})
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	validator, err := tokens.NewAccessValidator(material.PublicKey, app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("failed to build token validator: %w", err)
	}

	app.codec = codec
	app.validator = validator
	return nil
}

func (app *Application) initServices() {
	app.authService = auth.NewService(memory.NewUserStore(), app.codec)
	app.notesService = notes.NewService(memory.NewNoteStore())
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(
		app.validator,
		app.authService,
		app.notesService,
		app.logger,
	)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
