package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"expsim/internal/config"
	"expsim/internal/deflection"
	apperrors "expsim/internal/errors"
	"expsim/internal/infrastructure"
	customMiddleware "expsim/internal/middleware"
	handlers "expsim/internal/transport/http"
)

const (
	AppName = "ldseries"
	VERSION = infrastructure.ServiceVersion
)

// Application wires a series to the HTTP API and owns the server lifecycle
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Series        *deflection.Series
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
}

// NewApplication builds the router and server for series. providers may be
// nil, in which case /metrics answers 404 and no request metrics are kept.
func NewApplication(cfg *config.Config, series *deflection.Series, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if cfg == nil {
		return nil, apperrors.NewConfigError("application requires a config", nil)
	}
	if series == nil {
		return nil, apperrors.NewValidationError("application requires a series", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &Application{
		Config:        cfg,
		Series:        series,
		Logger:        logger,
		OTelProviders: providers,
	}
	if err := a.setupRouter(); err != nil {
		return nil, err
	}
	a.createServer()
	return a, nil
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID, RealIP, OTel, Logger, Recoverer, RateLimit, Timeout.
func (a *Application) setupRouter() error {
	r := chi.NewRouter()
	errorHandler := apperrors.NewErrorHandler(a.Logger, false)

	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)

	if a.OTelProviders != nil {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.Logger)
		if err != nil {
			return fmt.Errorf("create telemetry middleware: %w", err)
		}
		r.Use(otelMiddleware.Handler)
	}

	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(errorHandler))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	health := handlers.NewHealthHandler(VERSION, a.Series)
	r.Get("/healthz", health.Healthz)

	if a.OTelProviders != nil {
		r.Handle("/metrics", a.OTelProviders.MetricsHandler())
	}

	r.Group(func(r chi.Router) {
		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(customMiddleware.NewRateLimiter(rl, a.Logger).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.WriteTimeout))

		series := handlers.NewSeriesHandler(a.Series, a.Logger, errorHandler)
		r.Mount("/api/series", series.Routes())
	})

	a.Router = r
	return nil
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Serve accepts connections on l until the server is stopped. It returns nil
// after a graceful Stop.
func (a *Application) Serve(l net.Listener) error {
	a.Logger.Info("serving series",
		slog.String("name", AppName),
		slog.String("version", VERSION),
		slog.String("address", l.Addr().String()),
		slog.String("file", a.Series.Options().FilePath))

	if err := a.Server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown error: %w", err))
		}
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return errors.Join(errs...)
}

// Run listens on the configured address and serves until ctx is done or the
// process receives SIGINT or SIGTERM.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := net.Listen("tcp", a.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Config.Server.Addr, err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Serve(l) }()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	if err := a.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return <-serveErr
}
