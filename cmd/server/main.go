package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yourorg/multisafepay-gateway/internal/config"
	"github.com/yourorg/multisafepay-gateway/internal/logger"
	"github.com/yourorg/multisafepay-gateway/internal/multisafepay"
	"github.com/yourorg/multisafepay-gateway/internal/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting MultiSafepay gateway")

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
	log.Info().Msg("Server exited properly")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error().Err(err).Msg("Error flushing traces")
		}
	}()

	stores, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	sdk := multisafepay.NewFactory(multisafepay.WithHTTPClient(&http.Client{Timeout: cfg.MSPTimeout}))
	a, err := newApp(cfg, stores, sdk)
	if err != nil {
		return err
	}
	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.httpHandler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.MSPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// setupTracing installs a stdout exporter when OTEL_STDOUT is set. Spans are
// otherwise recorded by the no-op global provider.
func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OtelStdout {
		return func(context.Context) error { return nil }, nil
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
