package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/modeldemo/internal/domain"
	"github.com/kailas-cloud/modeldemo/internal/metrics"
	chiTransport "github.com/kailas-cloud/modeldemo/internal/transport/chi"
	"github.com/kailas-cloud/modeldemo/internal/usecase/comparator"
	completionuc "github.com/kailas-cloud/modeldemo/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/modeldemo/internal/usecase/health"
	"github.com/kailas-cloud/modeldemo/internal/version"
)

// runServe starts the HTTP API and blocks until ctx is cancelled.
// Unconfigured capabilities answer with 501 instead of failing startup.
func (a *app) runServe(ctx context.Context) error {
	a.logger.Info("Starting modeldemo API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", a.cfg.HTTP.Port),
		zap.String("completion_provider", a.cfg.Completion.Provider),
		zap.String("embedding_provider", a.cfg.Embedding.Provider),
		zap.String("cache_driver", a.cfg.Cache.Driver),
	)

	var cacheHealth healthuc.CachePinger
	var completionHealth, embeddingHealth healthuc.ProviderChecker

	completion, err := a.completionService()
	switch {
	case errors.Is(err, domain.ErrUnsupported):
		a.logger.Warn("Completion provider not configured")
		completion = nil
	case err != nil:
		return err
	default:
		completionHealth = healthOf(a.completer)
	}

	cmp, err := a.comparatorService(ctx)
	switch {
	case errors.Is(err, domain.ErrUnsupported):
		a.logger.Warn("Embedding provider not configured")
		cmp = nil
	case err != nil:
		return err
	default:
		embeddingHealth = healthOf(a.embedder)
	}

	if a.cache != nil {
		cacheHealth = a.cache
	}

	srv := a.newHTTPServer(completion, cmp, healthuc.New(cacheHealth, completionHealth, embeddingHealth))

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Error during shutdown", zap.Error(err))
	}

	a.logger.Info("Server stopped gracefully")
	return nil
}

func (a *app) newHTTPServer(
	completion *completionuc.Service,
	cmp *comparator.Service,
	health *healthuc.Service,
) *http.Server {
	server := chiTransport.NewServer(completion, cmp, health, a.logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(a.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(a.logger))
	r.Use(chiTransport.BearerAuthMiddleware(a.cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.HTTP.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
}
