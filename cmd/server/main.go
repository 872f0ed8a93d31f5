package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slidesdown/converter/internal/api"
	"github.com/slidesdown/converter/internal/infra/config"
	"github.com/slidesdown/converter/internal/infra/httpclient"
	"github.com/slidesdown/converter/internal/infra/limiter"
	"github.com/slidesdown/converter/internal/infra/logger"
	"github.com/slidesdown/converter/internal/service/assembler"
	"github.com/slidesdown/converter/internal/service/fetcher"
	"github.com/slidesdown/converter/internal/service/orchestrator"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	// Init HTTP client for image retrieval
	httpClient := httpclient.New(httpclient.Options{
		Timeout:    time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
		MaxRetries: cfg.Fetcher.MaxRetries,
		UserAgent:  cfg.Fetcher.UserAgent,
	})

	// Init limiter
	lim := limiter.New(cfg.Limiter.MaxConcurrent, cfg.Limiter.RatePerSecond)

	// Init services
	fetchSvc := fetcher.New(httpClient, fetcher.Options{
		Timeout:       time.Duration(cfg.Fetcher.TimeoutSeconds) * time.Second,
		MaxImageBytes: cfg.Fetcher.MaxImageBytes,
		JPEGQuality:   cfg.Convert.JPEGQuality,
	}, zapLogger)

	pdfAsm := assembler.NewPDF(zapLogger)
	pptxAsm := assembler.NewPPTX(zapLogger)
	zipAsm := assembler.NewZIP(zapLogger)

	// Init orchestrator
	orch := orchestrator.New(fetchSvc, pdfAsm, pptxAsm, zipAsm, lim, orchestrator.Options{
		MaxImages:    cfg.Convert.MaxImages,
		FetchWorkers: cfg.Convert.FetchWorkers,
	}, zapLogger)

	// Init router
	router := api.NewRouter(orch, zapLogger)

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// Start server
	go func() {
		zapLogger.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Error("server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server forced to shutdown", "error", err)
	}
	zapLogger.Info("server stopped")
}
