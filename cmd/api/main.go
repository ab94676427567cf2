package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bryanwahyu/rxscan/internal/application"
	appai "github.com/bryanwahyu/rxscan/internal/application/ai"
	appreports "github.com/bryanwahyu/rxscan/internal/application/reports"
	"github.com/bryanwahyu/rxscan/internal/config"
	"github.com/bryanwahyu/rxscan/internal/infra/httpserver"
	"github.com/bryanwahyu/rxscan/internal/infra/ocr/tesseract"
	"github.com/bryanwahyu/rxscan/internal/middleware"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel()}))
	slog.SetDefault(logger)

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		fatal("config load error", err)
	}

	ctx := context.Background()

	// database (optional)
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		fatal("database connect error", err)
	}
	if db != nil {
		defer db.Close()
	}

	// catalog
	catalog, err := openCatalog(ctx, cfg, db, logger)
	if err != nil {
		fatal("catalog load error", err)
	}

	// ocr
	ocr := tesseract.NewRunner(cfg.OCR.Command, cfg.OCR.Language, cfg.OCR.Timeout)
	if err := ocr.Check(ctx); err != nil {
		logger.Warn("tesseract not available, uploads will fail", "error", err)
	}

	// llm
	llm, err := openLLM(ctx, cfg)
	if err != nil {
		fatal("llm init error", err)
	}
	if llm == nil {
		logger.Warn("no llm api key configured, substance extraction disabled", "provider", cfg.LLM.Provider)
	}

	// init minio (optional)
	store, err := openStore(ctx, cfg)
	if err != nil {
		fatal("minio init error", err)
	}

	metrics := middleware.NewMetrics()

	// init service
	svc := &appreports.Service{
		Catalog:  catalog,
		OCR:      ocr,
		AI:       appai.NewService(llm),
		Failures: failureRepo(cfg, db),
		Recorder: metrics,
		Clock:    application.SystemClock{},
		Logger:   logger,
	}
	if store != nil {
		svc.Archive = store
	}

	health := map[string]middleware.HealthChecker{
		"catalog": catalog,
		"ocr":     ocr,
	}
	if db != nil {
		health["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	if store != nil {
		health["minio"] = store
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, 10*time.Minute)
	stopSweep := make(chan struct{})
	go limiter.Run(5*time.Minute, stopSweep)
	defer close(stopSweep)

	// init router
	mux := chi.NewRouter()
	mux.Mount("/", httpserver.NewRouter(svc, httpserver.Options{
		Logger:         logger,
		Metrics:        metrics,
		RateLimiter:    limiter,
		Health:         health,
		Ready:          map[string]middleware.HealthChecker{"catalog": catalog},
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		RequestTimeout: cfg.Server.RequestTimeout,
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.Server.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal("server error", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func logLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv("LOG_LEVEL"))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
