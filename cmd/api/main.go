package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/linkcheck/internal/batch"
	"github.com/hamed0406/linkcheck/internal/config"
	"github.com/hamed0406/linkcheck/internal/httpapi"
	"github.com/hamed0406/linkcheck/internal/logging"
	"github.com/hamed0406/linkcheck/internal/probe"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	checker, err := probe.New(cfg.Strategy, cfg.ProbeOptions())
	if err != nil {
		logger.Fatal("probe_init", zap.Error(err))
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("tls_verification_disabled",
			zap.String("strategy", string(cfg.Strategy)),
			zap.String("note", "outbound checks accept any certificate; set INSECURE_SKIP_VERIFY=false to verify"),
		)
	}
	if cfg.Strategy == probe.KindRelay {
		logger.Info("relay_in_use", zap.String("relay", cfg.RelayBaseURL))
	}

	runner := batch.NewRunner(logger, checker, cfg.Workers)
	api := httpapi.NewServer(logger, runner, httpapi.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CheckRPM:       cfg.CheckRPM,
		CheckBurst:     cfg.CheckBurst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.String("strategy", string(cfg.Strategy)),
		zap.Int("workers", cfg.Workers),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_failed", zap.Error(err))
	}
	logger.Info("api_stopped")
}
