package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/api"
	"github.com/LJTian/FeedbackHub/internal/app"
	"github.com/LJTian/FeedbackHub/internal/config"
	"github.com/LJTian/FeedbackHub/internal/logger"
	"github.com/LJTian/FeedbackHub/internal/pipeline"
	"github.com/LJTian/FeedbackHub/internal/scheduler"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		runNow     bool
	)

	cmd := &cobra.Command{
		Use:           "api",
		Short:         "Serve the feedback API and run the daily pipeline on a cron schedule",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, runNow)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run the pipeline once at startup")
	return cmd
}

func run(parent context.Context, configPath string, runNow bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	stores := app.OpenStores(ctx, cfg, log)
	defer stores.Close(context.Background())

	s, err := scheduler.New(ctx, cfg.CronSpec, app.NewPipeline(cfg, stores, log), log)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	s.Start()
	defer s.Stop()
	log.Info("next collection scheduled", zap.String("cron", cfg.CronSpec), zap.Time("at", s.Next()))

	if runNow {
		s.RunAsync()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	api.NewServer(stores.Lister, filepath.Join(cfg.DataDir, pipeline.IndexFile), log).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting api server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server exit: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
