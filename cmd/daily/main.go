package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LJTian/FeedbackHub/internal/app"
	"github.com/LJTian/FeedbackHub/internal/config"
	"github.com/LJTian/FeedbackHub/internal/logger"
)

// 每日任务：采集、追加累计文件、镜像存储并生成页面
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		dir        string
		limit      int
	)

	cmd := &cobra.Command{
		Use:           "daily",
		Short:         "Run the daily feedback collection and HTML generation",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dir") {
				cfg.DataDir = dir
			}
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			stores := app.OpenStores(ctx, cfg, log)
			defer stores.Close(ctx)

			stats, err := app.NewPipeline(cfg, stores, log).Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total items (all time): %d\n", stats.TotalLines)
			fmt.Fprintf(out, "New items today: %d\n", stats.New)
			if stats.IndexPath != "" {
				fmt.Fprintf(out, "Today's data: %s\nAll data: %s\nMain HTML: %s\n",
					stats.SnapshotPath, stats.CumulativePath, stats.IndexPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&dir, "dir", "data", "Output directory for JSONL and HTML files")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max items per source")
	return cmd
}
