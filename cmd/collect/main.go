package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/LJTian/FeedbackHub/internal/app"
	"github.com/LJTian/FeedbackHub/internal/config"
	"github.com/LJTian/FeedbackHub/internal/logger"
)

// 只执行一次采集，可选写出 JSONL 快照，不追加累计文件
func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		output     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:           "collect",
		Short:         "Collect AI product feedback from Reddit and Hacker News",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				cfg.Limit = limit
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			items, err := app.NewCollector(cfg, log).Run(ctx, cfg.Limit, output)
			if err != nil {
				return err
			}
			log.Info("collect finished", zap.Int("count", len(items)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.Flags().StringVar(&output, "output", "", "Output JSONL file path")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max items per source")
	return cmd
}
