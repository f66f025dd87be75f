package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LJTian/FeedbackHub/internal/render"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		output string
		noText bool
	)

	cmd := &cobra.Command{
		Use:           "html <input.jsonl>",
		Short:         "Generate an HN-style HTML view of collected feedback",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			if output == "" {
				output = render.DefaultOutputPath(input)
			}
			if err := render.Render(input, output, render.Options{HideText: noText}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated HTML: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "Output HTML file (default: input with .html extension)")
	cmd.Flags().BoolVar(&noText, "no-text", false, "Hide preview text")
	return cmd
}
