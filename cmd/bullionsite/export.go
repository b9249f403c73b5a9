package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bullionsite/internal/app"
)

func exportCmd(e *env) *cobra.Command {
	var (
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Pre-render every page into a static directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := app.New(e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("init server: %w", err)
			}

			result, err := srv.Export(cmd.Context(), outDir, concurrency)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			event := e.logger.Info()
			if result.Fallbacks > 0 {
				event = e.logger.Warn()
			}
			event.
				Str("out", outDir).
				Int("files", len(result.Files)).
				Int("fallback_pages", result.Fallbacks).
				Msg("export complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "dist", "directory to write rendered pages to")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum pages rendered at once")
	return cmd
}
