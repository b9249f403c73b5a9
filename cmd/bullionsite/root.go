package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bullionsite/internal/app"
)

// env is the configuration and logger shared by every subcommand.
type env struct {
	cfg    app.Config
	logger zerolog.Logger
}

func rootCmd() *cobra.Command {
	var (
		envFile string
		site    string
		e       env
	)

	root := &cobra.Command{
		Use:           "bullionsite",
		Short:         "Gold coin education site with live spot pricing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(envFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if site != "" {
				cfg.Site = site
			}

			logger, err := app.NewLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}

			e.cfg = cfg
			e.logger = logger
			return nil
		},
	}

	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file before reading config (default .env when present)")
	root.PersistentFlags().StringVar(&site, "site", "", "site profile to serve, overriding SITE")

	root.AddCommand(serveCmd(&e), exportCmd(&e), sitemapCmd(&e))
	return root
}
