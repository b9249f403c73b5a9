package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bullionsite/internal/site"
	"bullionsite/internal/tools/sitemap"
)

func sitemapCmd(e *env) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml for the configured site",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := site.Load(e.cfg.Site)
			if err != nil {
				return fmt.Errorf("load site: %w", err)
			}

			set, err := sitemap.Export(catalog, outPath, time.Now())
			if err != nil {
				return fmt.Errorf("export sitemap: %w", err)
			}

			e.logger.Info().Str("out", outPath).Int("urls", len(set.URLs)).Msg("wrote sitemap")
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "static/sitemap.xml", "path to write sitemap XML")
	return cmd
}
