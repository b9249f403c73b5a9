package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"bullionsite/internal/app"
)

func serveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler, err := app.New(e.cfg, e.logger)
			if err != nil {
				return fmt.Errorf("init server: %w", err)
			}

			srv := &http.Server{
				Addr:         e.cfg.Addr(),
				Handler:      handler,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				e.logger.Info().Str("addr", srv.Addr).Msg("bullionsite listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				if err != nil {
					return fmt.Errorf("listen: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				e.logger.Error().Err(err).Msg("graceful shutdown failed")
				return err
			}
			e.logger.Info().Msg("server stopped")
			return nil
		},
	}
}
