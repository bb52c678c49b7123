package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/capitals/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctrl, err := e.newController(cmd)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		addr := e.cfg.HTTPAddr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")

		srv := &http.Server{
			Addr: addr,
			Handler: api.New(ctrl, api.Options{
				Logger:         e.log,
				AllowedOrigins: origins,
			}).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx := cmd.Context()
		errCh := make(chan error, 1)
		go func() {
			e.log.Info("listening", "addr", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve: %w", err)
		case <-ctx.Done():
		}

		e.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides CAPITALS_HTTP_ADDR)")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origin; repeatable")
}
