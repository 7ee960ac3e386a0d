package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ladon "github.com/aretw0/ladon"
	httpAdapter "github.com/aretw0/ladon/internal/adapters/http"
	"github.com/aretw0/ladon/pkg/runner"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(current func() *app) *cobra.Command {
	var port string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored results and metrics over HTTP",
		Long: `Starts a read-only HTTP API over the result store: /results, /results/{id},
/results/{id}/junit, /scripts and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			handler := httpAdapter.NewHandler(httpAdapter.Config{
				Store:    a.store,
				Scripts:  runner.Default.Concrete,
				Gatherer: a.registry,
				Version:  ladon.Version,
				Logger:   a.logger,
			})

			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting ladon server", "addr", srv.Addr)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case <-cmd.Context().Done():
				a.logger.Info("shutting down")

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
					return srv.Close()
				}
				a.logger.Info("ladon server stopped gracefully")
				return nil
			}
		},
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to listen on")
	return serveCmd
}
