// If you are AI: This file implements the serve command: start the server and wait for a termination signal.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trinity/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay server",
	RunE:  runServe,
}

// runServe starts the server and blocks until shutdown completes.
func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	shutdownHandler := server.NewShutdownHandler(cmd.Context(), srv, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(shutdownHandler.Context())
	}()

	// Either a listener fails or a signal arrives first.
	waitErr := make(chan error, 1)
	go func() { waitErr <- shutdownHandler.Wait() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
		return nil
	case err := <-waitErr:
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	logger.Info("server shut down cleanly")
	return nil
}
