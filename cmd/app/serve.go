package main

import (
	"CoachingAPI/internal/config"
	"context"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(a)
		},
	}
}

func serve(a *app) error {
	logger := a.logger

	fiberApp := config.NewFiber(logger, a.cfg)
	validator := config.NewValidator()

	server, err := config.NewServer(
		config.WithConfig(a.cfg),
		config.WithFiber(fiberApp),
		config.WithLogger(logger),
		config.WithValidator(validator),
		config.WithDatabase(),
		config.WithDeliveryStore(),
		config.WithMessaging(),
		config.WithS3Client(),
		config.WithMetrics(),
		config.WithMiddleware(),
		config.WithUtils(),
	)
	if err != nil {
		return err
	}

	server.RegisterHandler()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run()
	}()

	logger.Infof("Server listening on %s", a.cfg.Addr())

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
