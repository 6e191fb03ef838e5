package main

import (
	"CoachingAPI/internal/config"
	"CoachingAPI/pkg/log"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg    config.Config
	logger *logrus.Logger
}

func rootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "coaching-api",
		Short:         "Mosquito Mike Coaching API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd := serveCommand(a)

	rootCmd.AddCommand(serveCmd, migrateCommand(a), tokenCommand(a))

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
		a.logger = log.NewLogger(log.Options{
			Level:       cfg.LogLevel,
			Environment: cfg.Environment,
			Dir:         cfg.LogDir,
		})
		return nil
	}

	// Running the binary without a subcommand serves.
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}
