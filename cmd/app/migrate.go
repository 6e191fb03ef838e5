package main

import (
	"CoachingAPI/internal/config"
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"time"
)

func migrateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the calls, call_analyses and objections tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := config.OpenDatabase(a.cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := config.MigrateDatabase(ctx, a.cfg.Database.Driver, db); err != nil {
				return err
			}

			a.logger.Infof("Schema applied using %s", a.cfg.Database.Driver)
			return nil
		},
	}
}
