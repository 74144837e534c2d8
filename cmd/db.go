package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/workpulse-io/workpulse/db"
	"github.com/workpulse-io/workpulse/db/dao"
)

func newDatabaseCmd() *cobra.Command {
	database := &cobra.Command{
		Use:   "db",
		Short: "Database commands",
		Long:  ``,
	}

	database.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			database, err := db.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Ping(cmd.Context()); err != nil {
				return err
			}
			if !database.Healthy(cmd.Context(), 5*time.Second) {
				return errors.New("database did not answer a round trip in time")
			}
			cmd.Println("database is reachable")
			return nil
		},
	})

	database.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the events table if it does not exist",
		Long:  ``,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := initConfig(configurationFile)
			if err != nil {
				return err
			}
			database, err := db.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			defer database.Close()

			events, err := dao.NewEventDAO(database, cfg.Database.Table)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := events.EnsureTable(ctx); err != nil {
				return err
			}
			cmd.Printf("table %s is in place\n", cfg.Database.Table)
			return nil
		},
	})

	return database
}
