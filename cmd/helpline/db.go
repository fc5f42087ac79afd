package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zulandar/helpline/internal/config"
	"github.com/zulandar/helpline/internal/store"
)

func newDBCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the ticket database",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "helpline.yaml", "path to Helpline config file")

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := store.Connect(cfg.DB)
			if err != nil {
				return err
			}
			if err := store.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date.")
			return nil
		},
	})

	return cmd
}
