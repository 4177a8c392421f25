package main

import (
	srv "github.com/mohammad-safakhou/newsdesk/internal/server"
	"github.com/spf13/cobra"
)

func migrateCMD(load configLoader) *cobra.Command {
	var migDir string
	var migDirDefault = "file://migrations"
	var direction string
	var steps int

	var migrate = &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			var dsn string
			if cfg.Storage.Postgres.Enabled() {
				dsn = cfg.Storage.Postgres.DSN()
			}
			if migDir == "" {
				migDir = migDirDefault
			}
			return srv.Migrate(migDir, dsn, direction, steps)
		},
	}
	migrate.Flags().StringVar(&migDir, "dir", migDirDefault, "migrations source (file://migrations)")
	migrate.Flags().StringVar(&direction, "direction", "up", "up or down")
	migrate.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return migrate
}
