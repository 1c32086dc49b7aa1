package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable
	openDBFunc   = openDB                 // mockable
)

func openDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}
	return database.Open(conf)
}

func migrateCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, version, redo, reset, up-to, down-to, ...)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDBFunc(cli.conf)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}
			return gooseRunFunc(cmd.Context(), db, args[0], args[1:]...)
		},
	}
}
