package main

import (
	"kb-assistant-be/internal/config"
	"kb-assistant-be/pkg/database"
	"kb-assistant-be/pkg/qalog"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the qa_logs table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, verbose)
		if err != nil {
			return err
		}
		if _, err := qalog.NewGormSink(db); err != nil {
			return err
		}

		okColor.Println("qa_logs is up to date")
		return nil
	},
}
