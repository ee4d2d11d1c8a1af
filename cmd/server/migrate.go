package main

import (
	"github.com/spf13/cobra"

	"study-assistant-go/internal/config"
	"study-assistant-go/pkg/database"
	"study-assistant-go/pkg/log"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// InitDB 内部会执行 AutoMigrate
		database.InitDB(config.Conf.Database)
		log.Info("Database migration finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
