package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"ledger_service/internal/config"
	"ledger_service/internal/db"
)

// Main entry point for migration
func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the ledger database schema and seed data",
		SilenceUsage: true,
	}
	root.AddCommand(newUpCommand(), newSeedCommand())
	return root
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create or update the role, user, account and transaction tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(gdb *gorm.DB) error {
				return db.Migrate(gdb)
			})
		},
	}
}

func newSeedCommand() *cobra.Command {
	var noAccounts bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then provision the roles and demo users",
		Long: `Migrate the schema, then insert the admin and user roles, the demo users
admin@example.com (password "admin") and user@example.com (password "user"), and
their zero-balance accounts. Rows that already exist are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			accounts := db.DefaultSeedAccounts
			if noAccounts {
				accounts = nil
			}
			return withDB(func(gdb *gorm.DB) error {
				if err := db.Migrate(gdb); err != nil {
					return err
				}
				return db.Seed(gdb, db.DefaultSeedUsers, accounts)
			})
		},
	}
	cmd.Flags().BoolVar(&noAccounts, "no-accounts", false, "Skip the demo accounts")
	return cmd
}

// withDB opens the configured database for the duration of fn
func withDB(fn func(gdb *gorm.DB) error) error {
	cfg := config.LoadConfig() // Load configuration
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	gdb, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	return fn(gdb)
}
