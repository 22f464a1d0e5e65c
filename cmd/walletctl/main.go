package main

import (
	"fmt"
	"os"

	"loyalty-wallet/config"
	"loyalty-wallet/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "walletctl",
		Short:         "Operator tasks for the loyalty wallet service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(createStaffCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(syncClassesCmd())
	rootCmd.AddCommand(tierCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB loads the service configuration and a migrated database.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, nil, err
	}
	return cfg, db, nil
}
