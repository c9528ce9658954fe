// Package main is the entry point for the camp availability server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camp-rental/backend/internal/config"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

// cfg is loaded from the environment before any command runs and then
// overridden by explicit flags.
var cfg *config.Config

func main() {
	rootCmd := &cobra.Command{
		Use:     "camp-server",
		Short:   "Camp availability and booking server",
		Version: version,
		Long: `camp-server decides which camps are free on which days, takes
single-day bookings, and lets hosts block dates.

Configuration comes from CAMP_* environment variables; flags override them.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().String("data", "", "Data directory for SQLite database (CAMP_DATA_DIR)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA time zone that decides what today is (CAMP_TIMEZONE)")

	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(ImportCmd())
	rootCmd.AddCommand(ReconcileCmd())
	rootCmd.AddCommand(HealthCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetString("data"); v != "" {
		loaded.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("timezone"); v != "" {
		loaded.Timezone = v
	}
	if loaded.Version == "dev" {
		loaded.Version = version
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	cfg = loaded
	return nil
}
