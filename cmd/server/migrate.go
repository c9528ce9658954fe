package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/camp-rental/backend/internal/storage"
)

// MigrateCmd returns the migrate command.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply pending database migrations and exit.

Usage:
  camp-server migrate             # apply everything pending
  camp-server migrate --dry-run   # list what would be applied`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("dry-run", false, "List pending migrations without applying them")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory %q: %w", cfg.DataDir, err)
	}
	db, err := storage.NewDB(cfg.DBPath())
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := storage.PendingMigrations(db)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Printf("%s database is up to date\n", color.New(color.FgGreen).Sprint("OK"))
		return nil
	}

	for _, name := range pending {
		marker := color.New(color.FgGreen).Sprint("APPLY  ")
		if dryRun {
			marker = color.New(color.FgYellow).Sprint("PENDING")
		}
		fmt.Printf("  %s %s\n", marker, name)
	}
	if dryRun {
		return nil
	}

	if err := storage.RunMigrations(db); err != nil {
		return err
	}
	fmt.Printf("%s applied %d migrations to %s\n", color.New(color.FgGreen).Sprint("OK"), len(pending), db.Path())
	return nil
}
