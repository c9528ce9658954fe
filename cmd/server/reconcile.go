package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ReconcileCmd returns the reconcile command.
func ReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "List camp days held by more than one active booking",
		Long: `List camp days held by more than one active booking.

Concurrent requests can both pass the availability check and book the same
day. This command only reports them; resolve each group by cancelling all
but one booking.`,
		RunE: runReconcile,
	}

	cmd.Flags().Bool("complete-past", false, "Also mark confirmed bookings from past days as completed")

	return cmd
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	completePast, _ := cmd.Flags().GetBool("complete-past")

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	if completePast {
		n, err := a.bookings.CompletePast(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s %d past bookings marked completed\n", color.New(color.FgGreen).Sprint("OK"), n)
	}

	groups, err := a.bookings.FindDuplicates(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Printf("%s no double-booked days\n", color.New(color.FgGreen).Sprint("OK"))
		return nil
	}

	red := color.New(color.FgRed).SprintFunc()
	for _, g := range groups {
		fmt.Printf("  %s camp %s on %s: %s\n", red("DUPLICATE"), g.CampID, g.Date, strings.Join(g.BookingIDs, ", "))
	}
	return fmt.Errorf("%d double-booked days need review", len(groups))
}
