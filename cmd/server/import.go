package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage/models"
)

// exportFile is a document-store export. Either key may be absent.
type exportFile struct {
	Bookings []models.Document `json:"bookings"`
	Blocks   []models.Document `json:"blockedDates"`
}

// ImportCmd returns the import command.
func ImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Load bookings and blocked dates exported from the document store",
		Long: `Load bookings and blocked dates exported from the previous document store.

The file holds {"bookings": [...], "blockedDates": [...]}. Both the current
and the legacy field layouts are accepted. Timestamps are read as calendar
days in CAMP_TIMEZONE. Records whose ID already exists are skipped, so the
command can be re-run. Blocked ranges covering an imported booking's check-in
day are refused and listed.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Decode and report without writing")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	out := cmd.OutOrStdout()

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	var export exportFile
	if err := json.Unmarshal(raw, &export); err != nil {
		return fmt.Errorf("decoding export: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	bookings, blocks := decodeExport(out, export, loc)
	if dryRun {
		return nil
	}

	a, err := newApp(nil)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = restoreExport(context.Background(), out, a, bookings, blocks)
	return err
}

// importSummary counts what restoreExport wrote.
type importSummary struct {
	Bookings int
	Blocks   int
	Refused  int
}

// decodeExport maps every document to a canonical record, reducing
// timestamps to calendar days in loc. Undecodable documents are reported and dropped.
func decodeExport(out io.Writer, export exportFile, loc *time.Location) ([]*models.Booking, []*models.BlockedDateRange) {
	warn := color.New(color.FgYellow).SprintFunc()

	var bookings []*models.Booking
	for i, doc := range export.Bookings {
		b, err := models.DecodeBookingDocument(doc, loc)
		if err != nil {
			fmt.Fprintf(out, "  %s booking #%d: %v\n", warn("SKIP"), i, err)
			continue
		}
		bookings = append(bookings, b)
	}

	var blocks []*models.BlockedDateRange
	for i, doc := range export.Blocks {
		r, err := models.DecodeBlockDocument(doc, loc)
		if err != nil {
			fmt.Fprintf(out, "  %s block #%d: %v\n", warn("SKIP"), i, err)
			continue
		}
		blocks = append(blocks, r)
	}

	fmt.Fprintf(out, "Decoded %d of %d bookings and %d of %d blocked ranges\n",
		len(bookings), len(export.Bookings), len(blocks), len(export.Blocks))
	return bookings, blocks
}

// restoreExport writes bookings first, then blocks through the block service so
// a block covering an active booking's check-in day is refused, not stored.
func restoreExport(ctx context.Context, out io.Writer, a *app, bookings []*models.Booking, blocks []*models.BlockedDateRange) (importSummary, error) {
	warn := color.New(color.FgYellow).SprintFunc()
	ok := color.New(color.FgGreen).SprintFunc()

	var summary importSummary
	inserted, err := a.store.Bookings.Import(ctx, bookings)
	if err != nil {
		return summary, err
	}
	summary.Bookings = inserted
	fmt.Fprintf(out, "%s %d bookings imported, %d already present\n", ok("OK"), inserted, len(bookings)-inserted)

	for _, r := range blocks {
		if r.ID != "" {
			if _, err := a.store.Blocks.GetByID(ctx, r.ID); err == nil {
				continue
			}
		}
		_, err := a.blocks.BlockDates(ctx, calendar.BlockInput{
			ID:        r.ID,
			CampID:    r.CampID,
			HostID:    r.HostID,
			StartDate: r.StartDate,
			EndDate:   r.EndDate,
			Reason:    r.Reason,
			Category:  r.Category,
			Notes:     r.Notes,
			CreatedBy: r.CreatedBy,
		})
		var conflict *calendar.ConflictError
		switch {
		case errors.As(err, &conflict):
			ids := make([]string, 0, len(conflict.Conflicts.ConflictingBookings))
			for _, b := range conflict.Conflicts.ConflictingBookings {
				ids = append(ids, b.ID)
			}
			fmt.Fprintf(out, "  %s block %s %s..%s covers bookings %s\n",
				warn("SKIP"), r.ID, r.StartDate, r.EndDate, strings.Join(ids, ", "))
			summary.Refused++
		case err != nil:
			fmt.Fprintf(out, "  %s block %s: %v\n", warn("SKIP"), r.ID, err)
			summary.Refused++
		default:
			summary.Blocks++
		}
	}
	fmt.Fprintf(out, "%s %d blocked ranges imported, %d refused\n", ok("OK"), summary.Blocks, summary.Refused)

	return summary, nil
}
