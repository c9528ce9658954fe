package calendar

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

const icsDateLayout = "20060102"

// ExportICS writes campID's booked days and host blocks as an iCal feed.
// Blocks that were themselves imported from a feed are left out so that two
// platforms syncing with each other do not echo events back.
func ExportICS(w io.Writer, campID string, booked []models.Date, blocks []models.BlockedDateRange, stamp time.Time) error {
	bw := bufio.NewWriter(w)
	line := func(format string, args ...any) {
		fmt.Fprintf(bw, format+"\r\n", args...)
	}
	dtstamp := stamp.UTC().Format("20060102T150405Z")

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//camp-rental//availability//EN")
	line("CALSCALE:GREGORIAN")
	line("METHOD:PUBLISH")

	for _, d := range booked {
		line("BEGIN:VEVENT")
		line("UID:booking-%s-%s@camp-rental", campID, d)
		line("DTSTAMP:%s", dtstamp)
		line("DTSTART;VALUE=DATE:%s", icsDate(d))
		line("DTEND;VALUE=DATE:%s", icsDate(d.AddDays(1)))
		line("SUMMARY:Booked")
		line("TRANSP:OPAQUE")
		line("END:VEVENT")
	}

	for _, r := range blocks {
		if IsImported(r) {
			continue
		}
		summary := r.Reason
		if summary == "" {
			summary = "Blocked (" + string(r.Category) + ")"
		}
		line("BEGIN:VEVENT")
		line("UID:block-%s@camp-rental", r.ID)
		line("DTSTAMP:%s", dtstamp)
		line("DTSTART;VALUE=DATE:%s", icsDate(r.StartDate))
		line("DTEND;VALUE=DATE:%s", icsDate(r.EndDate.AddDays(1)))
		line("SUMMARY:%s", escapeText(summary))
		line("CATEGORIES:%s", strings.ToUpper(string(r.Category)))
		line("TRANSP:OPAQUE")
		line("END:VEVENT")
	}

	line("END:VCALENDAR")
	return bw.Flush()
}

func icsDate(d models.Date) string {
	return d.Time(time.UTC).Format(icsDateLayout)
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	return strings.ReplaceAll(s, "\n", "\\n")
}
