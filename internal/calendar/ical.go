// Package calendar manages host date blocking and the exchange of camp
// calendars with other platforms over iCal.
package calendar

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camp-rental/backend/internal/storage/models"
)

// Parser parses iCal/ICS calendar feeds.
type Parser struct {
	httpClient *http.Client
}

// NewParser creates a new iCal parser.
func NewParser() *Parser {
	return &Parser{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchAndParse downloads and parses an iCal feed from a URL.
func (p *Parser) FetchAndParse(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building calendar request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	return p.Parse(resp.Body)
}

// property is one content line of a VEVENT with its parameters.
type property struct {
	name   string
	params map[string]string
	value  strings.Builder
}

// Parse reads and parses iCal data from a reader. Events without a start are dropped.
func (p *Parser) Parse(r io.Reader) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	var current *models.CalendarEvent
	var prop *property

	flush := func() {
		if prop != nil && current != nil {
			p.setEventField(current, prop)
		}
		prop = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		// Folded continuation line
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if prop != nil {
				prop.value.WriteString(line[1:])
			}
			continue
		}
		flush()

		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}
		name, params := parseName(line[:colonIdx])
		value := line[colonIdx+1:]

		switch name {
		case "BEGIN":
			if value == "VEVENT" {
				current = &models.CalendarEvent{}
			}
		case "END":
			if value == "VEVENT" && current != nil {
				if !current.Start.IsZero() {
					if current.End.IsZero() {
						current.End = current.Start
					}
					events = append(events, *current)
				}
				current = nil
			}
		case "UID", "SUMMARY", "DTSTART", "DTEND":
			if current != nil {
				prop = &property{name: name, params: params}
				prop.value.WriteString(value)
			}
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	return events, nil
}

// parseName splits "DTSTART;VALUE=DATE;TZID=Europe/Paris" into name and parameters.
func parseName(raw string) (string, map[string]string) {
	parts := strings.Split(raw, ";")
	params := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		if k, v, ok := strings.Cut(part, "="); ok {
			params[strings.ToUpper(k)] = strings.Trim(v, `"`)
		}
	}
	return strings.ToUpper(parts[0]), params
}

func (p *Parser) setEventField(event *models.CalendarEvent, prop *property) {
	value := unescapeText(prop.value.String())

	switch prop.name {
	case "UID":
		event.UID = value
	case "SUMMARY":
		event.Summary = value
	case "DTSTART":
		event.Start, event.AllDay = parseDateTime(value, prop.params)
	case "DTEND":
		event.End, _ = parseDateTime(value, prop.params)
	}
}

func unescapeText(value string) string {
	value = strings.ReplaceAll(value, "\\n", "\n")
	value = strings.ReplaceAll(value, "\\N", "\n")
	value = strings.ReplaceAll(value, "\\,", ",")
	value = strings.ReplaceAll(value, "\\;", ";")
	return strings.ReplaceAll(value, "\\\\", "\\")
}

// parseDateTime parses a DTSTART/DTEND value and reports whether it is a date
// without a time. Floating times use TZID when it names a known zone, UTC otherwise.
func parseDateTime(value string, params map[string]string) (time.Time, bool) {
	if params["VALUE"] == "DATE" || len(value) == len("20060102") {
		t, err := time.Parse("20060102", value)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse("20060102T150405Z", value)
		if err != nil {
			return time.Time{}, false
		}
		return t, false
	}

	loc := time.UTC
	if tzid := params["TZID"]; tzid != "" {
		if l, err := time.LoadLocation(tzid); err == nil {
			loc = l
		}
	}
	t, err := time.ParseInLocation("20060102T150405", value, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, false
}

// EventRange converts an event into the inclusive range of camp days it occupies.
// All-day DTEND is exclusive, so the last day is DTEND minus one. A timed event
// ending exactly at midnight does not occupy the day it ends on.
func EventRange(e models.CalendarEvent, loc *time.Location) (start, end models.Date) {
	if e.AllDay {
		start = models.DateOf(e.Start)
		end = models.DateOf(e.End).AddDays(-1)
	} else {
		start = models.DateIn(e.Start, loc)
		endLocal := e.End.In(loc)
		end = models.DateOf(endLocal)
		if e.End.After(e.Start) && endLocal.Equal(end.Time(loc)) {
			end = end.AddDays(-1)
		}
	}
	if end.Before(start) {
		end = start
	}
	return start, end
}
