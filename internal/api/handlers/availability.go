package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/storage/models"
)

// BookedDatesResponse lists the days a camp is booked.
type BookedDatesResponse struct {
	CampID string        `json:"camp_id"`
	Dates  []models.Date `json:"dates"`
}

// CheckAvailability reports whether a camp is free on ?date=. Transient store
// failures are retried before the request fails.
func CheckAvailability(camps *storage.CampRepository, engine *availability.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}

		if _, err := camps.GetByID(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}

		result, err := engine.CheckAvailabilityWithRetry(r.Context(), id, date, 0)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// BookedDates returns the sorted booked days of a camp for calendar display.
func BookedDates(engine *availability.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		dates, err := engine.GetBookedDates(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, BookedDatesResponse{CampID: id, Dates: dates})
	}
}

// Conflicts lists bookings and blocks overlapping ?start= to ?end= inclusive.
func Conflicts(engine *availability.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start, ok := dateParam(w, r, "start")
		if !ok {
			return
		}
		end, ok := dateParam(w, r, "end")
		if !ok {
			return
		}

		result, err := engine.DetectConflicts(r.Context(), mux.Vars(r)["id"], start, end)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ExportCalendar serves a camp's booked and blocked days as an iCal feed.
func ExportCalendar(camps *storage.CampRepository, engine *availability.Engine, store availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := mux.Vars(r)["id"]

		if _, err := camps.GetByID(ctx, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		booked, err := engine.GetBookedDates(ctx, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		blocks, err := store.ListBlockedRanges(ctx, id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := calendar.ExportICS(&buf, id, booked, blocks, time.Now()); err != nil {
			writeServiceError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+id+`.ics"`)
		w.Write(buf.Bytes())
	}
}
