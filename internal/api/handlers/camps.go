package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/camp-rental/backend/internal/api/middleware"
	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/storage/models"
)

// CreateCampRequest is the body of POST /api/camps.
type CreateCampRequest struct {
	HostID       string            `json:"host_id" validate:"required"`
	Name         string            `json:"name" validate:"required,max=200"`
	Status       models.CampStatus `json:"status" validate:"omitempty,oneof=active pending inactive"`
	CheckInTime  string            `json:"check_in_time" validate:"omitempty,datetime=15:04"`
	CheckOutTime string            `json:"check_out_time" validate:"omitempty,datetime=15:04"`
	PricePerDay  float64           `json:"price_per_day" validate:"gte=0"`
	ICalFeedURL  *string           `json:"ical_feed_url" validate:"omitempty,url"`
}

// UpdateCampStatusRequest is the body of PUT /api/camps/{id}/status.
type UpdateCampStatusRequest struct {
	Status models.CampStatus `json:"status" validate:"required,oneof=active pending inactive"`
}

// ListCamps returns camps. With ?date= it returns only active camps free on
// that day; camps whose availability cannot be determined are left out.
func ListCamps(camps *storage.CampRepository, engine *availability.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		if query.Get("date") == "" {
			list, err := camps.List(ctx, models.CampStatus(query.Get("status")))
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			if list == nil {
				list = []models.Camp{}
			}
			writeJSON(w, http.StatusOK, list)
			return
		}

		date, ok := dateParam(w, r, "date")
		if !ok {
			return
		}

		active, err := camps.List(ctx, models.CampStatusActive)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		ids := make([]string, 0, len(active))
		for _, c := range active {
			ids = append(ids, c.ID)
		}
		free := make(map[string]bool)
		for _, id := range engine.FilterAvailableCamps(ctx, ids, date) {
			free[id] = true
		}

		result := []models.Camp{}
		for _, c := range active {
			if free[c.ID] {
				result = append(result, c)
			}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// GetCamp returns a single camp by ID.
func GetCamp(camps *storage.CampRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camp, err := camps.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, camp)
	}
}

// CreateCamp adds a camp listing. A camp created with a feed URL gets its
// first import queued right away instead of waiting for the next sync.
func CreateCamp(camps *storage.CampRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCampRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		camp := &models.Camp{
			HostID:       req.HostID,
			Name:         req.Name,
			Status:       req.Status,
			CheckInTime:  req.CheckInTime,
			CheckOutTime: req.CheckOutTime,
			PricePerDay:  req.PricePerDay,
			ICalFeedURL:  req.ICalFeedURL,
		}
		if err := camps.Create(r.Context(), camp); err != nil {
			writeServiceError(w, r, err)
			return
		}
		if scheduler != nil && camp.ICalFeedURL != nil && *camp.ICalFeedURL != "" {
			scheduler.TriggerImport(camp.ID)
		}

		writeJSON(w, http.StatusCreated, camp)
	}
}

// UpdateCampStatus activates or deactivates a camp.
func UpdateCampStatus(camps *storage.CampRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateCampStatusRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		id := mux.Vars(r)["id"]
		if err := camps.UpdateStatus(r.Context(), id, req.Status); err != nil {
			writeServiceError(w, r, err)
			return
		}

		camp, err := camps.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to load camp")
			return
		}
		writeJSON(w, http.StatusOK, camp)
	}
}
