package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/camp-rental/backend/internal/api/middleware"
	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/storage/models"
)

// CreateBlockRequest is the body of POST /api/camps/{id}/blocks.
type CreateBlockRequest struct {
	HostID    string               `json:"host_id"`
	StartDate models.Date          `json:"start_date" validate:"required"`
	EndDate   models.Date          `json:"end_date" validate:"required"`
	Reason    string               `json:"reason" validate:"max=500"`
	Category  models.BlockCategory `json:"category" validate:"omitempty,oneof=maintenance personal weather event seasonal other"`
	Notes     *string              `json:"notes" validate:"omitempty,max=2000"`
	CreatedBy string               `json:"created_by"`
}

// ListBlocks returns a camp's blocked ranges.
func ListBlocks(store availability.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blocks, err := store.ListBlockedRanges(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if blocks == nil {
			blocks = []models.BlockedDateRange{}
		}
		writeJSON(w, http.StatusOK, blocks)
	}
}

// CreateBlock blocks a range of days after checking for conflicts.
func CreateBlock(camps *storage.CampRepository, blocks *calendar.BlockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBlockRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		camp, err := camps.GetByID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		hostID := req.HostID
		if hostID == "" {
			hostID = camp.HostID
		}
		createdBy := req.CreatedBy
		if createdBy == "" {
			createdBy = hostID
		}

		block, err := blocks.BlockDates(r.Context(), calendar.BlockInput{
			CampID:    camp.ID,
			HostID:    hostID,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Reason:    req.Reason,
			Category:  req.Category,
			Notes:     req.Notes,
			CreatedBy: createdBy,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, block)
	}
}

// DeleteBlock removes a blocked range.
func DeleteBlock(blocks *calendar.BlockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := blocks.UnblockDates(r.Context(), mux.Vars(r)["id"]); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ImportCalendar mirrors the camp's external iCal feed into blocks now.
func ImportCalendar(importer *calendar.FeedImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := importer.Import(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			if result != nil && !availability.IsPermissionError(err) && !errors.Is(err, availability.ErrUnavailable) {
				// The remote feed failed, not us.
				middleware.WriteErrorWithDetails(w, http.StatusBadGateway, middleware.ErrImportFailed, err.Error(), result)
				return
			}
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}
