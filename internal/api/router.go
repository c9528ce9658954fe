// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/camp-rental/backend/internal/api/handlers"
	"github.com/camp-rental/backend/internal/api/middleware"
	"github.com/camp-rental/backend/internal/availability"
	"github.com/camp-rental/backend/internal/booking"
	"github.com/camp-rental/backend/internal/calendar"
	"github.com/camp-rental/backend/internal/storage"
	"github.com/camp-rental/backend/internal/websocket"
)

// Services are the dependencies the routes are wired to.
type Services struct {
	DB        *storage.DB
	Store     *storage.RecordStore
	Engine    *availability.Engine
	Bookings  *booking.Service
	Blocks    *calendar.BlockService
	Importer  *calendar.FeedImporter
	Scheduler *calendar.Scheduler
	Hub       *websocket.Hub
	StaticDir string
	Version   string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.HealthCheck(s.DB, s.Hub, s.Scheduler, s.Version)).Methods("GET")
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Camp endpoints
	camps := s.Store.Camps
	api.HandleFunc("/camps", handlers.ListCamps(camps, s.Engine)).Methods("GET")
	api.HandleFunc("/camps", handlers.CreateCamp(camps, s.Scheduler)).Methods("POST")
	api.HandleFunc("/camps/{id}", handlers.GetCamp(camps)).Methods("GET")
	api.HandleFunc("/camps/{id}/status", handlers.UpdateCampStatus(camps)).Methods("PUT")

	// Availability endpoints
	api.HandleFunc("/camps/{id}/availability", handlers.CheckAvailability(camps, s.Engine)).Methods("GET")
	api.HandleFunc("/camps/{id}/booked-dates", handlers.BookedDates(s.Engine)).Methods("GET")
	api.HandleFunc("/camps/{id}/conflicts", handlers.Conflicts(s.Engine)).Methods("GET")
	api.HandleFunc("/camps/{id}/calendar.ics", handlers.ExportCalendar(camps, s.Engine, s.Store)).Methods("GET")

	// Blocked date endpoints
	api.HandleFunc("/camps/{id}/blocks", handlers.ListBlocks(s.Store)).Methods("GET")
	api.HandleFunc("/camps/{id}/blocks", handlers.CreateBlock(camps, s.Blocks)).Methods("POST")
	api.HandleFunc("/blocks/{id}", handlers.DeleteBlock(s.Blocks)).Methods("DELETE")
	api.HandleFunc("/camps/{id}/import-calendar", handlers.ImportCalendar(s.Importer)).Methods("POST")

	// Booking endpoints
	api.HandleFunc("/bookings", handlers.CreateBooking(s.Bookings)).Methods("POST")
	api.HandleFunc("/bookings/validate", handlers.ValidateBooking(s.Engine)).Methods("POST")
	api.HandleFunc("/bookings/{id}", handlers.GetBooking(s.Bookings)).Methods("GET")
	api.HandleFunc("/bookings/{id}/cancel", handlers.CancelBooking(s.Bookings)).Methods("POST")
	api.HandleFunc("/bookings/{id}/confirm", handlers.ConfirmBooking(s.Bookings)).Methods("POST")

	// Serve static frontend files
	if s.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))
	}

	return r
}
