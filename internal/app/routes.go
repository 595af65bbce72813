package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	// Events
	r.HandleFunc("/api/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/events/base", deps.CalendarHandler.GetBaseEvents).Methods("GET")
	r.HandleFunc("/api/events", deps.CalendarHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/events/{eventId}", deps.CalendarHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")

	// Drag and drop
	r.HandleFunc("/api/occurrences/{occurrenceId}/reschedule", deps.CalendarHandler.RescheduleOccurrence).Methods("POST")

	// Month view and export
	r.HandleFunc("/api/grid", deps.CalendarHandler.GetGrid).Methods("GET")
	r.HandleFunc("/api/calendar.ics", deps.CalendarHandler.ExportICS).Methods("GET")
}
