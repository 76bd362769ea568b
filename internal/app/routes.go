package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sangjo/reservation-desk/internal/rest"
	log "github.com/sirupsen/logrus"
)

type healthDTO struct {
	Status string `json:"status"`
}

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Side lists and feed come before {reservationId} so they are not taken for ids
	r.HandleFunc("/api/reservation/today", deps.ViewHandler.GetToday).Methods("GET")
	r.HandleFunc("/api/reservation/recent", deps.ViewHandler.GetRecent).Methods("GET")
	r.HandleFunc("/api/reservation.ics", deps.FeedHandler.GetFeed).Methods("GET")

	// Reservations
	r.HandleFunc("/api/reservation", deps.ReservationHandler.List).Methods("GET")
	r.HandleFunc("/api/reservation", deps.ReservationHandler.Create).Methods("POST")
	r.HandleFunc("/api/reservation/{reservationId}", deps.ReservationHandler.Get).Methods("GET")
	r.HandleFunc("/api/reservation/{reservationId}", deps.ReservationHandler.Update).Methods("PUT")
	r.HandleFunc("/api/reservation/{reservationId}", deps.ReservationHandler.Delete).Methods("DELETE")

	// Views
	r.HandleFunc("/api/calendar", deps.ViewHandler.GetCalendar).Methods("GET")
	r.HandleFunc("/api/schedule", deps.ViewHandler.GetDaySchedule).Methods("GET")

	r.HandleFunc("/api/health", func(w http.ResponseWriter, req *http.Request) {
		if deps.Ping != nil {
			if err := deps.Ping(req.Context()); err != nil {
				log.Warnf("health check failed: %v", err)
				rest.WriteError(w, http.StatusServiceUnavailable, "Storage unavailable", err.Error())
				return
			}
		}
		rest.WriteJSON(w, http.StatusOK, healthDTO{Status: "ok"})
	}).Methods("GET")
}
