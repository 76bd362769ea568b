// Package ics exports the reservation collection as an iCalendar feed, so the
// schedule can be subscribed to from any calendar application.
package ics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
	log "github.com/sirupsen/logrus"
)

const (
	productId    = "-//reservation-desk//reservations//EN"
	calendarName = "Funeral service reservations"
	slotDuration = time.Hour
)

// Render builds one VEVENT per reservation. A reservation whose date or time
// cannot be placed on the clock is skipped.
func Render(reservations []reservation.Reservation, loc *time.Location, stamp time.Time) *ical.Calendar {
	if loc == nil {
		loc = time.Local
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productId)
	cal.SetName(calendarName)
	cal.SetXWRCalName(calendarName)
	if loc != time.Local {
		cal.SetTimezoneId(loc.String())
	}

	for _, r := range reservations {
		start, err := StartTime(r, loc)
		if err != nil {
			log.Debugf("skipping reservation %s in feed: %v", r.Id, err)
			continue
		}
		event := cal.AddEvent(r.Id.String())
		event.SetDtStampTime(stamp)
		if !r.CreatedAt.IsZero() {
			event.SetCreatedTime(r.CreatedAt)
		}
		event.SetStartAt(start)
		event.SetEndAt(start.Add(slotDuration))
		event.SetSummary(fmt.Sprintf("%s (%s)", r.DeceasedName, r.ContractorName))
		event.SetDescription(fmt.Sprintf("Contractor: %s\nDeceased: %s\nStaff: %s\nSlot: %s",
			r.ContractorName, r.DeceasedName, r.StaffName, viewmodel.SlotLabel(r.Time)))
	}
	return cal
}

// StartTime places a reservation's date and slot on the wall clock of loc.
func StartTime(r reservation.Reservation, loc *time.Location) (time.Time, error) {
	start, err := time.ParseInLocation(utils.DateLayout+" 15:04", r.Date+" "+strings.TrimSpace(r.Time), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date or time %q %q: %w", r.Date, r.Time, err)
	}
	return start, nil
}

type Source interface {
	Snapshot() []reservation.Reservation
}

type Handler struct {
	source   Source
	clock    utils.Clock
	location *time.Location
}

func NewHandler(source Source, clock utils.Clock, location *time.Location) *Handler {
	return &Handler{source: source, clock: clock, location: location}
}

func (h *Handler) GetFeed(w http.ResponseWriter, r *http.Request) {
	cal := Render(h.source.Snapshot(), h.location, h.clock.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="reservations.ics"`)
	w.WriteHeader(http.StatusOK)
	if err := cal.SerializeTo(w); err != nil {
		log.Errorf("failed to write calendar feed: %v", err)
	}
}
