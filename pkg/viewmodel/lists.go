package viewmodel

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sangjo/reservation-desk/pkg/reservation"
)

const RecentLimit = 5

const (
	NoReservationsToday = "No reservations scheduled for today."
	NoReservations      = "No reservations registered."
)

type Summary struct {
	Text        string                  `json:"text"`
	Reservation reservation.Reservation `json:"-"`
}

// List is a side-panel list. Placeholder is set instead of Items when there is nothing to show.
type List struct {
	Items       []Summary `json:"items"`
	Placeholder string    `json:"placeholder,omitempty"`
}

// Today lists the reservations on the today date key, earliest slot first.
func Today(reservations []reservation.Reservation, today string) List {
	var todays []reservation.Reservation
	for _, r := range reservations {
		if r.Date == today {
			todays = append(todays, r)
		}
	}
	slices.SortStableFunc(todays, func(a, b reservation.Reservation) int {
		return strings.Compare(a.Time, b.Time)
	})

	if len(todays) == 0 {
		return List{Items: []Summary{}, Placeholder: NoReservationsToday}
	}
	items := make([]Summary, 0, len(todays))
	for _, r := range todays {
		items = append(items, Summary{
			Text:        fmt.Sprintf("[%s] %s (%s)", r.Time, r.DeceasedName, r.ContractorName),
			Reservation: r,
		})
	}
	return List{Items: items}
}

// Recent lists up to limit reservations, latest date first and latest time first within a date.
func Recent(reservations []reservation.Reservation, limit int) List {
	sorted := slices.Clone(reservations)
	slices.SortStableFunc(sorted, func(a, b reservation.Reservation) int {
		if a.Date != b.Date {
			return strings.Compare(b.Date, a.Date)
		}
		return strings.Compare(b.Time, a.Time)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	if len(sorted) == 0 {
		return List{Items: []Summary{}, Placeholder: NoReservations}
	}
	items := make([]Summary, 0, len(sorted))
	for _, r := range sorted {
		items = append(items, Summary{
			Text:        fmt.Sprintf("[%s] %s (%s)", r.Date, r.DeceasedName, r.ContractorName),
			Reservation: r,
		})
	}
	return List{Items: items}
}
