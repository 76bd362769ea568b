package viewmodel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sangjo/reservation-desk/pkg/reservation"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
)

type SlotRow struct {
	Slot   string     `json:"slot"`
	Label  string     `json:"label"`
	Status SlotStatus `json:"status"`
	// Reservation is set for booked rows only.
	Reservation *reservation.Reservation `json:"-"`
}

// SlotLabel renders a slot as spanning to the top of the next hour: "10:00 - 11:00".
// Labels without a leading hour are returned unchanged.
func SlotLabel(slot string) string {
	hourPart, _, _ := strings.Cut(slot, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(hourPart))
	if err != nil {
		return slot
	}
	return fmt.Sprintf("%s - %d:00", slot, hour+1)
}

// BuildDaySchedule returns exactly one row per slot for date. When several
// reservations share a slot, the earliest created one is shown.
func BuildDaySchedule(date string, reservations []reservation.Reservation, slots []string) []SlotRow {
	bySlot := make(map[string]reservation.Reservation)
	for _, r := range reservations {
		if r.Date != date {
			continue
		}
		current, taken := bySlot[r.Time]
		if !taken || createdBefore(r, current) {
			bySlot[r.Time] = r
		}
	}

	rows := make([]SlotRow, 0, len(slots))
	for _, slot := range slots {
		row := SlotRow{Slot: slot, Label: SlotLabel(slot), Status: SlotAvailable}
		if r, ok := bySlot[slot]; ok {
			row.Status = SlotBooked
			row.Reservation = &r
		}
		rows = append(rows, row)
	}
	return rows
}

func createdBefore(a, b reservation.Reservation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Id.String() < b.Id.String()
}
