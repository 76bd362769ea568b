// Package viewmodel derives everything the desk displays from a reservation
// snapshot. The functions are pure: they never modify the collection they get.
package viewmodel

import (
	"fmt"
	"time"

	"github.com/sangjo/reservation-desk/pkg/reservation"
)

type DayKind string

const (
	DayOrdinary DayKind = "ordinary"
	// DayFirstWeekday is the first column of the week (Sunday).
	DayFirstWeekday DayKind = "first-weekday"
	// DayLastWeekday is the last column of the week (Saturday).
	DayLastWeekday DayKind = "last-weekday"
)

type DayCell struct {
	Day        int     `json:"day"`
	Date       string  `json:"date"`
	Kind       DayKind `json:"kind"`
	Count      int     `json:"count"`
	IsToday    bool    `json:"isToday"`
	IsSelected bool    `json:"isSelected"`
}

type Calendar struct {
	Year int `json:"year"`
	// Month is 0-based (0 = January).
	Month int `json:"month"`
	// LeadingBlanks is the weekday of the 1st, 0 = Sunday ... 6 = Saturday.
	// Blank cells carry no data.
	LeadingBlanks int       `json:"leadingBlanks"`
	Days          []DayCell `json:"days"`
}

// DaysInMonth uses "day 0 of the next month" so leap years come from the time package.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday is the weekday of the 1st of the month, 0 = Sunday.
func FirstWeekday(year, month int) int {
	return int(time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
}

// DateKey formats a 0-based month date as YYYY-MM-DD.
func DateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month+1, day)
}

// BuildCalendar lays out one month. month is 0-based; selectedDate and today are
// date keys and may be empty.
func BuildCalendar(year, month int, reservations []reservation.Reservation, selectedDate, today string) Calendar {
	counts := make(map[string]int)
	for _, r := range reservations {
		counts[r.Date]++
	}

	first := FirstWeekday(year, month)
	days := DaysInMonth(year, month)
	cal := Calendar{
		Year:          year,
		Month:         month,
		LeadingBlanks: first,
		Days:          make([]DayCell, 0, days),
	}
	for day := 1; day <= days; day++ {
		key := DateKey(year, month, day)
		kind := DayOrdinary
		switch (first + day - 1) % 7 {
		case 0:
			kind = DayFirstWeekday
		case 6:
			kind = DayLastWeekday
		}
		cal.Days = append(cal.Days, DayCell{
			Day:        day,
			Date:       key,
			Kind:       kind,
			Count:      counts[key],
			IsToday:    key == today,
			IsSelected: key == selectedDate,
		})
	}
	return cal
}
