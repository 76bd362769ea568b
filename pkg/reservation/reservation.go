package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/utils"
)

var ErrReservationNotFound = errors.New("reservation not found")
var ErrMissingField = errors.New("required field is missing")
var ErrInvalidDate = errors.New("date must be in YYYY-MM-DD format")

// Reservation is one booked slot at the desk. Id is uuid.Nil until the
// reservation was stored for the first time.
type Reservation struct {
	Id             uuid.UUID
	ContractorName string
	DeceasedName   string
	// Date is the ISO calendar date key, e.g. 2025-03-10.
	Date string
	// Time is the slot start label, e.g. 11:00.
	Time      string
	StaffName string
	CreatedAt time.Time
}

func (r Reservation) IsStored() bool {
	return r.Id != uuid.Nil
}

// Validate checks that all five form fields are present and that Date is a calendar date.
func (r Reservation) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"contractorName", r.ContractorName},
		{"deceasedName", r.DeceasedName},
		{"date", r.Date},
		{"time", r.Time},
		{"staffName", r.StaffName},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	if _, err := time.Parse(utils.DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}
	return nil
}
