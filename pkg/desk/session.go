// Package desk holds the state of one staff console: which month is shown,
// which day is selected and which dialog is open. All derived views are computed
// from the reservation snapshot on demand.
package desk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidTransition = errors.New("action not possible in the current dialog state")
var ErrInvalidMonth = errors.New("month must be between 0 and 11")

type Modal int

const (
	Closed Modal = iota
	CreateOpen
	EditOpen
	DetailOpen
)

func (m Modal) String() string {
	switch m {
	case Closed:
		return "closed"
	case CreateOpen:
		return "create"
	case EditOpen:
		return "edit"
	case DetailOpen:
		return "detail"
	}
	return fmt.Sprintf("modal(%d)", int(m))
}

// Navigation is the displayed month and the selected day. Month is 0-based.
type Navigation struct {
	Year         int
	Month        int
	SelectedDate string
}

// Form mirrors the five fields of the reservation dialog.
type Form struct {
	ContractorName string
	DeceasedName   string
	Date           string
	Time           string
	StaffName      string
}

type Session struct {
	Nav   Navigation
	Modal Modal
	// EditingId is the reservation bound to the edit dialog; uuid.Nil means create mode.
	EditingId uuid.UUID
	// Detail is the reservation shown read-only while DetailOpen.
	Detail *reservation.Reservation
	Form   Form

	commands reservation.Commands
	source   viewmodel.Source
	clock    utils.Clock
	location *time.Location
	slots    []string
}

// NewSession starts on the current month with a default day selected.
func NewSession(commands reservation.Commands, source viewmodel.Source, clock utils.Clock, location *time.Location, slots []string) *Session {
	if location == nil {
		location = time.Local
	}
	s := &Session{
		commands: commands,
		source:   source,
		clock:    clock,
		location: location,
		slots:    slots,
	}
	now := clock.Now().In(location)
	s.Nav.Year = now.Year()
	s.Nav.Month = int(now.Month()) - 1
	s.selectDefaultDate()
	return s
}

func (s *Session) Today() string {
	return utils.Today(s.clock, s.location)
}

func (s *Session) Slots() []string {
	return s.slots
}

// --- navigation ---

func (s *Session) SetYear(year int) {
	s.Nav.Year = year
	s.selectDefaultDate()
}

func (s *Session) SetMonth(month int) error {
	if month < 0 || month > 11 {
		return ErrInvalidMonth
	}
	s.Nav.Month = month
	s.selectDefaultDate()
	return nil
}

// ShiftMonth moves the displayed month by delta, rolling over year boundaries.
func (s *Session) ShiftMonth(delta int) {
	total := s.Nav.Year*12 + s.Nav.Month + delta
	s.Nav.Year = total / 12
	s.Nav.Month = total % 12
	s.selectDefaultDate()
}

func (s *Session) GoToToday() {
	now := s.clock.Now().In(s.location)
	s.Nav.Year = now.Year()
	s.Nav.Month = int(now.Month()) - 1
	s.Nav.SelectedDate = s.Today()
}

func (s *Session) SelectDate(date string) error {
	if _, err := time.Parse(utils.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", reservation.ErrInvalidDate, date)
	}
	s.Nav.SelectedDate = date
	return nil
}

// Refreshed is called after the snapshot changed; it only fills in a selection if none exists.
func (s *Session) Refreshed() {
	if s.Nav.SelectedDate == "" {
		s.selectDefaultDate()
	}
}

// selectDefaultDate picks today when it is in the displayed month, otherwise the
// first reserved day of the month, otherwise the 1st.
func (s *Session) selectDefaultDate() {
	today := s.Today()
	prefix := fmt.Sprintf("%04d-%02d-", s.Nav.Year, s.Nav.Month+1)
	if len(today) > len(prefix) && today[:len(prefix)] == prefix {
		s.Nav.SelectedDate = today
		return
	}
	for _, r := range s.source.Snapshot() {
		if len(r.Date) > len(prefix) && r.Date[:len(prefix)] == prefix {
			s.Nav.SelectedDate = r.Date
			return
		}
	}
	s.Nav.SelectedDate = viewmodel.DateKey(s.Nav.Year, s.Nav.Month, 1)
}

// --- derived views ---

func (s *Session) Calendar() viewmodel.Calendar {
	return viewmodel.BuildCalendar(s.Nav.Year, s.Nav.Month, s.source.Snapshot(), s.Nav.SelectedDate, s.Today())
}

func (s *Session) DaySchedule() []viewmodel.SlotRow {
	return viewmodel.BuildDaySchedule(s.Nav.SelectedDate, s.source.Snapshot(), s.slots)
}

func (s *Session) TodayList() viewmodel.List {
	return viewmodel.Today(s.source.Snapshot(), s.Today())
}

func (s *Session) RecentList() viewmodel.List {
	return viewmodel.Recent(s.source.Snapshot(), viewmodel.RecentLimit)
}

// --- dialogs ---

// OpenCreate opens an empty form, with date filled in when given.
func (s *Session) OpenCreate(date string) error {
	if s.Modal != Closed {
		return fmt.Errorf("%w: open create from %s", ErrInvalidTransition, s.Modal)
	}
	s.Form = Form{Date: date}
	s.EditingId = uuid.Nil
	s.Modal = CreateOpen
	return nil
}

// OpenEdit binds the form to r. Opening it from the detail view closes the detail view.
func (s *Session) OpenEdit(r reservation.Reservation) error {
	if s.Modal != Closed && s.Modal != DetailOpen {
		return fmt.Errorf("%w: open edit from %s", ErrInvalidTransition, s.Modal)
	}
	if !r.IsStored() {
		return fmt.Errorf("%w: reservation has no id", ErrInvalidTransition)
	}
	s.Detail = nil
	s.EditingId = r.Id
	s.Form = Form{
		ContractorName: r.ContractorName,
		DeceasedName:   r.DeceasedName,
		Date:           r.Date,
		Time:           r.Time,
		StaffName:      r.StaffName,
	}
	s.Modal = EditOpen
	return nil
}

func (s *Session) OpenDetail(r reservation.Reservation) error {
	if s.Modal != Closed {
		return fmt.Errorf("%w: open detail from %s", ErrInvalidTransition, s.Modal)
	}
	s.Detail = &r
	s.Modal = DetailOpen
	return nil
}

// Cancel closes whichever dialog is open and clears the form.
func (s *Session) Cancel() {
	s.close()
}

func (s *Session) close() {
	s.Modal = Closed
	s.Detail = nil
	s.EditingId = uuid.Nil
	s.Form = Form{}
}

// Submit sends the form. The editing id alone decides between create and update.
// On failure the dialog stays open with the form intact.
func (s *Session) Submit(ctx context.Context) (reservation.Reservation, error) {
	send, err := s.SubmitCommand()
	if err != nil {
		return reservation.Reservation{}, err
	}
	return s.Submitted(send(ctx))
}

// SubmitCommand captures the form and returns the call that sends it. The call
// does not touch the session, so it can run outside the UI loop; its result
// goes to Submitted.
func (s *Session) SubmitCommand() (func(ctx context.Context) (reservation.Reservation, error), error) {
	if s.Modal != CreateOpen && s.Modal != EditOpen {
		return nil, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, s.Modal)
	}
	r := reservation.Reservation{
		Id:             s.EditingId,
		ContractorName: s.Form.ContractorName,
		DeceasedName:   s.Form.DeceasedName,
		Date:           s.Form.Date,
		Time:           s.Form.Time,
		StaffName:      s.Form.StaffName,
	}
	commands := s.commands
	return func(ctx context.Context) (reservation.Reservation, error) {
		if r.IsStored() {
			return commands.Update(ctx, r)
		}
		return commands.Create(ctx, r)
	}, nil
}

// Submitted closes the dialog after a successful send and leaves it open otherwise.
func (s *Session) Submitted(saved reservation.Reservation, err error) (reservation.Reservation, error) {
	if err != nil {
		return reservation.Reservation{}, err
	}
	log.Debugf("Reservation %s submitted", saved.Id)
	s.close()
	return saved, nil
}

// Delete removes the reservation being edited once confirmer agrees. Declining
// leaves the dialog as it is and reports false.
func (s *Session) Delete(ctx context.Context, confirmer reservation.Confirmer) (bool, error) {
	remove, err := s.DeleteCommand(confirmer)
	if err != nil {
		return false, err
	}
	return s.Deleted(remove(ctx))
}

// DeleteCommand is the two-step form of Delete, like SubmitCommand.
func (s *Session) DeleteCommand(confirmer reservation.Confirmer) (func(ctx context.Context) (bool, error), error) {
	if s.Modal != EditOpen || s.EditingId == uuid.Nil {
		return nil, fmt.Errorf("%w: delete from %s", ErrInvalidTransition, s.Modal)
	}
	id, commands := s.EditingId, s.commands
	return func(ctx context.Context) (bool, error) {
		return commands.Delete(ctx, id, confirmer)
	}, nil
}

func (s *Session) Deleted(deleted bool, err error) (bool, error) {
	if err != nil || !deleted {
		return false, err
	}
	s.close()
	return true, nil
}
