package viewmodel

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sangjo/reservation-desk/internal/rest"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	log "github.com/sirupsen/logrus"
)

// Source provides the current reservation snapshot.
type Source interface {
	Snapshot() []reservation.Reservation
}

type Handler struct {
	source   Source
	clock    utils.Clock
	location *time.Location
	slots    []string
}

type SlotRowDTO struct {
	Slot        string                      `json:"slot"`
	Label       string                      `json:"label"`
	Status      SlotStatus                  `json:"status"`
	Reservation *reservation.ReservationDTO `json:"reservation,omitempty"`
}

type DayScheduleDTO struct {
	Date  string       `json:"date"`
	Slots []SlotRowDTO `json:"slots"`
}

type SummaryDTO struct {
	Text        string                     `json:"text"`
	Reservation reservation.ReservationDTO `json:"reservation"`
}

type ListDTO struct {
	Items       []SummaryDTO `json:"items"`
	Placeholder string       `json:"placeholder,omitempty"`
}

func NewHandler(source Source, clock utils.Clock, location *time.Location, slots []string) *Handler {
	return &Handler{source: source, clock: clock, location: location, slots: slots}
}

// GetCalendar serves the month grid. year and month (0-based) default to the
// current month; selected is an optional date key.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	now := h.clock.Now().In(h.location)
	year, month := now.Year(), int(now.Month())-1

	query := r.URL.Query()
	if v := query.Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 9999 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid year", "'year' must be a number between 1 and 9999")
			return
		}
		year = parsed
	}
	if v := query.Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 || parsed > 11 {
			rest.WriteError(w, http.StatusBadRequest, "Invalid month", "'month' must be between 0 (January) and 11 (December)")
			return
		}
		month = parsed
	}
	selected := query.Get("selected")
	if selected != "" && !validDate(selected) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid selected date", "'selected' must be in YYYY-MM-DD format")
		return
	}

	log.Tracef("Building calendar for %d-%02d", year, month+1)
	cal := BuildCalendar(year, month, h.source.Snapshot(), selected, utils.Today(h.clock, h.location))
	rest.WriteJSON(w, http.StatusOK, cal)
}

func (h *Handler) GetDaySchedule(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !validDate(date) {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date", "'date' must be in YYYY-MM-DD format")
		return
	}

	rows := BuildDaySchedule(date, h.source.Snapshot(), h.slots)
	dto := DayScheduleDTO{Date: date, Slots: make([]SlotRowDTO, 0, len(rows))}
	for _, row := range rows {
		rowDTO := SlotRowDTO{Slot: row.Slot, Label: row.Label, Status: row.Status}
		if row.Reservation != nil {
			res := reservation.ToDTO(*row.Reservation)
			rowDTO.Reservation = &res
		}
		dto.Slots = append(dto.Slots, rowDTO)
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	list := Today(h.source.Snapshot(), utils.Today(h.clock, h.location))
	rest.WriteJSON(w, http.StatusOK, listToDTO(list))
}

func (h *Handler) GetRecent(w http.ResponseWriter, r *http.Request) {
	list := Recent(h.source.Snapshot(), RecentLimit)
	rest.WriteJSON(w, http.StatusOK, listToDTO(list))
}

func listToDTO(list List) ListDTO {
	dto := ListDTO{Items: make([]SummaryDTO, 0, len(list.Items)), Placeholder: list.Placeholder}
	for _, item := range list.Items {
		dto.Items = append(dto.Items, SummaryDTO{Text: item.Text, Reservation: reservation.ToDTO(item.Reservation)})
	}
	return dto
}

func validDate(date string) bool {
	_, err := time.Parse(utils.DateLayout, date)
	return err == nil
}
