package reservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sangjo/reservation-desk/internal/rest"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	commands Commands
	store    *Store
}

type ReservationDTO struct {
	Id             string    `json:"id,omitempty"`
	ContractorName string    `json:"contractorName"`
	DeceasedName   string    `json:"deceasedName"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	StaffName      string    `json:"staffName"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

type DeleteResultDTO struct {
	Deleted bool `json:"deleted"`
}

func NewHandler(commands Commands, store *Store) *Handler {
	return &Handler{commands: commands, store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing reservations")
	reservations := h.store.Snapshot()
	dtos := make([]ReservationDTO, 0, len(reservations))
	for _, res := range reservations {
		dtos = append(dtos, ToDTO(res))
	}
	rest.WriteJSON(w, http.StatusOK, dtos)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	res, found := h.store.Get(id)
	if !found {
		rest.WriteError(w, http.StatusNotFound, "Reservation not found", id.String())
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(res))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto ReservationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	res := FromDTO(dto)
	res.Id = uuid.Nil

	stored, err := h.commands.Create(r.Context(), res)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ToDTO(stored))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	var dto ReservationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	res := FromDTO(dto)
	res.Id = id

	updated, err := h.commands.Update(r.Context(), res)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ToDTO(updated))
}

// Delete only reaches the store when the request carries confirm=true.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathId(w, r)
	if !ok {
		return
	}
	confirmed := r.URL.Query().Get("confirm") == "true"
	confirmer := NeverConfirm
	if confirmed {
		confirmer = AlwaysConfirm
	}

	deleted, err := h.commands.Delete(r.Context(), id, confirmer)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, DeleteResultDTO{Deleted: deleted})
}

func pathId(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idString := mux.Vars(r)["reservationId"]
	id, err := uuid.Parse(idString)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid reservation id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func writeCommandError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingField), errors.Is(err, ErrInvalidDate):
		rest.WriteError(w, http.StatusBadRequest, "Invalid reservation", err.Error())
	case errors.Is(err, ErrReservationNotFound):
		rest.WriteError(w, http.StatusNotFound, "Reservation not found", err.Error())
	default:
		rest.WriteError(w, http.StatusInternalServerError, "Reservation could not be saved", err.Error())
	}
}

func ToDTO(r Reservation) ReservationDTO {
	dto := ReservationDTO{
		ContractorName: r.ContractorName,
		DeceasedName:   r.DeceasedName,
		Date:           r.Date,
		Time:           r.Time,
		StaffName:      r.StaffName,
		CreatedAt:      r.CreatedAt,
	}
	if r.IsStored() {
		dto.Id = r.Id.String()
	}
	return dto
}

func FromDTO(dto ReservationDTO) Reservation {
	id, _ := uuid.Parse(dto.Id)
	return Reservation{
		Id:             id,
		ContractorName: dto.ContractorName,
		DeceasedName:   dto.DeceasedName,
		Date:           dto.Date,
		Time:           dto.Time,
		StaffName:      dto.StaffName,
		CreatedAt:      dto.CreatedAt,
	}
}
