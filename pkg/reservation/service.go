package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Commands are the write operations of the desk. Each one completes its store
// round-trip and the following refresh before it returns.
type Commands interface {
	Create(ctx context.Context, r Reservation) (Reservation, error)
	Update(ctx context.Context, r Reservation) (Reservation, error)
	Delete(ctx context.Context, id uuid.UUID, confirmer Confirmer) (bool, error)
}

// writeFollowUpTimeout bounds the refresh and publish after a committed write.
const writeFollowUpTimeout = 15 * time.Second

type Service struct {
	repo     Repository
	store    *Store
	bus      *event_bus.EventBus
	notifier Notifier
}

func NewService(repo Repository, store *Store, bus *event_bus.EventBus, notifier Notifier) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{repo: repo, store: store, bus: bus, notifier: notifier}
}

func (s *Service) Create(ctx context.Context, r Reservation) (Reservation, error) {
	r.Id = uuid.Nil
	if err := r.Validate(); err != nil {
		s.fail("Failed to save reservation", err)
		return Reservation{}, err
	}

	stored, err := s.repo.Store(ctx, r)
	if err != nil {
		s.fail("Failed to save reservation", err)
		return Reservation{}, fmt.Errorf("failed to store reservation: %w", err)
	}
	log.Debugf("Reservation %s stored for %s %s", stored.Id, stored.Date, stored.Time)
	s.notifier.Info("New reservation saved.")

	s.afterWrite(ctx, event_bus.ReservationCreated, changed(stored))
	return stored, nil
}

func (s *Service) Update(ctx context.Context, r Reservation) (Reservation, error) {
	if !r.IsStored() {
		err := fmt.Errorf("%w: id", ErrMissingField)
		s.fail("Failed to update reservation", err)
		return Reservation{}, err
	}
	if err := r.Validate(); err != nil {
		s.fail("Failed to update reservation", err)
		return Reservation{}, err
	}

	updated, err := s.repo.Update(ctx, r)
	if err != nil {
		s.fail("Failed to update reservation", err)
		return Reservation{}, fmt.Errorf("failed to update reservation: %w", err)
	}
	log.Debugf("Reservation %s updated", updated.Id)
	s.notifier.Info("Reservation updated.")

	s.afterWrite(ctx, event_bus.ReservationUpdated, changed(updated))
	return updated, nil
}

// Delete removes one reservation after the confirmer agreed. A declined
// confirmation issues no store call and is not an error; it reports false.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirmer Confirmer) (bool, error) {
	if confirmer == nil || !confirmer.Confirm(ctx, id) {
		log.Debugf("Deletion of reservation %s not confirmed", id)
		return false, nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.fail("Failed to delete reservation", err)
		return false, fmt.Errorf("failed to delete reservation: %w", err)
	}
	log.Debugf("Reservation %s deleted", id)
	s.notifier.Info("Reservation deleted.")

	s.afterWrite(ctx, event_bus.ReservationDeleted, event_bus.ReservationChanged{Id: id.String()})
	return true, nil
}

// fail reports through the notifier only; LogNotifier writes the log entry.
func (s *Service) fail(message string, err error) {
	s.notifier.Error(fmt.Sprintf("%s: %v", message, err), err)
}

// afterWrite refreshes the store and then tells the other listeners. A failed
// refresh was already reported by the store and does not undo the write.
// The write is committed, so the caller's cancellation no longer applies.
func (s *Service) afterWrite(ctx context.Context, eventType event_bus.EventType, data event_bus.ReservationChanged) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeFollowUpTimeout)
	defer cancel()

	if s.store != nil {
		_ = s.store.Refresh(ctx)
	}
	if s.bus != nil {
		if err := s.bus.Publish(ctx, event_bus.NewEvent(eventType, data)); err != nil {
			log.Warnf("listeners of %s failed: %v", eventType, err)
		}
	}
}

func changed(r Reservation) event_bus.ReservationChanged {
	return event_bus.ReservationChanged{
		Id:             r.Id.String(),
		ContractorName: r.ContractorName,
		DeceasedName:   r.DeceasedName,
		Date:           r.Date,
		Time:           r.Time,
		StaffName:      r.StaffName,
	}
}
