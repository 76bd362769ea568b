package reservation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

// Store holds the in-memory reservation collection. The collection is only
// ever replaced as a whole by Refresh; readers get an immutable snapshot.
type Store struct {
	repo     Repository
	notifier Notifier
	bus      *event_bus.EventBus

	snapshot atomic.Pointer[[]Reservation]
	started  atomic.Uint64

	mu      sync.Mutex
	applied uint64
}

func NewStore(repo Repository, notifier Notifier, bus *event_bus.EventBus) *Store {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	s := &Store{repo: repo, notifier: notifier, bus: bus}
	empty := make([]Reservation, 0)
	s.snapshot.Store(&empty)
	return s
}

// Snapshot returns the current collection ordered by date and time.
// The returned slice is shared and must not be modified.
func (s *Store) Snapshot() []Reservation {
	return *s.snapshot.Load()
}

// Get looks a reservation up in the current snapshot.
func (s *Store) Get(id uuid.UUID) (Reservation, bool) {
	for _, r := range s.Snapshot() {
		if r.Id == id {
			return r, true
		}
	}
	return Reservation{}, false
}

// Refresh fetches the full collection and replaces the snapshot. On failure the
// previous snapshot stays in place. When refreshes overlap, the one started last
// wins even if an older one finishes after it.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.started.Add(1)

	reservations, err := s.repo.List(ctx)
	if err != nil {
		s.notifier.Error("Failed to load reservations.", err)
		return fmt.Errorf("failed to fetch reservations: %w", err)
	}

	s.mu.Lock()
	if seq < s.applied {
		s.mu.Unlock()
		log.Debugf("dropping stale refresh %d, %d already applied", seq, s.applied)
		return nil
	}
	s.applied = seq
	s.snapshot.Store(&reservations)
	s.mu.Unlock()

	log.Debugf("Loaded %d reservations", len(reservations))

	if s.bus != nil {
		event := event_bus.NewEvent(event_bus.ReservationsRefreshed, event_bus.CollectionRefreshed{Count: len(reservations)})
		if err := s.bus.Publish(ctx, event); err != nil {
			log.Warnf("refresh listeners failed: %v", err)
		}
	}
	return nil
}
