package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Reservation
	now   time.Time
	calls int

	// Err, when set, is returned by every operation.
	Err error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items: make(map[uuid.UUID]Reservation),
		now:   time.Date(2025, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (r *RepositoryStub) List(ctx context.Context) ([]Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return nil, r.Err
	}

	result := make([]Reservation, 0, len(r.items))
	for _, item := range r.items {
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date != result[j].Date {
			return result[i].Date < result[j].Date
		}
		if result[i].Time != result[j].Time {
			return result[i].Time < result[j].Time
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *RepositoryStub) Store(ctx context.Context, res Reservation) (Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return Reservation{}, r.Err
	}

	res.Id = uuid.New()
	// every stored item gets a distinct, increasing creation time
	r.now = r.now.Add(time.Second)
	res.CreatedAt = r.now
	r.items[res.Id] = res
	return res, nil
}

func (r *RepositoryStub) Update(ctx context.Context, res Reservation) (Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return Reservation{}, r.Err
	}

	existing, ok := r.items[res.Id]
	if !ok {
		return Reservation{}, ErrReservationNotFound
	}
	res.CreatedAt = existing.CreatedAt
	r.items[res.Id] = res
	return res, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.items[id]; !ok {
		return ErrReservationNotFound
	}
	delete(r.items, id)
	return nil
}

// Calls reports how many repository operations were issued.
func (r *RepositoryStub) Calls() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.calls
}
