package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	infos  []string
	errors []string
}

func (n *recordingNotifier) Info(message string) {
	n.infos = append(n.infos, message)
}

func (n *recordingNotifier) Error(message string, err error) {
	n.errors = append(n.errors, message)
}

func setupServiceTest(t *testing.T) (*Service, *Store, *RepositoryStub, *recordingNotifier, *event_bus.EventBus) {
	repo := NewRepositoryStub()
	notifier := &recordingNotifier{}
	bus := event_bus.NewEventBus()
	store := NewStore(repo, notifier, bus)
	return NewService(repo, store, bus, notifier), store, repo, notifier, bus
}

func sampleReservation() Reservation {
	return Reservation{
		ContractorName: "Kim",
		DeceasedName:   "Lee",
		Date:           "2025-03-10",
		Time:           "11:00",
		StaffName:      "Park",
	}
}

func TestService_Create(t *testing.T) {
	t.Run("stores the reservation and refreshes the collection", func(t *testing.T) {
		service, store, _, notifier, _ := setupServiceTest(t)
		ctx := context.Background()

		created, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, created.Id)
		assert.False(t, created.CreatedAt.IsZero())
		snapshot := store.Snapshot()
		require.Len(t, snapshot, 1)
		assert.Equal(t, created.Id, snapshot[0].Id)
		assert.Equal(t, "Kim", snapshot[0].ContractorName)
		assert.Equal(t, "Lee", snapshot[0].DeceasedName)
		assert.Equal(t, "2025-03-10", snapshot[0].Date)
		assert.Equal(t, "11:00", snapshot[0].Time)
		assert.Equal(t, "Park", snapshot[0].StaffName)
		assert.Equal(t, []string{"New reservation saved."}, notifier.infos)
	})

	t.Run("assigns a fresh id on every create", func(t *testing.T) {
		service, _, _, _, _ := setupServiceTest(t)
		ctx := context.Background()

		first, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)
		input := sampleReservation()
		input.Id = first.Id
		second, err := service.Create(ctx, input)
		require.NoError(t, err)

		assert.NotEqual(t, first.Id, second.Id)
	})

	t.Run("rejects missing fields without calling the store", func(t *testing.T) {
		service, store, repo, notifier, _ := setupServiceTest(t)
		input := sampleReservation()
		input.StaffName = "  "

		_, err := service.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrMissingField)
		assert.Equal(t, 0, repo.Calls())
		assert.Empty(t, store.Snapshot())
		assert.Len(t, notifier.errors, 1)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		service, _, _, _, _ := setupServiceTest(t)
		input := sampleReservation()
		input.Date = "10/03/2025"

		_, err := service.Create(context.Background(), input)

		assert.ErrorIs(t, err, ErrInvalidDate)
	})

	t.Run("store failure is reported and nothing is refreshed", func(t *testing.T) {
		service, store, repo, notifier, _ := setupServiceTest(t)
		repo.Err = errors.New("connection refused")

		_, err := service.Create(context.Background(), sampleReservation())

		assert.ErrorContains(t, err, "connection refused")
		assert.Empty(t, store.Snapshot())
		require.Len(t, notifier.errors, 1)
		assert.Contains(t, notifier.errors[0], "connection refused")
	})

	t.Run("publishes a created event after the refresh", func(t *testing.T) {
		service, store, _, _, bus := setupServiceTest(t)
		var seenCount int
		var seen []event_bus.ReservationChanged
		event_bus.SubscribeTyped(bus, event_bus.ReservationCreated, func(_ context.Context, e event_bus.EventT[event_bus.ReservationChanged]) error {
			seen = append(seen, e.Data)
			seenCount = len(store.Snapshot())
			return nil
		})

		created, err := service.Create(context.Background(), sampleReservation())
		require.NoError(t, err)

		require.Len(t, seen, 1)
		assert.Equal(t, created.Id.String(), seen[0].Id)
		assert.Equal(t, "Lee", seen[0].DeceasedName)
		assert.Equal(t, 1, seenCount)
	})
}

func TestService_Update(t *testing.T) {
	t.Run("replaces all mutable fields", func(t *testing.T) {
		service, store, _, _, _ := setupServiceTest(t)
		ctx := context.Background()
		created, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)

		changed := Reservation{
			Id:             created.Id,
			ContractorName: "Choi",
			DeceasedName:   "Jung",
			Date:           "2025-03-11",
			Time:           "14:00",
			StaffName:      "Han",
		}
		updated, err := service.Update(ctx, changed)
		require.NoError(t, err)

		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
		snapshot := store.Snapshot()
		require.Len(t, snapshot, 1)
		assert.Equal(t, "Choi", snapshot[0].ContractorName)
		assert.Equal(t, "Jung", snapshot[0].DeceasedName)
		assert.Equal(t, "2025-03-11", snapshot[0].Date)
		assert.Equal(t, "14:00", snapshot[0].Time)
		assert.Equal(t, "Han", snapshot[0].StaffName)
	})

	t.Run("requires an id", func(t *testing.T) {
		service, _, repo, _, _ := setupServiceTest(t)

		_, err := service.Update(context.Background(), sampleReservation())

		assert.ErrorIs(t, err, ErrMissingField)
		assert.Equal(t, 0, repo.Calls())
	})

	t.Run("unknown id", func(t *testing.T) {
		service, _, _, _, _ := setupServiceTest(t)
		input := sampleReservation()
		input.Id = uuid.New()

		_, err := service.Update(context.Background(), input)

		assert.ErrorIs(t, err, ErrReservationNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("declined confirmation issues no store call", func(t *testing.T) {
		service, store, repo, notifier, _ := setupServiceTest(t)
		ctx := context.Background()
		created, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)
		callsBefore := repo.Calls()

		deleted, err := service.Delete(ctx, created.Id, NeverConfirm)

		assert.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, callsBefore, repo.Calls())
		assert.Len(t, store.Snapshot(), 1)
		assert.Empty(t, notifier.errors)
	})

	t.Run("nil confirmer counts as declined", func(t *testing.T) {
		service, _, repo, _, _ := setupServiceTest(t)

		deleted, err := service.Delete(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, 0, repo.Calls())
	})

	t.Run("confirmed deletion removes the reservation", func(t *testing.T) {
		service, store, _, _, _ := setupServiceTest(t)
		ctx := context.Background()
		created, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)
		var asked uuid.UUID

		deleted, err := service.Delete(ctx, created.Id, ConfirmFunc(func(ctx context.Context, id uuid.UUID) bool {
			asked = id
			return true
		}))

		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, created.Id, asked)
		assert.Empty(t, store.Snapshot())
	})

	t.Run("store failure keeps the collection", func(t *testing.T) {
		service, store, repo, notifier, _ := setupServiceTest(t)
		ctx := context.Background()
		created, err := service.Create(ctx, sampleReservation())
		require.NoError(t, err)
		repo.Err = errors.New("timeout")

		deleted, err := service.Delete(ctx, created.Id, AlwaysConfirm)

		assert.Error(t, err)
		assert.False(t, deleted)
		assert.Len(t, store.Snapshot(), 1)
		assert.Len(t, notifier.errors, 1)
	})
}

// hangUpRepository commits every write and then cancels the caller's context,
// like a client disconnecting right after the INSERT. List honours the
// context the way the pgx pool does.
type hangUpRepository struct {
	*RepositoryStub
	cancel context.CancelFunc
}

func (r *hangUpRepository) List(ctx context.Context) ([]Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.RepositoryStub.List(ctx)
}

func (r *hangUpRepository) Store(ctx context.Context, res Reservation) (Reservation, error) {
	defer r.cancel()
	return r.RepositoryStub.Store(ctx, res)
}

func (r *hangUpRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.cancel()
	return r.RepositoryStub.Delete(ctx, id)
}

func TestService_WriteFollowUpSurvivesCancelledCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := &hangUpRepository{RepositoryStub: NewRepositoryStub(), cancel: cancel}
	notifier := &recordingNotifier{}
	bus := event_bus.NewEventBus()
	store := NewStore(repo, notifier, bus)
	service := NewService(repo, store, bus, notifier)
	var published []event_bus.EventType
	for _, eventType := range []event_bus.EventType{event_bus.ReservationCreated, event_bus.ReservationDeleted} {
		bus.Subscribe(eventType, func(ctx context.Context, e event_bus.Event) error {
			published = append(published, e.Type)
			return ctx.Err()
		})
	}

	created, err := service.Create(ctx, sampleReservation())
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.Len(t, store.Snapshot(), 1)
	assert.Empty(t, notifier.errors)

	deleteCtx, cancelDelete := context.WithCancel(context.Background())
	defer cancelDelete()
	repo.cancel = cancelDelete
	deleted, err := service.Delete(deleteCtx, created.Id, AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Empty(t, store.Snapshot())
	assert.Equal(t, []event_bus.EventType{event_bus.ReservationCreated, event_bus.ReservationDeleted}, published)
}

func TestService_FailureIsLoggedOnce(t *testing.T) {
	hook := logtest.NewGlobal()
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	repo := NewRepositoryStub()
	store := NewStore(repo, nil, nil)
	service := NewService(repo, store, nil, nil)
	repo.Err = errors.New("connection refused")

	_, err := service.Create(context.Background(), sampleReservation())
	require.Error(t, err)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, log.ErrorLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "Failed to save reservation")

	hook.Reset()
	require.Error(t, store.Refresh(context.Background()))

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Failed to load reservations.", hook.LastEntry().Message)
}
