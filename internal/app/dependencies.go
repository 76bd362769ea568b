package app

import (
	"context"
	"time"

	"github.com/sangjo/reservation-desk/internal/broker"
	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/ics"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	"github.com/sangjo/reservation-desk/pkg/viewmodel"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	Location *time.Location
	Slots    []string
	EventBus *event_bus.EventBus

	ReservationRepo    reservation.Repository
	ReservationStore   *reservation.Store
	ReservationService *reservation.Service
	ReservationHandler *reservation.Handler

	ViewHandler *viewmodel.Handler
	FeedHandler *ics.Handler

	// Publisher is nil when no broker is configured.
	Publisher *broker.Publisher

	// Ping checks the storage backend for the health endpoint; nil means always healthy.
	Ping func(ctx context.Context) error
}

// BuildDependencies initializes and wires all application services and handlers.
// notifier receives the user-facing outcome of every command.
func BuildDependencies(repo reservation.Repository, cfg config.Application, clock utils.Clock, notifier reservation.Notifier) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = clock
	deps.Location = cfg.Location()
	deps.Slots = cfg.Slots
	deps.EventBus = event_bus.NewEventBus()

	deps.ReservationRepo = repo
	deps.ReservationStore = reservation.NewStore(deps.ReservationRepo, notifier, deps.EventBus)
	deps.ReservationService = reservation.NewService(deps.ReservationRepo, deps.ReservationStore, deps.EventBus, notifier)
	deps.ReservationHandler = reservation.NewHandler(deps.ReservationService, deps.ReservationStore)

	deps.ViewHandler = viewmodel.NewHandler(deps.ReservationStore, deps.Clock, deps.Location, deps.Slots)
	deps.FeedHandler = ics.NewHandler(deps.ReservationStore, deps.Clock, deps.Location)

	if cfg.Broker.Url != "" {
		deps.Publisher = broker.NewPublisher(cfg.Broker)
		deps.Publisher.Subscribe(deps.EventBus)
	}

	return deps
}
