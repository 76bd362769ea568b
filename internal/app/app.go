package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sangjo/reservation-desk/internal/config"
	"github.com/sangjo/reservation-desk/internal/database"
	"github.com/sangjo/reservation-desk/internal/utils"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// OpenDesk connects to the database, applies migrations, wires the services and
// loads the collection once. The returned close function releases the pool.
func OpenDesk(ctx context.Context, cfg config.Application, notifier reservation.Notifier) (*Dependencies, func(), error) {
	pool, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(cfg.Database); err != nil {
		pool.Close()
		return nil, nil, err
	}

	deps := BuildDependencies(reservation.NewRepository(pool), cfg, utils.SystemClock{}, notifier)
	deps.Ping = pool.Ping

	// a failed first load leaves an empty collection; the scheduler retries
	_ = deps.ReservationStore.Refresh(ctx)

	return deps, pool.Close, nil
}

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	deps      *Dependencies
	closeDB   func()
	router    *mux.Router
	srv       *http.Server
	scheduler *cron.Cron
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, cfg config.Application) (*Application, error) {
	deps, closeDB, err := OpenDesk(ctx, cfg, reservation.LogNotifier{})
	if err != nil {
		return nil, err
	}

	scheduler, err := NewRefreshScheduler(cfg.Refresh.Schedule, deps.ReservationStore)
	if err != nil {
		closeDB()
		return nil, err
	}

	r := NewRouter(deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, deps: deps, closeDB: closeDB, router: r, srv: srv, scheduler: scheduler}, nil
}

// NewRouter builds the middleware chain and routes for deps.
func NewRouter(deps *Dependencies) *mux.Router {
	r := mux.NewRouter()
	SetupMiddleware(r)
	RegisterRoutes(r, deps)
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.closeDB()

	if a.scheduler != nil {
		a.scheduler.Start()
		defer func() { <-a.scheduler.Stop().Done() }()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		serveErr <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
