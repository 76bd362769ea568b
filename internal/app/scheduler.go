package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sangjo/reservation-desk/pkg/reservation"
	log "github.com/sirupsen/logrus"
)

const refreshTimeout = 30 * time.Second

// NewRefreshScheduler re-reads the reservation collection on schedule, picking up
// edits made by other desks. An empty schedule disables it and returns nil.
func NewRefreshScheduler(schedule string, store *reservation.Store) (*cron.Cron, error) {
	if schedule == "" {
		log.Info("Background refresh disabled")
		return nil, nil
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := store.Refresh(ctx); err != nil {
			log.Warnf("scheduled refresh failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	log.Infof("Background refresh scheduled: %s", schedule)
	return c, nil
}
