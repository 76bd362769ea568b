package reservation

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Notifier surfaces the outcome of a command to the person at the desk.
type Notifier interface {
	Info(message string)
	Error(message string, err error)
}

// LogNotifier is used where there is nobody to show a message to, e.g. the HTTP API
// which reports failures in the response instead.
type LogNotifier struct{}

func (LogNotifier) Info(message string) {
	log.Info(message)
}

func (LogNotifier) Error(message string, err error) {
	log.WithError(err).Error(message)
}

// Confirmer is asked before a reservation is deleted.
type Confirmer interface {
	Confirm(ctx context.Context, id uuid.UUID) bool
}

type ConfirmFunc func(ctx context.Context, id uuid.UUID) bool

func (f ConfirmFunc) Confirm(ctx context.Context, id uuid.UUID) bool {
	return f(ctx, id)
}

// AlwaysConfirm and NeverConfirm are fixed answers, mainly for callers that asked already.
var AlwaysConfirm = ConfirmFunc(func(context.Context, uuid.UUID) bool { return true })
var NeverConfirm = ConfirmFunc(func(context.Context, uuid.UUID) bool { return false })
