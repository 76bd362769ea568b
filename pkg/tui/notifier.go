package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sangjo/reservation-desk/internal/event_bus"
	log "github.com/sirupsen/logrus"
)

type statusMsg struct {
	text    string
	isError bool
}

type refreshedMsg struct {
	count int
}

// StatusNotifier turns command outcomes and store refreshes into messages for
// the running console.
type StatusNotifier struct {
	events chan tea.Msg
}

func NewStatusNotifier() *StatusNotifier {
	return &StatusNotifier{events: make(chan tea.Msg, 32)}
}

func (n *StatusNotifier) Info(message string) {
	n.send(statusMsg{text: message})
}

func (n *StatusNotifier) Error(message string, err error) {
	n.send(statusMsg{text: message, isError: true})
}

// Subscribe forwards collection refreshes from the bus, including the ones the
// background scheduler triggers.
func (n *StatusNotifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped(bus, event_bus.ReservationsRefreshed, func(_ context.Context, e event_bus.EventT[event_bus.CollectionRefreshed]) error {
		n.send(refreshedMsg{count: e.Data.Count})
		return nil
	})
}

// send never blocks; the console only needs the latest messages.
func (n *StatusNotifier) send(msg tea.Msg) {
	select {
	case n.events <- msg:
	default:
		log.Debugf("console event dropped: %T", msg)
	}
}

func (n *StatusNotifier) wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.events
	}
}
