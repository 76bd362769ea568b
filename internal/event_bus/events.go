package event_bus

const (
	ReservationCreated    EventType = "reservation.created"
	ReservationUpdated    EventType = "reservation.updated"
	ReservationDeleted    EventType = "reservation.deleted"
	ReservationsRefreshed EventType = "reservation.refreshed"
)

// ReservationChanged is published after a create, update or delete reached the store.
// For deletions only Id is set.
type ReservationChanged struct {
	Id             string
	ContractorName string
	DeceasedName   string
	Date           string
	Time           string
	StaffName      string
}

// CollectionRefreshed is published after the in-memory collection was replaced.
type CollectionRefreshed struct {
	Count int
}
