package kafka

import (
	"encoding/json"
	"time"
)

// Association event types
const (
	EventAssociationCreated       = "association.created"
	EventAssociationStatusChanged = "association.status_changed"
)

// Association event sources
const (
	SourceOfflineBase = "offline-base"
	SourceAPI         = "api"
)

// AssociationEvent is the payload published for association lifecycle changes
type AssociationEvent struct {
	EventType     string    `json:"event_type"`
	CustomerID    int64     `json:"customer_id"`
	ProductID     int64     `json:"product_id"`
	CurrentStatus string    `json:"current_status"`
	CreatedAt     time.Time `json:"created_at"`
	Source        string    `json:"source"`
	EmittedAt     time.Time `json:"emitted_at"`
}

// ToJSON serializes the event
func (e *AssociationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
