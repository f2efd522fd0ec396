package models

import "time"

// AssociationStatus is the lifecycle status of a customer/product association.
type AssociationStatus string

const (
	StatusActive  AssociationStatus = "ACTIVE"
	StatusBlocked AssociationStatus = "BLOCKED"
	StatusRemoved AssociationStatus = "REMOVED"
)

// Valid reports whether s is one of the known statuses.
func (s AssociationStatus) Valid() bool {
	switch s {
	case StatusActive, StatusBlocked, StatusRemoved:
		return true
	}
	return false
}

// Association links one customer to one product with a status and the
// creation time carried over from its source record.
type Association struct {
	ID            int64             `json:"id"`
	CustomerID    int64             `json:"customerId"`
	ProductID     int64             `json:"productId"`
	CurrentStatus AssociationStatus `json:"currentStatus"`
	CreatedAt     time.Time         `json:"createdAt"`
}
