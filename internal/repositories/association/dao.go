package association

import (
	"time"

	"github.com/kelmerpassos/ipet-api/pkg/database"
	"github.com/kelmerpassos/ipet-api/pkg/models"
)

const associationsTable = "inst_product_customer"

// AssociationRow represents an association row in the database
type AssociationRow struct {
	ID            int64     `db:"id" fieldopt:"omitempty"`
	CustomerID    int64     `db:"customer_id"`
	ProductID     int64     `db:"product_id"`
	CurrentStatus string    `db:"current_status"`
	CreatedAt     time.Time `db:"created_at"`
}

var associationStruct = database.NewStruct(new(AssociationRow))

// FromAssociation converts an Association model to an AssociationRow
func FromAssociation(assoc *models.Association) *AssociationRow {
	return &AssociationRow{
		ID:            assoc.ID,
		CustomerID:    assoc.CustomerID,
		ProductID:     assoc.ProductID,
		CurrentStatus: string(assoc.CurrentStatus),
		CreatedAt:     assoc.CreatedAt,
	}
}

// ToAssociation converts an AssociationRow to an Association model
func ToAssociation(row *AssociationRow) *models.Association {
	return &models.Association{
		ID:            row.ID,
		CustomerID:    row.CustomerID,
		ProductID:     row.ProductID,
		CurrentStatus: models.AssociationStatus(row.CurrentStatus),
		CreatedAt:     row.CreatedAt,
	}
}

// Now returns the current time in UTC
func Now() time.Time {
	return time.Now().UTC()
}
