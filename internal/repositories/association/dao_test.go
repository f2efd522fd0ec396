package association

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kelmerpassos/ipet-api/pkg/models"
)

func TestAssociationRoundTrip(t *testing.T) {
	createdAt := time.Date(2023, 6, 15, 14, 30, 0, 0, time.UTC)
	assoc := &models.Association{
		ID:            3,
		CustomerID:    1,
		ProductID:     2,
		CurrentStatus: models.StatusBlocked,
		CreatedAt:     createdAt,
	}

	row := FromAssociation(assoc)
	assert.Equal(t, "BLOCKED", row.CurrentStatus)

	back := ToAssociation(row)
	assert.Equal(t, assoc, back)
}

func TestFromAssociationKeepsZeroID(t *testing.T) {
	row := FromAssociation(&models.Association{
		CustomerID:    1,
		ProductID:     2,
		CurrentStatus: models.StatusActive,
	})

	assert.Zero(t, row.ID, "unset id must stay zero so inserts omit it")
}
