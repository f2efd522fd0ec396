package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssociationStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusBlocked.Valid())
	assert.True(t, StatusRemoved.Valid())

	assert.False(t, AssociationStatus("").Valid())
	assert.False(t, AssociationStatus("active").Valid())
	assert.False(t, AssociationStatus("DELETED").Valid())
}
