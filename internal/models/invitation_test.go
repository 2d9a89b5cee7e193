package models_test

import (
	"reflect"
	"strings"
	"testing"

	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

// Two racing invitation creates for the same pair must collapse to one row.
// The storage transaction serializes them, and the partial unique index on
// the pending pair is the database-level backstop; both columns must carry
// the constraint or the migration silently drops it.
func TestInvitationDeclaresPendingPairUniqueIndex(t *testing.T) {
	typ := reflect.TypeOf(models.Invitation{})

	for _, name := range []string{"SenderID", "ReceiverID"} {
		field, ok := typ.FieldByName(name)
		assert.True(t, ok, "field %s", name)

		tag := field.Tag.Get("gorm")
		assert.Contains(t, tag, "uniqueIndex:udx_invitation_pending", "field %s", name)
		assert.True(t, strings.Contains(tag, "where:status = 'pending'"),
			"field %s must scope the unique index to pending rows", name)
	}
}

func TestInvitationStatusValues(t *testing.T) {
	assert.Equal(t, models.InvitationStatus("pending"), models.InvitationPending)
	assert.Equal(t, models.InvitationStatus("accepted"), models.InvitationAccepted)
	assert.Equal(t, models.InvitationStatus("rejected"), models.InvitationRejected)
}
