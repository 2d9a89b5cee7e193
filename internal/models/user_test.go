package models_test

import (
	"testing"

	"pairlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Aziz", (&models.User{FirstName: "Aziz", Username: "aziz01"}).DisplayName())
	assert.Equal(t, "@aziz01", (&models.User{Username: "aziz01"}).DisplayName())
	assert.Equal(t, "Anonymous", (&models.User{}).DisplayName())
}
