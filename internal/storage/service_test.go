package storage_test

import (
	"testing"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/storage"

	"github.com/stretchr/testify/assert"
)

func TestNewServiceUsesConfiguredRetentionFactor(t *testing.T) {
	svc := storage.NewService(nil, nil)

	assert.Equal(t, config.UserRetentionFactor, svc.UserRetentionFactor)
	assert.NotNil(t, svc.Ctx)
}
