package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID(uuid.NewString()))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}

func TestIsValidVisitorName(t *testing.T) {
	assert.True(t, IsValidVisitorName("Jamie"))
	assert.True(t, IsValidVisitorName("  Jamie  "))
	assert.True(t, IsValidVisitorName("Ana"))
	assert.False(t, IsValidVisitorName("Jo"))
	assert.False(t, IsValidVisitorName("   a   "))
	assert.False(t, IsValidVisitorName(""))
}
