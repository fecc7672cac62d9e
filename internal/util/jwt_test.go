package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserToken_Roundtrip(t *testing.T) {
	token, err := IssueUserToken("secret", "user-1", time.Hour)
	require.NoError(t, err)

	userID, err := ParseUserToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParseUserToken_WrongSecret(t *testing.T) {
	token, err := IssueUserToken("secret", "user-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseUserToken("different-secret", token)
	assert.Error(t, err)
}

func TestParseUserToken_Expired(t *testing.T) {
	token, err := IssueUserToken("secret", "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = ParseUserToken("secret", token)
	assert.Error(t, err)
}

func TestParseUserToken_Garbage(t *testing.T) {
	_, err := ParseUserToken("secret", "not.a.token")
	assert.Error(t, err)

	_, err = ParseUserToken("secret", "")
	assert.Error(t, err)
}
