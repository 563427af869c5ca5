package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager([]byte("test-secret"), time.Hour)
	userID := uuid.New()

	token, err := m.GenerateToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	m := NewJWTManager([]byte("secret-one"), time.Hour)
	other := NewJWTManager([]byte("secret-two"), time.Hour)

	token, err := m.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager([]byte("test-secret"), -time.Minute)

	token, err := m.GenerateToken(uuid.New())
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.Error(t, err)
}

func TestJWTManager_Garbage(t *testing.T) {
	m := NewJWTManager([]byte("test-secret"), time.Hour)

	_, err := m.ParseToken("not.a.token")
	assert.Error(t, err)
}
