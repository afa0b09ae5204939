package auth

import (
	"testing"
	"time"

	"github.com/rmfarias/fleetreserve/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateAndParse(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	token, err := manager.Generate(&domain.User{
		ID:    7,
		Email: "ana@example.com",
		Role:  domain.UserRoleAdmin,
	})
	assert.NoError(t, err)

	claims, err := manager.Parse(token)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParse_wrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Generate(&domain.User{ID: 1})
	assert.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_expired(t *testing.T) {
	manager := NewManager("test-secret", -time.Minute)

	token, err := manager.Generate(&domain.User{ID: 1})
	assert.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_garbage(t *testing.T) {
	_, err := NewManager("test-secret", time.Hour).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
