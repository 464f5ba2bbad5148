package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crickettrack/cricket-api/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	u := &model.User{
		Base:  model.Base{ID: uuid.New()},
		Email: "fan@example.com",
	}

	token, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", 1)
	verifier := NewJWTService("secret-b", 1)

	token, err := issuer.GenerateAccessToken(&model.User{Base: model.Base{ID: uuid.New()}})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestAccessTokenTTL(t *testing.T) {
	assert.Equal(t, 2*time.Hour, NewJWTService("test-secret", 2).AccessTokenTTL())

	// Non-positive expiry falls back to the 24h default.
	assert.Equal(t, 24*time.Hour, NewJWTService("test-secret", 0).AccessTokenTTL())
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewJWTService("test-secret", 1)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
