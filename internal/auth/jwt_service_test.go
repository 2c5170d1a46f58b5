package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayledger/internal/access"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateToken("host-42", access.RoleHost, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, access.RoleHost, claims.Role)
	assert.Equal(t, "host-42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, err := svc.GenerateToken("x", access.Role("owner"), time.Minute)
	assert.ErrorIs(t, err, ErrUnknownRole)

	other, err := NewJWTService("other-secret").GenerateToken("x", access.RoleAdmin, time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(other)
	assert.Error(t, err)

	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := svc.GenerateToken("x", access.RoleGuest, time.Minute)
	require.NoError(t, err)
	_, err = NewJWTService("test-secret").ValidateToken(expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestJWTService_RejectsUnknownRoleClaim(t *testing.T) {
	svc := NewJWTService("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: "owner",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := token.SignedString(svc.Secret())
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestClaimsFromToken(t *testing.T) {
	_, err := ClaimsFromToken(nil)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ClaimsFromToken(&jwt.Token{Valid: true, Claims: jwt.MapClaims{}})
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ClaimsFromToken(&jwt.Token{Valid: true, Claims: &Claims{Role: access.RoleGuest}})
	require.NoError(t, err)
	assert.Equal(t, access.RoleGuest, claims.Role)
}
