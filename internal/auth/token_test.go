package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)}
	tm := NewTokenManager("session-secret", 0)
	tm.SetClock(clock.Now)

	user := &domain.User{ID: "u-1", Role: domain.RoleTechnician, Username: "tess"}
	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(24*time.Hour), expiresAt)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "u-1", Role: domain.RoleTechnician, Username: "tess"}, claims.Actor())

	clock.Advance(25 * time.Hour)
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSessionTokenRejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("session-secret", time.Hour)

	other := NewTokenManager("other-secret", time.Hour)
	token, _, err := other.GenerateToken(&domain.User{ID: "u-1", Role: domain.RoleAdmin, Username: "root"})
	require.NoError(t, err)
	_, err = tm.ParseToken(token)
	assert.Error(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":   "u-1",
		"role": "admin",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.ParseToken(unsigned)
	assert.Error(t, err)
}

func TestSessionTokenRejectsVerificationToken(t *testing.T) {
	tm := NewTokenManager("session-secret", time.Hour)
	verification := NewVerificationTokens("session-secret", time.Hour, NewBcryptHasher(4))

	token, _, _, err := verification.Issue("alice@x.com", PurposeRegistration)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}
