package token

import (
	"testing"
	"time"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "token-test-secret-at-least-32-chars!!"

var testUser = &domain.User{
	ID:    "7f9c24e5-1a2b-4c3d-9e8f-0a1b2c3d4e5f",
	Email: "shopper@example.com",
	Role:  domain.RoleUser,
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	c := NewCodec([]byte(testSecret), 24*time.Hour)

	raw, err := c.Issue(testUser)
	require.NoError(t, err)

	claims, err := c.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, testUser.ID, claims.Subject)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestVerify_ExpiredToken(t *testing.T) {
	c := NewCodec([]byte(testSecret), -time.Hour)

	raw, err := c.Issue(testUser)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_WrongKey(t *testing.T) {
	issuer := NewCodec([]byte("a-completely-different-32-char-key!"), time.Hour)
	verifier := NewCodec([]byte(testSecret), time.Hour)

	raw, err := issuer.Issue(testUser)
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_Garbage(t *testing.T) {
	c := NewCodec([]byte(testSecret), time.Hour)

	for _, raw := range []string{"", "not.a.jwt", "eyJhbGciOiJIUzI1NiJ9"} {
		_, err := c.Verify(raw)
		assert.ErrorIs(t, err, domain.ErrTokenInvalid, "input %q", raw)
	}
}

func TestVerify_RejectsUnsignedToken(t *testing.T) {
	c := NewCodec([]byte(testSecret), time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": testUser.ID})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestVerify_MissingSubject(t *testing.T) {
	c := NewCodec([]byte(testSecret), time.Hour)

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": testUser.Email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	raw, err := noSub.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = c.Verify(raw)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
