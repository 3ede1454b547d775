package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestIssueAndVerifyToken(t *testing.T) {
	signed, err := IssueToken(testSecret, 42, "jane@example.com", "customer", 7, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, signed.Token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), signed.Exp, 5*time.Second)

	claims, err := VerifyToken(testSecret, signed.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID())
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
	assert.Equal(t, uint64(7), claims.StoreID)
}

func TestVerifyTokenExpired(t *testing.T) {
	signed, err := IssueToken(testSecret, 1, "a@example.com", "customer", 1, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, signed.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	signed, err := IssueToken(testSecret, 1, "a@example.com", "customer", 1, time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken("another-secret", signed.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyTokenMalformed(t *testing.T) {
	_, err := VerifyToken(testSecret, "not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserIDNonNumericSubject(t *testing.T) {
	c := &Claims{}
	c.Subject = "abc"
	assert.Equal(t, uint64(0), c.UserID())
}

func TestHashToken(t *testing.T) {
	h := HashToken("some-refresh-token")
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashToken("some-refresh-token"))
	assert.NotEqual(t, h, HashToken("another-token"))
}
