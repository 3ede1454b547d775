package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password", bcrypt.MinCost)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, VerifyPassword(hash, "s3cret-password"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
}

func TestDummyPasswordHashIsWellFormed(t *testing.T) {
	// The dummy digest must stay a parseable bcrypt hash so the login
	// timing equalization actually performs a full comparison.
	cost, err := bcrypt.Cost([]byte(DummyPasswordHash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, bcrypt.MinCost)
	assert.False(t, VerifyPassword(DummyPasswordHash, "anything"))
}
