package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/storefront-api/internal/repository"
)

func TestFindByHashReturnsStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewTokenRepo(db)

	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	created := time.Now().UTC().Truncate(time.Second)
	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens WHERE token_hash=").
		WithArgs("abc123").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}).
			AddRow(7, 42, exp, created))

	tok, err := repo.FindByHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint64(7), tok.ID)
	assert.Equal(t, uint64(42), tok.UserID)
	assert.Equal(t, "abc123", tok.TokenHash)
	assert.Equal(t, exp, tok.ExpiresAt)
	assert.Equal(t, created, tok.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByHashMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repository.NewTokenRepo(db)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens WHERE token_hash=").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at"}))

	_, err = repo.FindByHash(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
