package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/storefront-api/internal/config"
	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/service"
	"github.com/iliyamo/storefront-api/internal/utils"
)

const authTestSecret = "auth-service-test-secret"

var userCols = []string{
	"id", "store_id", "email", "password_hash",
	"first_name", "last_name", "role", "is_active", "created_at", "updated_at",
}

func newAuthService(t *testing.T, singleSession bool) (*service.AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		JWTSecret:     authTestSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		BcryptCost:    bcrypt.MinCost,
		SingleSession: singleSession,
	}
	svc := service.NewAuthService(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return svc, mock
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := utils.HashPassword(plain, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func userRow(id uint64, email, passwordHash, role string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userCols).
		AddRow(id, 1, email, passwordHash, nil, nil, role, active, now, now)
}

func assertKind(t *testing.T, err error, kind service.Kind) {
	t.Helper()
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, kind, svcErr.Kind)
}

func TestRegisterValidation(t *testing.T) {
	svc, mock := newAuthService(t, true)

	_, _, err := svc.Register(context.Background(), 1, "not-an-email", "short", nil, nil)
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, service.KindValidation, svcErr.Kind)
	assert.Len(t, svcErr.Details, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock := newAuthService(t, true)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062: Duplicate entry 'jane@example.com'"))

	_, _, err := svc.Register(context.Background(), 1, "jane@example.com", "password123", nil, nil)
	assertKind(t, err, service.KindConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterIssuesPair(t *testing.T) {
	svc, mock := newAuthService(t, true)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRow(7, "jane@example.com", mustHash(t, "password123"), "customer", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	u, pair, err := svc.Register(context.Background(), 1, "jane@example.com", "password123", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)

	claims, err := utils.VerifyToken(authTestSecret, pair.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID())
	_, err = utils.VerifyToken(authTestSecret, pair.Refresh.Token)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, mock := newAuthService(t, true)

	mock.ExpectQuery("FROM users WHERE store_id=").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, _, err := svc.Login(context.Background(), 1, "nobody@example.com", "whatever1")
	assertKind(t, err, service.KindUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newAuthService(t, true)

	mock.ExpectQuery("FROM users WHERE store_id=").
		WillReturnRows(userRow(3, "jane@example.com", mustHash(t, "correct-pw"), "customer", true))

	_, _, err := svc.Login(context.Background(), 1, "jane@example.com", "wrong-pw")
	assertKind(t, err, service.KindUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, mock := newAuthService(t, true)

	mock.ExpectQuery("FROM users WHERE store_id=").
		WillReturnRows(userRow(3, "jane@example.com", mustHash(t, "correct-pw"), "customer", false))

	_, _, err := svc.Login(context.Background(), 1, "jane@example.com", "correct-pw")
	assertKind(t, err, service.KindForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginSingleSessionDeletesBeforeIssuing(t *testing.T) {
	svc, mock := newAuthService(t, true)

	// Expectations are ordered: the bulk delete must land before the new
	// refresh token row is written.
	mock.ExpectQuery("FROM users WHERE store_id=").
		WillReturnRows(userRow(3, "jane@example.com", mustHash(t, "correct-pw"), "customer", true))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE user_id=").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, pair, err := svc.Login(context.Background(), 1, "jane@example.com", "correct-pw")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Refresh.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginMultiDeviceKeepsOldTokens(t *testing.T) {
	svc, mock := newAuthService(t, false)

	mock.ExpectQuery("FROM users WHERE store_id=").
		WillReturnRows(userRow(3, "jane@example.com", mustHash(t, "correct-pw"), "customer", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, _, err := svc.Login(context.Background(), 1, "jane@example.com", "correct-pw")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func issueRefresh(t *testing.T, userID uint64, ttl time.Duration) string {
	t.Helper()
	signed, err := utils.IssueToken(authTestSecret, userID, "jane@example.com", "customer", 1, ttl)
	require.NoError(t, err)
	return signed.Token
}

var tokenCols = []string{"id", "user_id", "expires_at", "created_at"}

func tokenRow(userID uint64, exp time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(tokenCols).AddRow(1, userID, exp, time.Now())
}

func TestRefreshRotatesCreateBeforeDelete(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	// Ordered: the replacement row is inserted before the old hash is
	// deleted, so a crash in between can only leave an extra live token.
	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens").
		WillReturnRows(tokenRow(5, time.Now().Add(time.Hour)))
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRow(5, "jane@example.com", mustHash(t, "pw-irrelevant"), "customer", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	pair, err := svc.Refresh(context.Background(), raw)
	require.NoError(t, err)
	assert.NotEqual(t, raw, pair.Refresh.Token)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshInsertFailureLeavesOldToken(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens").
		WillReturnRows(tokenRow(5, time.Now().Add(time.Hour)))
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRow(5, "jane@example.com", mustHash(t, "pw-irrelevant"), "customer", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnError(errors.New("disk full"))

	_, err := svc.Refresh(context.Background(), raw)
	assertKind(t, err, service.KindInternal)
	// No delete was expected: the presented token must survive the failure.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshUnknownHash(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows(tokenCols))

	_, err := svc.Refresh(context.Background(), raw)
	assertKind(t, err, service.KindUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshLedgerExpiryWins(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens").
		WillReturnRows(tokenRow(5, time.Now().Add(-time.Minute)))
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.Refresh(context.Background(), raw)
	assertKind(t, err, service.KindUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshMalformedToken(t *testing.T) {
	svc, mock := newAuthService(t, true)

	_, err := svc.Refresh(context.Background(), "garbage")
	assertKind(t, err, service.KindUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshAccessDoesNotRotate(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	mock.ExpectQuery("SELECT id, user_id, expires_at, created_at FROM refresh_tokens").
		WillReturnRows(tokenRow(5, time.Now().Add(time.Hour)))
	mock.ExpectQuery("FROM users WHERE id=").
		WillReturnRows(userRow(5, "jane@example.com", mustHash(t, "pw-irrelevant"), "customer", true))

	access, err := svc.RefreshAccess(context.Background(), raw)
	require.NoError(t, err)
	claims, err := utils.VerifyToken(authTestSecret, access.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), claims.UserID())
	// No insert or delete expectations: the refresh token is untouched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutMalformedSkipsStorage(t *testing.T) {
	svc, mock := newAuthService(t, true)

	require.NoError(t, svc.Logout(context.Background(), "garbage"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutDeletesHash(t *testing.T) {
	svc, mock := newAuthService(t, true)
	raw := issueRefresh(t, 5, time.Hour)

	mock.ExpectExec("DELETE FROM refresh_tokens WHERE token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.Logout(context.Background(), raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}
