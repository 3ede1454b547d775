package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/iliyamo/storefront-api/internal/config"
	"github.com/iliyamo/storefront-api/internal/model"
	"github.com/iliyamo/storefront-api/internal/repository"
	"github.com/iliyamo/storefront-api/internal/utils"
)

// Refresh token lifecycle: issued -> (rotated-out | revoked | expired) ->
// absent.  An unknown hash is always answered with the same unauthorized
// error as a revoked one; callers cannot learn which.

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLen = 8
	maxPasswordLen = 128
)

// TokenPair bundles a freshly issued access/refresh pair.
type TokenPair struct {
	Access  utils.SignedToken
	Refresh utils.SignedToken
}

// AuthService orchestrates registration, login, refresh rotation and
// logout over the user and token repositories.
type AuthService struct {
	cfg    config.Config
	users  *repository.UserRepo
	tokens *repository.TokenRepo
}

func NewAuthService(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *AuthService {
	return &AuthService{cfg: cfg, users: users, tokens: tokens}
}

// Register validates the request, creates the account and returns the
// public profile together with a token pair.  A duplicate email within the
// store reports a conflict and creates no row.
func (s *AuthService) Register(ctx context.Context, storeID uint64, email, password string, firstName, lastName *string) (model.User, TokenPair, error) {
	var details []FieldError
	if !emailRx.MatchString(email) {
		details = append(details, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		details = append(details, FieldError{Field: "password", Message: "must be between 8 and 128 characters"})
	}
	if len(details) > 0 {
		return model.User{}, TokenPair{}, Validation(details...)
	}

	hash, err := utils.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return model.User{}, TokenPair{}, Internal(err)
	}
	uid, err := s.users.Create(ctx, storeID, email, hash, firstName, lastName)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, TokenPair{}, Conflict("email already registered")
		}
		return model.User{}, TokenPair{}, Internal(err)
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return model.User{}, TokenPair{}, Internal(err)
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Login verifies credentials and issues a fresh pair.  Unknown email and
// wrong password produce the same unauthorized answer, and the dummy bcrypt
// comparison keeps the unknown-email path from returning measurably faster.
// In single-session mode every previously issued refresh token is removed
// before the new pair is persisted.
func (s *AuthService) Login(ctx context.Context, storeID uint64, email, password string) (model.User, TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, storeID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.VerifyPassword(utils.DummyPasswordHash, password)
			return model.User{}, TokenPair{}, Unauthorized("invalid credentials")
		}
		return model.User{}, TokenPair{}, Internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, TokenPair{}, Unauthorized("invalid credentials")
	}
	if !u.IsActive {
		return model.User{}, TokenPair{}, Forbidden("account is disabled")
	}
	if s.cfg.SingleSession {
		if err := s.tokens.DeleteAllForUser(ctx, u.ID); err != nil {
			return model.User{}, TokenPair{}, Internal(err)
		}
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return model.User{}, TokenPair{}, err
	}
	return u, pair, nil
}

// Refresh rotates a refresh token.  The new token is persisted before the
// old one is deleted: if the process dies between the two writes the user
// holds one extra live token rather than zero, so a crash can never lock
// them out.
func (s *AuthService) Refresh(ctx context.Context, raw string) (TokenPair, error) {
	if _, err := utils.VerifyToken(s.cfg.JWTSecret, raw); err != nil {
		// Expired and malformed both surface as unauthorized.
		return TokenPair{}, Unauthorized("invalid refresh token")
	}
	hash := utils.HashToken(raw)
	tok, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, Unauthorized("invalid refresh token")
		}
		return TokenPair{}, Internal(err)
	}
	if time.Now().UTC().After(tok.ExpiresAt) {
		// Ledger expiry can lag behind the JWT exp claim under clock skew;
		// the ledger wins.
		if err := s.tokens.DeleteByHash(ctx, hash); err != nil {
			return TokenPair{}, Internal(err)
		}
		return TokenPair{}, Unauthorized("invalid refresh token")
	}
	u, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, Unauthorized("invalid refresh token")
		}
		return TokenPair{}, Internal(err)
	}
	if !u.IsActive {
		return TokenPair{}, Forbidden("account is disabled")
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return TokenPair{}, err
	}
	if err := s.tokens.DeleteByHash(ctx, hash); err != nil {
		return TokenPair{}, Internal(err)
	}
	return pair, nil
}

// RefreshAccess issues a new access token from a refresh token without
// rotating it.  The ledger is still consulted, so a logged-out token cannot
// mint access tokens even before its JWT expiry.
func (s *AuthService) RefreshAccess(ctx context.Context, raw string) (utils.SignedToken, error) {
	if _, err := utils.VerifyToken(s.cfg.JWTSecret, raw); err != nil {
		return utils.SignedToken{}, Unauthorized("invalid refresh token")
	}
	tok, err := s.tokens.FindByHash(ctx, utils.HashToken(raw))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.SignedToken{}, Unauthorized("invalid refresh token")
		}
		return utils.SignedToken{}, Internal(err)
	}
	if time.Now().UTC().After(tok.ExpiresAt) {
		return utils.SignedToken{}, Unauthorized("invalid refresh token")
	}
	u, err := s.users.GetByID(ctx, tok.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.SignedToken{}, Unauthorized("invalid refresh token")
		}
		return utils.SignedToken{}, Internal(err)
	}
	if !u.IsActive {
		return utils.SignedToken{}, Forbidden("account is disabled")
	}
	access, err := utils.IssueToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, u.StoreID, s.cfg.AccessTTL)
	if err != nil {
		return utils.SignedToken{}, Internal(err)
	}
	return access, nil
}

// Logout deletes the refresh token's ledger row.  Malformed tokens are
// dropped before any storage I/O, and deleting an absent row is fine, so
// logout always succeeds.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if _, err := utils.VerifyToken(s.cfg.JWTSecret, raw); err != nil {
		return nil
	}
	if err := s.tokens.DeleteByHash(ctx, utils.HashToken(raw)); err != nil {
		return Internal(err)
	}
	return nil
}

// GetUser loads a user by ID for the profile endpoint.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.User{}, NotFound("user not found")
		}
		return model.User{}, Internal(err)
	}
	return u, nil
}

// issuePair signs an access/refresh pair and persists the refresh hash.
func (s *AuthService) issuePair(ctx context.Context, u model.User) (TokenPair, error) {
	access, err := utils.IssueToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, u.StoreID, s.cfg.AccessTTL)
	if err != nil {
		return TokenPair{}, Internal(err)
	}
	refresh, err := utils.IssueToken(s.cfg.JWTSecret, u.ID, u.Email, u.Role, u.StoreID, s.cfg.RefreshTTL)
	if err != nil {
		return TokenPair{}, Internal(err)
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashToken(refresh.Token), refresh.Exp); err != nil {
		return TokenPair{}, Internal(err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
