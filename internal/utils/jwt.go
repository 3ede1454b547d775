package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA-256 hashing for stored refresh tokens
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Verification failures.  ErrTokenExpired is reported only for tokens whose
// signature checked out but whose expiry has passed; every other problem is
// ErrTokenInvalid.  Callers surface both as unauthorized and keep the
// distinction internal.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload carried by both access and refresh tokens.  The two
// kinds share a shape and differ only in expiry horizon and in whether a
// server-side record exists (refresh tokens are additionally persisted by
// hash; access tokens are stateless and trusted until expiry).
type Claims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	StoreID uint64 `json:"store_id"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim into a user ID.  Returns zero when the
// subject is absent or not numeric.
func (c *Claims) UserID() uint64 {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// SignedToken is a serialized JWT together with its expiry instant.
type SignedToken struct {
	Token string
	Exp   time.Time
}

// IssueToken builds and signs an HS256 JWT for a user.  The same routine
// serves access and refresh issuance; the caller picks the TTL.  Claims are
// sub, email, role, store_id, iat and exp.  Stateless and safe for
// concurrent use.
func IssueToken(secret string, userID uint64, email, role string, storeID uint64, ttl time.Duration) (SignedToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := Claims{
		Email:   email,
		Role:    role,
		StoreID: storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a token signed by IssueToken.  It rejects
// any signing method other than HMAC so an attacker cannot downgrade to
// "none" or swap in an asymmetric key.
func VerifyToken(secret, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// HashToken returns the SHA-256 hash of a raw refresh token as a hex string.
// Only this digest is stored, so a leaked database cannot be used to mint
// sessions.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
