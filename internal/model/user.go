package model

import (
	"database/sql"
	"time"
)

// Role constants mirror the values stored in users.role.  Roles are carried
// in access tokens for downstream authorization; this service issues them
// but does not yet enforce per-role permissions.
const (
	RoleSuperAdmin = "super_admin"
	RoleStoreAdmin = "store_admin"
	RoleStaff      = "staff"
	RoleCustomer   = "customer"
)

// User represents a row of the `users` table.  Emails are unique per store,
// not globally, so lookups always carry the store ID.  The password is never
// stored in plain form; PasswordHash holds the bcrypt digest.
//
// Fields:
//  ID           – primary key identifier.
//  StoreID      – store (tenant) the account belongs to.
//  Email        – normalized email, unique within the store.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – optional given name.
//  LastName     – optional family name.
//  Role         – one of the Role* constants.
//  IsActive     – whether the account may log in.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64         // users.id
	StoreID      uint64         // users.store_id
	Email        string         // users.email
	PasswordHash string         // users.password_hash
	FirstName    sql.NullString // users.first_name (nullable)
	LastName     sql.NullString // users.last_name (nullable)
	Role         string         // users.role
	IsActive     bool           // users.is_active
	CreatedAt    time.Time      // users.created_at
	UpdatedAt    time.Time      // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The raw token
// never touches the database; only its SHA-256 hex digest is stored.  Rows
// are deleted on logout and on rotation, and in bulk on password-sensitive
// events, so an absent row is indistinguishable from a revoked one.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64    // refresh_tokens.id
	UserID    uint64    // refresh_tokens.user_id
	TokenHash string    // refresh_tokens.token_hash
	ExpiresAt time.Time // refresh_tokens.expires_at
	CreatedAt time.Time // refresh_tokens.created_at
}
