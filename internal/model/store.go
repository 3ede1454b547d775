package model

import (
	"database/sql"
	"time"
)

// Store represents an isolated catalog+user namespace.  One deployment may
// serve several stores; at the moment tenant resolution is a stub that picks
// the first row, but every query is already store-scoped so real routing by
// domain or header can be dropped in later.
type Store struct {
	ID        uint64         // stores.id
	Name      string         // stores.name
	Slug      string         // stores.slug
	Domain    sql.NullString // stores.domain (nullable, unused until domain routing lands)
	CreatedAt time.Time      // stores.created_at
	UpdatedAt time.Time      // stores.updated_at
}
