package model

import (
	"database/sql"
	"time"
)

// Category represents a row of the `categories` table.  Categories form a
// tree via ParentID; the API exposes the flat list with parent references
// and leaves tree assembly to clients.
type Category struct {
	ID        uint64        // categories.id
	StoreID   uint64        // categories.store_id
	ParentID  sql.NullInt64 // categories.parent_id (null for roots)
	Name      string        // categories.name
	Slug      string        // categories.slug
	Position  uint32        // categories.position (sort order among siblings)
	CreatedAt time.Time     // categories.created_at
	UpdatedAt time.Time     // categories.updated_at
}
