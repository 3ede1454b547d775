// Package repository provides database/sql access to the storefront schema.
// Sentinel errors declared here let handlers and services distinguish
// failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row.  Repositories map
// sql.ErrNoRows to this before returning.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by UserRepo.Create when the (store, email) pair
// already exists.
var ErrEmailExists = errors.New("email already exists")

// ErrSlugExists is returned when inserting a product or category whose slug
// collides within the store.
var ErrSlugExists = errors.New("slug already exists")

// mysqlDuplicateEntry is the MySQL error number for unique key violations.
const mysqlDuplicateEntry = "1062"
