// Package repository holds the MySQL data access layer. The sentinel values
// below let the service and handler layers tell failure scenarios apart
// without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when no row matches the lookup key.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with the unique email
// index. The store is the final authority on uniqueness.
var ErrEmailExists = errors.New("email already exists")
