// Package repository implements data access over MySQL. Sentinel
// errors defined here let handlers translate failures into the HTTP
// taxonomy without inspecting driver-specific error strings themselves.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup by id matches no record.
// Handlers translate it into a 404 response; it always wins over a
// would-be 403 because existence is checked before ownership.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when a user insert or profile update hits
// the unique email index. Handlers translate it into a conflict
// response.
var ErrEmailExists = errors.New("email already exists")

// isDuplicate reports whether err is a MySQL duplicate-key violation
// (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
