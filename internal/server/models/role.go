// Package models defines server-side data models persisted in the database.
package models

import "fmt"

// Role is the closed set of account roles. The zero value is invalid.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleRegular Role = "regular"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleRegular:
		return true
	default:
		return false
	}
}

func (r Role) String() string { return string(r) }

// ParseRole converts a stored or user-supplied value into a Role.
// An empty string yields RoleRegular.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleRegular, nil
	}
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
