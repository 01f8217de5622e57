package models

import "strings"

// Role is the closed set of console roles. The upstream platform stores role
// names as free text; labels are normalised into this enum exactly once, at
// login, and only enum values are compared afterwards.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ResolveRole maps an upstream free-text role label onto the console role
// enum. A label containing "admin" (any case) resolves to Admin, otherwise a
// label containing "manager" resolves to Manager, and anything else is a
// plain User. This is the single place label text is inspected.
func ResolveRole(label string) Role {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	switch {
	case strings.Contains(normalized, string(RoleAdmin)):
		return RoleAdmin
	case strings.Contains(normalized, string(RoleManager)):
		return RoleManager
	default:
		return RoleUser
	}
}
