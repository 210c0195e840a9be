// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
type UserRole string

const (
	// Full management of users and catalogue content
	RoleAdmin UserRole = "admin"

	// Can edit or delete any review and comment
	RoleModerator UserRole = "moderator"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// Roles lists every assignable role, lowest privilege first.
func Roles() []UserRole {
	return []UserRole{RoleUser, RoleModerator, RoleAdmin}
}

// RoleNames returns [Roles] as plain strings (validation messages, OneOf rules).
func RoleNames() []string {
	roles := Roles()
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}
	return names
}

// IsValid reports whether r is one of the assignable roles.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// IsAdmin reports whether the role is admin.
func (r UserRole) IsAdmin() bool { return r == RoleAdmin }

// IsModerator reports whether the role is moderator.
func (r UserRole) IsModerator() bool { return r == RoleModerator }

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() > 0 && r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-30) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 30
	case RoleModerator:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}
