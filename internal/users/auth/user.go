// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements passwordless signup and access-token issuance.

A caller proves control of an email address by echoing back a six digit
confirmation code delivered out of band. The first successful verification
activates the account and returns a signed, stateless access token.

# Architecture

  - Entity: [User], the Identity Directory record.
  - Contracts: [UserRepository], [CodeStore], [Notifier], [CodeGenerator], [TokenProvider].
  - Service: [Service] runs the signup and token decision tables.
  - Transport: [Handler] exposes POST /signup and POST /token.
*/
package auth

import (
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Domain Entities

// User is one identity in the directory.
//
// Only the profile fields are serialized; the activation and superuser flags
// stay server-side.
type User struct {
	ID          string       `json:"-"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Bio         string       `json:"bio"`
	Role        sec.UserRole `json:"role"`
	IsSuperuser bool         `json:"-"`
	IsActive    bool         `json:"-"`
	CreatedAt   time.Time    `json:"-"`
	UpdatedAt   time.Time    `json:"-"`
}

// Identity returns the claims subset embedded in an access token.
func (u *User) Identity() sec.Identity {
	return sec.Identity{
		UserID:    u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Superuser: u.IsSuperuser,
	}
}

// IsAdmin reports whether the user may manage other accounts.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role.IsAdmin()
}

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool {
	return u.Role.IsModerator()
}

// # Field Identifiers

const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldConfirmationCode = "confirmation_code"
	FieldFirstName        = "first_name"
	FieldLastName         = "last_name"
	FieldBio              = "bio"
	FieldRole             = "role"
	FieldToken            = "token"
)
