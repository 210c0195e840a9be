// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "github.com/taibuivan/yamdb/internal/platform/apperr"

// # Identity Constraints

const (
	// MaxUsernameLength bounds the username in characters.
	MaxUsernameLength = 150

	// MaxEmailLength is the longest deliverable address (RFC 5321 path limit).
	MaxEmailLength = 254

	// MaxNameLength bounds first and last names.
	MaxNameLength = 150
)

// # Errors

var (
	// ErrInvalidCode covers a wrong, expired or already consumed code as well as
	// an unknown username, so the endpoint cannot be used to enumerate accounts.
	ErrInvalidCode = apperr.BadRequest("INVALID_CODE", "Confirmation code is invalid or expired")

	// ErrUsernameTaken is returned when the username belongs to an identity with a different email.
	ErrUsernameTaken = apperr.Conflict("Username is already registered with a different email")

	// ErrEmailTaken is returned when the email belongs to an identity with a different username.
	ErrEmailTaken = apperr.Conflict("Email is already registered with a different username")

	// ErrNotificationFailed reports that the code was stored but could not be delivered.
	ErrNotificationFailed = apperr.ServiceUnavailable("NOTIFICATION_FAILED", "Confirmation code could not be delivered, please retry")

	// ErrUserNotFound is returned by repositories when no live row matches.
	ErrUserNotFound = apperr.NotFound("User")
)
