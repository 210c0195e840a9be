// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// # Identity Directory

// ListFilter narrows [UserRepository.List].
type ListFilter struct {
	// Search matches username, first name or last name (case-insensitive substring).
	Search string
	// Role restricts the result to one role when set.
	Role   sec.UserRole
	Limit  int
	Offset int
}

// UserRepository defines the data access contract for the Identity Directory.
//
// Every write replaces the whole record in one statement, so a concurrent
// reader sees either the old row or the new one.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given (normalized) username.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByUsername(ctx context.Context, username string) (*User, error)

	/*
		FindByEmail returns the account with the given (normalized) email.

		Returns:
		  - *User: Hydrated entity
		  - error: [ErrUserNotFound] or storage failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: dberr.ErrDuplicate on a username or email clash, or storage failures
	*/
	Create(ctx context.Context, user *User) error

	/*
		Update replaces the mutable fields of an existing account.

		Returns:
		  - error: [ErrUserNotFound], dberr.ErrDuplicate, or storage failures
	*/
	Update(ctx context.Context, user *User) error

	/*
		SetActive flips the activation flag from expected to next.

		Returns:
		  - bool: false if the row no longer holds expected (another request won)
		  - error: storage failures
	*/
	SetActive(ctx context.Context, id string, expected, next bool) (bool, error)

	// Delete removes the account.
	Delete(ctx context.Context, id string) error

	// List returns one page of accounts ordered by username, plus the total match count.
	List(ctx context.Context, filter ListFilter) ([]*User, int, error)
}

// # Code Store

// ErrCodeNotFound is returned by [CodeStore.Get] when no live code exists.
var ErrCodeNotFound = errors.New("confirmation code not found")

// CodeStore keeps at most one live confirmation code per email.
//
// Implementations must be safe for concurrent use. An expired entry is
// reported as [ErrCodeNotFound] whether or not it was physically removed.
type CodeStore interface {

	// Put stores code for email, replacing any previous code and restarting the ttl.
	Put(ctx context.Context, email, code string, ttl time.Duration) error

	// Get returns the live code for email or [ErrCodeNotFound].
	Get(ctx context.Context, email string) (string, error)

	// Delete removes the entry for email only while it still holds code.
	Delete(ctx context.Context, email, code string) error
}

// # Collaborators

// CodeGenerator produces confirmation codes.
type CodeGenerator interface {
	Generate() (string, error)
}

// Notifier delivers a confirmation code out of band.
type Notifier interface {
	Send(ctx context.Context, email, code string) error
}

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(identity sec.Identity, ttl time.Duration) (string, time.Time, error)
}
