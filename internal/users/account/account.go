// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages identity records after signup.

It serves the caller's own profile at /users/me and the admin-only user
management endpoints.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Security: /me is owner-only; every other route requires the admin tier.
*/
package account

import (
	"context"

	"github.com/taibuivan/yamdb/internal/users/auth"
)

// # Repository Contracts

// AccountRepository is the subset of the Identity Directory this package needs.
//
// [auth.PostgresUserRepository] satisfies it.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByUsername(ctx context.Context, username string) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error
	Update(ctx context.Context, user *auth.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter auth.ListFilter) ([]*auth.User, int, error)
}

// # Inputs

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// CreateInput describes an account created by an administrator.
type CreateInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// ListInput narrows the admin user listing.
type ListInput struct {
	Search string
	Role   string
	Page   int
	Limit  int
}
