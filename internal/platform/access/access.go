// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package access implements the permission table shared by every protected endpoint.

# Tiers

Each endpoint declares one [Tier]. [Evaluate] is a pure function over the
tier, the calling [Subject] and the request shape; it performs no I/O and has
no side effects. The HTTP helpers in this package turn a denial into 401 for
anonymous callers and 403 for authenticated ones.

# Superuser

An authenticated superuser is allowed at every tier, including owner-only
rules on objects they do not own.
*/
package access

import (
	"net/http"

	"github.com/taibuivan/yamdb/internal/platform/sec"
)

// Tier names one row of the permission table.
type Tier int

const (
	// ReadOnly allows safe methods for everyone and nothing else.
	ReadOnly Tier = iota + 1
	// Admin requires the admin role.
	Admin
	// Moderator requires the moderator role or higher.
	Moderator
	// OwnerOrModerator allows safe methods for everyone; mutations need the owner or a moderator.
	OwnerOrModerator
	// OwnerOrAdmin allows safe methods for everyone; mutations need the owner or an admin.
	OwnerOrAdmin
	// OwnerOnly requires the owner for every method, safe ones included.
	OwnerOnly
)

// String returns the tier name used in logs and metric labels.
func (t Tier) String() string {
	switch t {
	case ReadOnly:
		return "read_only"
	case Admin:
		return "admin"
	case Moderator:
		return "moderator"
	case OwnerOrModerator:
		return "owner_or_moderator"
	case OwnerOrAdmin:
		return "owner_or_admin"
	case OwnerOnly:
		return "owner_only"
	default:
		return "unknown"
	}
}

// Subject is the caller as seen by the permission table.
//
// The zero value is the anonymous caller.
type Subject struct {
	Authenticated bool
	UserID        string
	Role          sec.UserRole
	Superuser     bool
}

// Anonymous is the unauthenticated caller.
var Anonymous = Subject{}

// SubjectFromClaims builds a subject from verified token claims. Nil claims yield [Anonymous].
func SubjectFromClaims(claims *sec.AuthClaims) Subject {
	if claims == nil {
		return Anonymous
	}
	return Subject{
		Authenticated: true,
		UserID:        claims.UserID,
		Role:          claims.Role,
		Superuser:     claims.Superuser,
	}
}

// Target describes what the request acts on.
//
// Collection marks requests that address no single object (listing,
// creating); owner tiers then only require authentication. An object-level
// target with an empty OwnerID has no recorded owner and nobody owns it.
type Target struct {
	Safe       bool
	Collection bool
	OwnerID    string
}

// IsSafeMethod reports whether the HTTP method is read-only.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Evaluate reports whether subject may perform the request described by target under tier.
func Evaluate(tier Tier, subject Subject, target Target) bool {
	if subject.Authenticated && subject.Superuser {
		return true
	}

	switch tier {
	case ReadOnly:
		return target.Safe

	case Admin:
		return subject.Authenticated && subject.Role.IsAdmin()

	case Moderator:
		return subject.Authenticated && subject.Role.AtLeast(sec.RoleModerator)

	case OwnerOrModerator:
		return target.Safe || ownsOr(subject, target, subject.Role.AtLeast(sec.RoleModerator))

	case OwnerOrAdmin:
		return target.Safe || ownsOr(subject, target, subject.Role.IsAdmin())

	case OwnerOnly:
		return ownsOr(subject, target, false)
	}

	return false
}

// ownsOr applies the ownership rule shared by the owner tiers.
func ownsOr(subject Subject, target Target, privileged bool) bool {
	switch {
	case !subject.Authenticated:
		return false
	case privileged, target.Collection:
		return true
	case target.OwnerID == "":
		return false
	default:
		return subject.UserID == target.OwnerID
	}
}
