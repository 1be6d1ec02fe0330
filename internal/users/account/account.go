// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account manages the signed-in reader's own profile and sessions,
and resolves the catalogue [book.Viewer] of every authenticated request.

The viewer depends on the birth date and the hide-adult preference, which
are not carried in the access token. They are read from Postgres and kept
in Redis for a short TTL; every profile change drops the cached entry.
*/
package account

import (
	"time"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/sec"
)

// # Domain Entities

// Profile is the private view of an account.
type Profile struct {
	ID          string       `json:"id"`
	Username    string       `json:"username"`
	BirthDate   *time.Time   `json:"birth_date,omitempty"`
	HideAdult   bool         `json:"hide_adult"`
	Role        sec.UserRole `json:"role"`
	LastLoginAt *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// IsAdult is derived from BirthDate on read.
	IsAdult bool `json:"is_adult"`
}

// UpdateInput carries a partial profile edit. Nil fields are left unchanged.
type UpdateInput struct {
	Username  *string
	BirthDate *time.Time
	HideAdult *bool
}

// SessionInfo is an active login as shown to its owner.
type SessionInfo struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`

	TokenHash string `json:"-"`
}

// ViewerProfile is the cached subset of an account needed to build a viewer.
type ViewerProfile struct {
	BirthDate *time.Time `json:"birth_date,omitempty"`
	HideAdult bool       `json:"hide_adult"`
}

const (
	FieldBirthDate = "birth_date"
	FieldHideAdult = "hide_adult"
	FieldPassword  = "password"
)

var (
	ErrAccountNotFound = apperr.NotFound("Account")
	ErrSessionNotFound = apperr.NotFound("Session")
	ErrAccountGone     = apperr.Unauthorized("This account no longer exists")
	ErrWrongPassword   = apperr.Unauthorized("Password is incorrect")
)
