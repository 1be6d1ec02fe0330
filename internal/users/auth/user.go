// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth handles registration, login and refresh-session lifecycle.

Access tokens are short-lived RS256 JWTs. Refresh tokens are opaque random
strings kept only as SHA-256 hashes in users.session and delivered to the
browser in an HttpOnly cookie scoped to the auth routes.
*/
package auth

import (
	"time"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/sec"
)

// # Domain Entities

// User is the credential view of an account.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	PasswordHash string       `json:"-"`
	BirthDate    *time.Time   `json:"birth_date,omitempty"`
	Role         sec.UserRole `json:"role"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Session is one refresh-token session.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	TokenHash string     `json:"-"`
	UserAgent string     `json:"user_agent"`
	IPAddress string     `json:"ip_address"`
	ExpiresAt time.Time  `json:"expires_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// # Field Identifiers

const (
	FieldUsername        = "username"
	FieldBirthDate       = "birth_date"
	FieldPassword        = "password"
	FieldPasswordConfirm = "password_confirm"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
)

// # Constraints

const (
	MinUsernameLength = 3
	MaxUsernameLength = 150
	MinPasswordLength = 8

	// RefreshTokenLength is the byte length of a random refresh token.
	RefreshTokenLength = 32
)

// # Errors

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid username or password")
	ErrInvalidRefresh     = apperr.Unauthorized("Invalid or expired refresh token")
	ErrWrongPassword      = apperr.Unauthorized("Current password is incorrect")
	ErrUsernameTaken      = apperr.Conflict("Username is already taken")
	ErrUserNotFound       = apperr.NotFound("User")
)
