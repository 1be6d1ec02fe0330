// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/taibuivan/librio/internal/platform/sec"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}

// Settings holds the token lifetimes read from configuration.
type Settings struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// usernamePattern allows letters, digits and @ . + - _ only.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// Service implements the authentication use cases.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenProvider
	settings Settings
	logger   *slog.Logger
}

func NewService(users UserRepository, sessions SessionRepository, tokens TokenProvider, settings Settings, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		settings: settings,
		logger:   logger,
	}
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (service *Service) AccessTokenTTL() time.Duration {
	return service.settings.AccessTokenTTL
}

// # Registration

// RegisterInput holds the sign-up form.
type RegisterInput struct {
	Username        string
	BirthDate       *time.Time
	Password        string
	PasswordConfirm string
}

/*
Register validates the form, hashes the password and creates a member account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created account
  - error: Validation errors, or ErrUsernameTaken (409)
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)

	validator := &validate.Validator{}
	ValidateUsername(validator, username)
	validator.Custom(FieldBirthDate, input.BirthDate == nil, "This field is required").
		NotFuture(FieldBirthDate, input.BirthDate, time.Now())
	validatePassword(validator, FieldPassword, input.Password, FieldPasswordConfirm, input.PasswordConfirm)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		BirthDate:    input.BirthDate,
		Role:         sec.RoleMember,
	}

	if err := service.users.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered", slog.String("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// # Sessions

// LoginInput holds the credentials and the client fingerprint of a login.
type LoginInput struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginSession is a freshly issued token pair.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login checks credentials and opens a refresh session.

Unknown usernames and wrong passwords produce the same error.
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	user, err := service.users.FindByUsername(context, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		service.logger.Warn("login_failed", slog.String("user_id", user.ID), slog.String("ip", input.IPAddress))
		return nil, ErrInvalidCredentials
	}

	session, err := service.issue(context, user, input.UserAgent, input.IPAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := service.users.TouchLogin(context, user.ID, now); err != nil {
		service.logger.Warn("touch_login_failed", slog.String("user_id", user.ID), slog.Any("error", err))
	} else {
		user.LastLoginAt = &now
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

/*
Refresh rotates a refresh token.

The presented session is revoked before a new one is issued; a token that
was already rotated or revoked is rejected.
*/
func (service *Service) Refresh(context context.Context, refreshToken, userAgent, ipAddress string) (*LoginSession, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefresh
	}

	current, err := service.sessions.FindActive(context, sec.HashToken(refreshToken))
	if err != nil {
		return nil, err
	}

	revoked, err := service.sessions.Revoke(context, current.ID)
	if err != nil {
		return nil, err
	}
	if !revoked {
		service.logger.Warn("refresh_replayed", slog.String("session_id", current.ID), slog.String("user_id", current.UserID))
		return nil, ErrInvalidRefresh
	}

	user, err := service.users.FindByID(context, current.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	return service.issue(context, user, userAgent, ipAddress)
}

// Logout revokes the session of refreshToken. Unknown tokens are ignored.
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	session, err := service.sessions.FindActive(context, sec.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, ErrInvalidRefresh) {
			return nil
		}
		return err
	}

	if _, err := service.sessions.Revoke(context, session.ID); err != nil {
		return err
	}

	service.logger.Info("user_logged_out", slog.String("user_id", session.UserID))
	return nil
}

// # Password

// ChangePasswordInput holds the change-password form.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
	NewConfirm      string
}

/*
ChangePassword verifies the current password, stores the new one and
revokes every other session of the user. The session behind
currentRefreshToken, if any, stays valid.
*/
func (service *Service) ChangePassword(context context.Context, userID string, input ChangePasswordInput, currentRefreshToken string) error {
	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword)
	validatePassword(validator, FieldNewPassword, input.NewPassword, FieldPasswordConfirm, input.NewConfirm)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.users.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !sec.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hash, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}

	if err := service.users.UpdatePassword(context, userID, hash); err != nil {
		return err
	}

	current, err := service.sessions.FindActive(context, sec.HashToken(currentRefreshToken))
	switch {
	case err == nil && current.UserID == userID:
		err = service.sessions.RevokeOthers(context, userID, current.ID)
	default:
		err = service.sessions.RevokeAll(context, userID)
	}
	if err != nil {
		return err
	}

	service.logger.Info("password_changed", slog.String("user_id", userID))
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (service *Service) PurgeExpiredSessions(context context.Context) (int64, error) {
	removed, err := service.sessions.DeleteExpired(context)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		service.logger.Info("sessions_purged", slog.Int64("count", removed))
	}
	return removed, nil
}

// # Helpers

// issue signs an access token and stores a new refresh session.
func (service *Service) issue(context context.Context, user *User, userAgent, ipAddress string) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, string(user.Role), service.settings.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth: generate refresh token: %w", err)
	}

	session := &Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: sec.HashToken(refreshToken),
		UserAgent: userAgent,
		IPAddress: ipAddress,
		ExpiresAt: time.Now().Add(service.settings.RefreshTokenTTL),
	}

	if err := service.sessions.Create(context, session); err != nil {
		return nil, err
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
		User:                  user,
	}, nil
}

// ValidateUsername applies the username rules shared by sign-up and profile edits.
func ValidateUsername(validator *validate.Validator, username string) {
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, MinUsernameLength).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		Custom(FieldUsername, username != "" && !usernamePattern.MatchString(username), "Letters, digits and @/./+/-/_ only")
}

func validatePassword(validator *validate.Validator, field, password, confirmField, confirm string) {
	validator.Required(field, password).
		MinLen(field, password, MinPasswordLength).
		Custom(confirmField, password != confirm, "Passwords do not match")
}
