// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/metrics"
	"github.com/taibuivan/librio/internal/platform/sec"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/internal/users/auth"
	"github.com/taibuivan/librio/pkg/pointer"
	"github.com/taibuivan/librio/pkg/uuid"
)

// MembershipRemover drops a user from every permission group.
type MembershipRemover interface {
	RemoveUser(userID string) error
}

// Service implements the account use cases and viewer resolution.
type Service struct {
	repo     Repository
	cache    ViewerCache
	members  MembershipRemover
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, cache ViewerCache, members MembershipRemover, cacheTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		members:  members,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// # Profile

// GetProfile returns the account of userID.
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	profile, err := service.repo.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	profile.IsAdult = book.IsAdultOn(profile.BirthDate, time.Now())
	return profile, nil
}

/*
UpdateProfile applies a partial edit and drops the cached viewer so the
next request sees the new age and preference.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput (nil fields unchanged)

Returns:
  - *Profile: The updated account
  - error: Validation errors, or auth.ErrUsernameTaken (409)
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateInput) (*Profile, error) {
	profile, err := service.repo.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		profile.Username = strings.TrimSpace(*input.Username)
	}
	if input.BirthDate != nil {
		profile.BirthDate = input.BirthDate
	}
	profile.HideAdult = pointer.Or(input.HideAdult, profile.HideAdult)

	validator := &validate.Validator{}
	auth.ValidateUsername(validator, profile.Username)
	validator.NotFuture(FieldBirthDate, profile.BirthDate, time.Now())
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, profile); err != nil {
		return nil, err
	}

	service.invalidate(context, userID)
	service.logger.Info("account_updated", slog.String("user_id", userID))

	profile.IsAdult = book.IsAdultOn(profile.BirthDate, time.Now())
	return profile, nil
}

// DeleteAccount removes the account after confirming the password.
func (service *Service) DeleteAccount(context context.Context, userID, password string) error {
	hash, err := service.repo.PasswordHash(context, userID)
	if err != nil {
		return err
	}
	if !sec.CheckPasswordHash(password, hash) {
		return ErrWrongPassword
	}

	if err := service.repo.Delete(context, userID); err != nil {
		return err
	}

	if err := service.members.RemoveUser(userID); err != nil {
		service.logger.Error("account_memberships_not_dropped", slog.String("user_id", userID), slog.Any("error", err))
	}
	service.invalidate(context, userID)

	service.logger.Warn("account_deleted", slog.String("user_id", userID))
	return nil
}

// # Sessions

// ListSessions returns the active logins of userID, flagging the one
// behind currentRefreshToken.
func (service *Service) ListSessions(context context.Context, userID, currentRefreshToken string) ([]SessionInfo, error) {
	sessions, err := service.repo.ListSessions(context, userID)
	if err != nil {
		return nil, err
	}

	if currentRefreshToken != "" {
		currentHash := sec.HashToken(currentRefreshToken)
		for i := range sessions {
			sessions[i].IsCurrent = sessions[i].TokenHash == currentHash
		}
	}
	return sessions, nil
}

// RevokeSession ends one of the user's own sessions.
func (service *Service) RevokeSession(context context.Context, userID, sessionID string) error {
	if !uuid.Valid(sessionID) {
		return ErrSessionNotFound
	}

	revoked, err := service.repo.RevokeSession(context, userID, sessionID)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrSessionNotFound
	}

	service.logger.Info("session_revoked", slog.String("user_id", userID), slog.String("session_id", sessionID))
	return nil
}

// # Viewer Resolution

/*
ResolveViewer builds the catalogue viewer of an authenticated request.

Nil claims give [book.Anonymous]. The profile comes from the cache when
present; cache failures fall back to Postgres and never fail the request.
Age is computed on every call, so a reader turning 18 is not held back by
a cached entry.
*/
func (service *Service) ResolveViewer(context context.Context, claims *sec.AuthClaims) (book.Viewer, error) {
	if claims == nil {
		return book.Anonymous, nil
	}

	profile, err := service.viewerProfile(context, claims.UserID)
	if err != nil {
		return book.Anonymous, err
	}

	return book.Viewer{
		UserID:            claims.UserID,
		Authenticated:     true,
		IsAdult:           book.IsAdultOn(profile.BirthDate, time.Now()),
		HidesAdultContent: profile.HideAdult,
	}, nil
}

func (service *Service) viewerProfile(context context.Context, userID string) (*ViewerProfile, error) {
	cached, found, err := service.cache.Get(context, userID)
	switch {
	case err != nil:
		metrics.RecordViewerCache("error")
		service.logger.Warn("viewer_cache_read_failed", slog.String("user_id", userID), slog.Any("error", err))
	case found:
		metrics.RecordViewerCache("hit")
		return cached, nil
	default:
		metrics.RecordViewerCache("miss")
	}

	profile, err := service.repo.FindByID(context, userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrAccountGone
		}
		return nil, err
	}

	viewer := &ViewerProfile{BirthDate: profile.BirthDate, HideAdult: profile.HideAdult}
	if err := service.cache.Set(context, userID, viewer, service.cacheTTL); err != nil {
		service.logger.Warn("viewer_cache_write_failed", slog.String("user_id", userID), slog.Any("error", err))
	}
	return viewer, nil
}

func (service *Service) invalidate(context context.Context, userID string) {
	if err := service.cache.Delete(context, userID); err != nil {
		service.logger.Warn("viewer_cache_invalidate_failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}
