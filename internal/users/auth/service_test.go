// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/sec"
	"github.com/taibuivan/librio/internal/users/auth"
	"github.com/taibuivan/librio/pkg/pointer"
)

// # Fakes

type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (repository *memoryUsers) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.users {
		if existing.Username == user.Username {
			return auth.ErrUsernameTaken
		}
	}
	user.CreatedAt = time.Now()
	copied := *user
	repository.users[user.ID] = &copied
	return nil
}

func (repository *memoryUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, user := range repository.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (repository *memoryUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (repository *memoryUsers) UpdatePassword(_ context.Context, userID, hash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[userID]
	if !ok {
		return auth.ErrUserNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (repository *memoryUsers) TouchLogin(_ context.Context, userID string, at time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if user, ok := repository.users[userID]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session
}

func (repository *memorySessions) Create(_ context.Context, session *auth.Session) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	copied := *session
	repository.sessions[session.ID] = &copied
	return nil
}

func (repository *memorySessions) FindActive(_ context.Context, tokenHash string) (*auth.Session, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, session := range repository.sessions {
		if session.TokenHash == tokenHash && session.RevokedAt == nil && session.ExpiresAt.After(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, auth.ErrInvalidRefresh
}

func (repository *memorySessions) Revoke(_ context.Context, sessionID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	session, ok := repository.sessions[sessionID]
	if !ok || session.RevokedAt != nil {
		return false, nil
	}
	session.RevokedAt = pointer.To(time.Now())
	return true, nil
}

func (repository *memorySessions) RevokeOthers(_ context.Context, userID, keepSessionID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, session := range repository.sessions {
		if session.UserID == userID && session.ID != keepSessionID && session.RevokedAt == nil {
			session.RevokedAt = pointer.To(time.Now())
		}
	}
	return nil
}

func (repository *memorySessions) RevokeAll(ctx context.Context, userID string) error {
	return repository.RevokeOthers(ctx, userID, "")
}

func (repository *memorySessions) DeleteExpired(_ context.Context) (int64, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var removed int64
	for id, session := range repository.sessions {
		if !session.ExpiresAt.After(time.Now()) {
			delete(repository.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (repository *memorySessions) active(userID string) int {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	count := 0
	for _, session := range repository.sessions {
		if session.UserID == userID && session.RevokedAt == nil {
			count++
		}
	}
	return count
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(userID, _, role string, _ time.Duration) (string, error) {
	return "access." + userID + "." + role, nil
}

// # Helpers

var birthDate = time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)

func newService() (*auth.Service, *memoryUsers, *memorySessions) {
	users := &memoryUsers{users: make(map[string]*auth.User)}
	sessions := &memorySessions{sessions: make(map[string]*auth.Session)}
	settings := auth.Settings{AccessTokenTTL: 15 * time.Minute, RefreshTokenTTL: time.Hour}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return auth.NewService(users, sessions, fakeTokens{}, settings, logger), users, sessions
}

func register(t *testing.T, service *auth.Service, username string) *auth.User {
	t.Helper()
	user, err := service.Register(context.Background(), auth.RegisterInput{
		Username:        username,
		BirthDate:       &birthDate,
		Password:        "lecture-2026",
		PasswordConfirm: "lecture-2026",
	})
	require.NoError(t, err)
	return user
}

func login(t *testing.T, service *auth.Service, username string) *auth.LoginSession {
	t.Helper()
	session, err := service.Login(context.Background(), auth.LoginInput{Username: username, Password: "lecture-2026"})
	require.NoError(t, err)
	return session
}

// # Tests

/*
TestService_Register covers the sign-up rules.
*/
func TestService_Register(t *testing.T) {
	service, _, _ := newService()
	future := time.Now().AddDate(1, 0, 0)

	user := register(t, service, "camille")
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.NotEqual(t, "lecture-2026", user.PasswordHash)

	tests := []struct {
		name  string
		input auth.RegisterInput
		field string
	}{
		{"short_username", auth.RegisterInput{Username: "ab", BirthDate: &birthDate, Password: "lecture-2026", PasswordConfirm: "lecture-2026"}, auth.FieldUsername},
		{"bad_characters", auth.RegisterInput{Username: "camille dupont", BirthDate: &birthDate, Password: "lecture-2026", PasswordConfirm: "lecture-2026"}, auth.FieldUsername},
		{"missing_birth_date", auth.RegisterInput{Username: "lucie", Password: "lecture-2026", PasswordConfirm: "lecture-2026"}, auth.FieldBirthDate},
		{"future_birth_date", auth.RegisterInput{Username: "lucie", BirthDate: &future, Password: "lecture-2026", PasswordConfirm: "lecture-2026"}, auth.FieldBirthDate},
		{"short_password", auth.RegisterInput{Username: "lucie", BirthDate: &birthDate, Password: "court", PasswordConfirm: "court"}, auth.FieldPassword},
		{"mismatched_confirmation", auth.RegisterInput{Username: "lucie", BirthDate: &birthDate, Password: "lecture-2026", PasswordConfirm: "lecture-2027"}, auth.FieldPasswordConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Register(context.Background(), tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, apperr.CodeValidation, appErr.Code)
			require.Len(t, appErr.Details, 1)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Username: "camille", BirthDate: &birthDate, Password: "lecture-2026", PasswordConfirm: "lecture-2026",
	})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

/*
TestService_Login rejects unknown users and wrong passwords alike.
*/
func TestService_Login(t *testing.T) {
	service, users, sessions := newService()
	user := register(t, service, "camille")

	session := login(t, service, "camille")
	assert.Equal(t, "access."+user.ID+".member", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.Equal(t, 1, sessions.active(user.ID))
	assert.NotNil(t, users.users[user.ID].LastLoginAt)

	_, err := service.Login(context.Background(), auth.LoginInput{Username: "camille", Password: "mauvais-mot"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = service.Login(context.Background(), auth.LoginInput{Username: "personne", Password: "lecture-2026"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

/*
TestService_Refresh rotates tokens and rejects replays.
*/
func TestService_Refresh(t *testing.T) {
	service, _, sessions := newService()
	user := register(t, service, "camille")
	first := login(t, service, "camille")

	second, err := service.Refresh(context.Background(), first.RefreshToken, "", "")
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, sessions.active(user.ID))

	_, err = service.Refresh(context.Background(), first.RefreshToken, "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)

	_, err = service.Refresh(context.Background(), "", "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
}

/*
TestService_Refresh_Concurrent lets only one of two racing refreshes win.
*/
func TestService_Refresh_Concurrent(t *testing.T) {
	service, _, _ := newService()
	register(t, service, "camille")
	session := login(t, service, "camille")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := service.Refresh(context.Background(), session.RefreshToken, "", ""); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
}

/*
TestService_Logout is idempotent.
*/
func TestService_Logout(t *testing.T) {
	service, _, sessions := newService()
	user := register(t, service, "camille")
	session := login(t, service, "camille")

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	assert.Equal(t, 0, sessions.active(user.ID))

	require.NoError(t, service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, service.Logout(context.Background(), "unknown"))
}

/*
TestService_ChangePassword keeps the current session and revokes the others.
*/
func TestService_ChangePassword(t *testing.T) {
	service, _, sessions := newService()
	user := register(t, service, "camille")
	phone := login(t, service, "camille")
	laptop := login(t, service, "camille")
	require.Equal(t, 2, sessions.active(user.ID))

	err := service.ChangePassword(context.Background(), user.ID, auth.ChangePasswordInput{
		CurrentPassword: "faux",
		NewPassword:     "nouvelle-page",
		NewConfirm:      "nouvelle-page",
	}, laptop.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	err = service.ChangePassword(context.Background(), user.ID, auth.ChangePasswordInput{
		CurrentPassword: "lecture-2026",
		NewPassword:     "nouvelle-page",
		NewConfirm:      "nouvelle-page",
	}, laptop.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, sessions.active(user.ID))

	_, err = service.Refresh(context.Background(), phone.RefreshToken, "", "")
	assert.ErrorIs(t, err, auth.ErrInvalidRefresh)
	_, err = service.Refresh(context.Background(), laptop.RefreshToken, "", "")
	assert.NoError(t, err)

	_, err = service.Login(context.Background(), auth.LoginInput{Username: "camille", Password: "nouvelle-page"})
	assert.NoError(t, err)
}

/*
TestService_PurgeExpiredSessions removes only expired rows.
*/
func TestService_PurgeExpiredSessions(t *testing.T) {
	service, _, sessions := newService()
	register(t, service, "camille")
	login(t, service, "camille")

	sessions.sessions["stale"] = &auth.Session{ID: "stale", ExpiresAt: time.Now().Add(-time.Minute)}

	removed, err := service.PurgeExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Len(t, sessions.sessions, 1)
}
