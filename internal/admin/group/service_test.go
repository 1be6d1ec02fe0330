// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/admin/group"
	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/sec"
)

const (
	editors = 1
	aliceID = "0190f5c2-0000-7000-8000-0000000000a1"
	bobID   = "0190f5c2-0000-7000-8000-0000000000b1"
	ghostID = "0190f5c2-0000-7000-8000-0000000000ff"
)

type memoryRepository struct {
	mu      sync.Mutex
	groups  map[int]*group.Group
	users   map[string]string
	members map[int]map[string]bool
}

func newRepository() *memoryRepository {
	return &memoryRepository{
		groups: map[int]*group.Group{
			editors: {ID: editors, Name: "editors", Permissions: []group.Permission{{Object: authz.ObjectBook, Action: authz.ActionCreate}}},
		},
		users:   map[string]string{aliceID: "alice", bobID: "bob"},
		members: map[int]map[string]bool{editors: {}},
	}
}

func (repository *memoryRepository) List(context.Context) ([]*group.Group, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	groups := make([]*group.Group, 0, len(repository.groups))
	for _, g := range repository.groups {
		groups = append(groups, g)
	}
	return groups, nil
}

func (repository *memoryRepository) FindByID(_ context.Context, id int) (*group.Group, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	g, ok := repository.groups[id]
	if !ok {
		return nil, group.ErrGroupNotFound
	}
	clone := *g
	return &clone, nil
}

func (repository *memoryRepository) FindUser(_ context.Context, userID string) (*group.Member, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	username, ok := repository.users[userID]
	if !ok {
		return nil, group.ErrUserNotFound
	}
	return &group.Member{UserID: userID, Username: username}, nil
}

func (repository *memoryRepository) Users(_ context.Context, groupID int) ([]group.Member, []group.Member, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	members, nonMembers := []group.Member{}, []group.Member{}
	for id, username := range repository.users {
		if repository.members[groupID][id] {
			members = append(members, group.Member{UserID: id, Username: username})
		} else {
			nonMembers = append(nonMembers, group.Member{UserID: id, Username: username})
		}
	}
	byName := func(list []group.Member) func(i, j int) bool {
		return func(i, j int) bool { return list[i].Username < list[j].Username }
	}
	sort.Slice(members, byName(members))
	sort.Slice(nonMembers, byName(nonMembers))
	return members, nonMembers, nil
}

func (repository *memoryRepository) AddMember(_ context.Context, groupID int, userID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.members[groupID][userID] {
		return false, nil
	}
	repository.members[groupID][userID] = true
	return true, nil
}

func (repository *memoryRepository) RemoveMember(_ context.Context, groupID int, userID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if !repository.members[groupID][userID] {
		return false, nil
	}
	delete(repository.members[groupID], userID)
	return true, nil
}

func (repository *memoryRepository) ToggleMember(_ context.Context, groupID int, userID string) (bool, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.members[groupID][userID] {
		delete(repository.members[groupID], userID)
		return false, nil
	}
	repository.members[groupID][userID] = true
	return true, nil
}

// Permissions and Memberships let the memory repository seed an enforcer.
func (repository *memoryRepository) Permissions(context.Context) ([]authz.Permission, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var permissions []authz.Permission
	for _, g := range repository.groups {
		for _, p := range g.Permissions {
			permissions = append(permissions, authz.Permission{Group: g.Name, Object: p.Object, Action: p.Action})
		}
	}
	return permissions, nil
}

func (repository *memoryRepository) Memberships(context.Context) ([]authz.Membership, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var memberships []authz.Membership
	for groupID, users := range repository.members {
		for userID := range users {
			memberships = append(memberships, authz.Membership{UserID: userID, Group: repository.groups[groupID].Name})
		}
	}
	return memberships, nil
}

type brokenPolicy struct{}

func (brokenPolicy) AddMember(string, string) error    { return errors.New("enforcer unavailable") }
func (brokenPolicy) RemoveMember(string, string) error { return errors.New("enforcer unavailable") }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newService(t *testing.T) (*group.Service, *authz.Enforcer, *memoryRepository) {
	t.Helper()

	repository := newRepository()
	enforcer, err := authz.NewEnforcer(discard())
	require.NoError(t, err)
	require.NoError(t, enforcer.Load(context.Background(), repository))

	return group.NewService(repository, enforcer, discard()), enforcer, repository
}

/*
TestService_AddUser grants the group's permissions and reports repeats.
*/
func TestService_AddUser(t *testing.T) {
	service, enforcer, _ := newService(t)
	ctx := context.Background()

	assert.False(t, enforcer.Can(aliceID, authz.ObjectBook, authz.ActionCreate))

	result, err := service.AddUser(ctx, editors, aliceID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionAdded, result.Action)
	assert.Equal(t, "alice added to group editors", result.Message)
	assert.True(t, enforcer.Can(aliceID, authz.ObjectBook, authz.ActionCreate))

	result, err = service.AddUser(ctx, editors, aliceID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionUnchanged, result.Action)
	assert.Equal(t, "alice is already in group editors", result.Message)

	_, err = service.AddUser(ctx, 99, aliceID)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)

	_, err = service.AddUser(ctx, editors, ghostID)
	assert.ErrorIs(t, err, group.ErrUserNotFound)

	_, err = service.AddUser(ctx, editors, "not-a-uuid")
	assert.ErrorIs(t, err, group.ErrUserNotFound)
}

/*
TestService_RemoveUser revokes permissions and tolerates non-members.
*/
func TestService_RemoveUser(t *testing.T) {
	service, enforcer, _ := newService(t)
	ctx := context.Background()

	_, err := service.AddUser(ctx, editors, bobID)
	require.NoError(t, err)

	result, err := service.RemoveUser(ctx, editors, bobID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionRemoved, result.Action)
	assert.Equal(t, "bob removed from group editors", result.Message)
	assert.False(t, enforcer.Can(bobID, authz.ObjectBook, authz.ActionCreate))

	result, err = service.RemoveUser(ctx, editors, bobID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionUnchanged, result.Action)
	assert.Equal(t, "bob is not in group editors", result.Message)
}

/*
TestService_Toggle flips membership and reports the direction.
*/
func TestService_Toggle(t *testing.T) {
	service, enforcer, repository := newService(t)
	ctx := context.Background()

	result, err := service.Toggle(ctx, editors, aliceID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionAdded, result.Action)
	assert.Equal(t, aliceID, result.UserID)
	assert.Equal(t, editors, result.GroupID)
	assert.True(t, enforcer.Can(aliceID, authz.ObjectBook, authz.ActionCreate))

	result, err = service.Toggle(ctx, editors, aliceID)
	require.NoError(t, err)
	assert.Equal(t, group.ActionRemoved, result.Action)
	assert.False(t, enforcer.Can(aliceID, authz.ObjectBook, authz.ActionCreate))
	assert.Empty(t, repository.members[editors])
}

/*
TestService_Toggle_Concurrent leaves storage and enforcer in agreement.
*/
func TestService_Toggle_Concurrent(t *testing.T) {
	service, enforcer, repository := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Toggle(context.Background(), editors, bobID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// An even number of toggles ends where it started.
	assert.False(t, repository.members[editors][bobID])
	assert.False(t, enforcer.Can(bobID, authz.ObjectBook, authz.ActionCreate))
}

/*
TestService_Membership splits users into members and non-members.
*/
func TestService_Membership(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	_, err := service.AddUser(ctx, editors, bobID)
	require.NoError(t, err)

	view, err := service.Membership(ctx, editors)
	require.NoError(t, err)
	assert.Equal(t, "editors", view.Group.Name)
	assert.Equal(t, []group.Member{{UserID: bobID, Username: "bob"}}, view.Members)
	assert.Equal(t, []group.Member{{UserID: aliceID, Username: "alice"}}, view.NonMembers)

	_, err = service.Membership(ctx, 42)
	assert.ErrorIs(t, err, group.ErrGroupNotFound)
}

/*
TestService_PolicyPushFailure surfaces an internal error.
*/
func TestService_PolicyPushFailure(t *testing.T) {
	service := group.NewService(newRepository(), brokenPolicy{}, discard())

	_, err := service.AddUser(context.Background(), editors, aliceID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
}

/*
TestHandler_Permissions guards the routes with group permissions.
*/
func TestHandler_Permissions(t *testing.T) {
	service, enforcer, repository := newService(t)
	repository.groups[2] = &group.Group{ID: 2, Name: "admins", Permissions: []group.Permission{
		{Object: authz.ObjectGroup, Action: authz.ActionView},
		{Object: authz.ObjectGroup, Action: authz.ActionUpdate},
	}}
	repository.members[2] = map[string]bool{aliceID: true}
	require.NoError(t, enforcer.Load(context.Background(), repository))

	router := chi.NewRouter()
	group.NewHandler(service, enforcer).RegisterRoutes(router)

	call := func(method, path, userID string) int {
		request := httptest.NewRequest(method, path, nil)
		if userID != "" {
			claims := &sec.AuthClaims{UserID: userID, Role: string(sec.RoleMember)}
			request = request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
		}
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/", ""))
	assert.Equal(t, http.StatusForbidden, call(http.MethodGet, "/", bobID))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/", aliceID))

	assert.Equal(t, http.StatusForbidden, call(http.MethodPost, "/1/members/"+bobID, bobID))
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/1/members/"+bobID, aliceID))
	assert.Equal(t, http.StatusOK, call(http.MethodPost, "/1/members/"+bobID+"/toggle", aliceID))
	assert.Equal(t, http.StatusNotFound, call(http.MethodGet, "/7/members", aliceID))
}
