// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/platform/authz"
)

type staticSource struct {
	permissions []authz.Permission
	memberships []authz.Membership
	err         error
}

func (source staticSource) Permissions(context.Context) ([]authz.Permission, error) {
	return source.permissions, source.err
}

func (source staticSource) Memberships(context.Context) ([]authz.Membership, error) {
	return source.memberships, source.err
}

func newEnforcer(t *testing.T) *authz.Enforcer {
	t.Helper()

	enforcer, err := authz.NewEnforcer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	require.NoError(t, enforcer.Load(context.Background(), staticSource{
		permissions: []authz.Permission{
			{Group: "editors", Object: authz.ObjectBook, Action: authz.ActionCreate},
			{Group: "editors", Object: authz.ObjectBook, Action: authz.ActionUpdate},
			{Group: "moderators", Object: authz.ObjectTag, Action: authz.ActionDelete},
		},
		memberships: []authz.Membership{
			{UserID: "alice", Group: "editors"},
		},
	}))
	return enforcer
}

/*
TestEnforcer_GroupPermissions verifies users inherit only their groups' rights.
*/
func TestEnforcer_GroupPermissions(t *testing.T) {
	enforcer := newEnforcer(t)

	assert.True(t, enforcer.Can("alice", authz.ObjectBook, authz.ActionCreate))
	assert.True(t, enforcer.Can("alice", authz.ObjectBook, authz.ActionUpdate))
	assert.False(t, enforcer.Can("alice", authz.ObjectBook, authz.ActionDelete))
	assert.False(t, enforcer.Can("alice", authz.ObjectTag, authz.ActionDelete))
	assert.False(t, enforcer.Can("bob", authz.ObjectBook, authz.ActionCreate))
}

/*
TestEnforcer_Membership checks incremental membership changes.
*/
func TestEnforcer_Membership(t *testing.T) {
	enforcer := newEnforcer(t)

	require.NoError(t, enforcer.AddMember("bob", "moderators"))
	require.NoError(t, enforcer.AddMember("bob", "moderators"))
	assert.True(t, enforcer.Can("bob", authz.ObjectTag, authz.ActionDelete))
	assert.ElementsMatch(t, []string{"moderators"}, enforcer.GroupsOf("bob"))

	require.NoError(t, enforcer.RemoveMember("bob", "moderators"))
	assert.False(t, enforcer.Can("bob", authz.ObjectTag, authz.ActionDelete))

	require.NoError(t, enforcer.RemoveUser("alice"))
	assert.False(t, enforcer.Can("alice", authz.ObjectBook, authz.ActionCreate))
	assert.Empty(t, enforcer.GroupsOf("alice"))
}

/*
TestEnforcer_LoadReplaces ensures a reload drops stale rules.
*/
func TestEnforcer_LoadReplaces(t *testing.T) {
	enforcer := newEnforcer(t)

	require.NoError(t, enforcer.Load(context.Background(), staticSource{}))
	assert.False(t, enforcer.Can("alice", authz.ObjectBook, authz.ActionCreate))

	err := enforcer.Load(context.Background(), staticSource{err: errors.New("db down")})
	assert.Error(t, err)
}
