// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz evaluates permission groups with Casbin.

Editing rights are granted to groups ("editors", "moderators"), never to
individual accounts. A group holds (object, action) permissions such as
("book", "create"); users inherit them through membership.

Subjects are namespaced inside the enforcer:

	user:<uuid>   a member account
	group:<name>  a permission group

The database is the source of truth. [Enforcer.Load] replaces the in-memory
policy from a [PolicySource]; membership changes are then applied
incrementally with [Enforcer.AddMember] and [Enforcer.RemoveMember].
*/
package authz

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/taibuivan/librio/internal/platform/metrics"
)

//go:embed model.conf
var embeddedModel string

// Objects guarded by permission groups.
const (
	ObjectBook   = "book"
	ObjectAuthor = "author"
	ObjectTag    = "tag"
	ObjectGroup  = "group"
)

// Actions that can be granted on an object.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Permission grants one action on one object to a group.
type Permission struct {
	Group  string
	Object string
	Action string
}

// Membership places a user in a group.
type Membership struct {
	UserID string
	Group  string
}

// PolicySource loads the persisted permissions and memberships.
type PolicySource interface {
	Permissions(ctx context.Context) ([]Permission, error)
	Memberships(ctx context.Context) ([]Membership, error)
}

// Enforcer wraps a synced Casbin enforcer with Librio's subject naming.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	logger   *slog.Logger
}

// NewEnforcer builds an enforcer on the embedded RBAC model with no policy.
func NewEnforcer(logger *slog.Logger) (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to load casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to create casbin enforcer: %w", err)
	}

	return &Enforcer{enforcer: enforcer, logger: logger}, nil
}

// Load replaces the in-memory policy with the content of source.
func (e *Enforcer) Load(ctx context.Context, source PolicySource) error {
	permissions, err := source.Permissions(ctx)
	if err != nil {
		return fmt.Errorf("authz: load permissions: %w", err)
	}
	memberships, err := source.Memberships(ctx)
	if err != nil {
		return fmt.Errorf("authz: load memberships: %w", err)
	}

	e.enforcer.ClearPolicy()

	if len(permissions) > 0 {
		rules := make([][]string, 0, len(permissions))
		for _, permission := range permissions {
			rules = append(rules, []string{groupSubject(permission.Group), permission.Object, permission.Action})
		}
		if _, err := e.enforcer.AddPolicies(rules); err != nil {
			return fmt.Errorf("authz: add policies: %w", err)
		}
	}

	if len(memberships) > 0 {
		rules := make([][]string, 0, len(memberships))
		for _, membership := range memberships {
			rules = append(rules, []string{userSubject(membership.UserID), groupSubject(membership.Group)})
		}
		if _, err := e.enforcer.AddGroupingPolicies(rules); err != nil {
			return fmt.Errorf("authz: add memberships: %w", err)
		}
	}

	e.logger.Info("authz_policy_loaded",
		slog.Int("permissions", len(permissions)),
		slog.Int("memberships", len(memberships)),
	)
	return nil
}

// Can reports whether the user may perform action on object through any
// of their groups. Evaluation errors deny.
func (e *Enforcer) Can(userID, object, action string) bool {
	allowed, err := e.enforcer.Enforce(userSubject(userID), object, action)
	if err != nil {
		e.logger.Error("authz_enforce_failed",
			slog.String("user_id", userID),
			slog.String("object", object),
			slog.String("action", action),
			slog.Any("error", err),
		)
		allowed = false
	}

	metrics.RecordAuthzDecision(object, action, allowed)
	return allowed
}

// AddMember puts userID in group. Adding an existing member is a no-op.
func (e *Enforcer) AddMember(userID, group string) error {
	if _, err := e.enforcer.AddGroupingPolicy(userSubject(userID), groupSubject(group)); err != nil {
		return fmt.Errorf("authz: add member: %w", err)
	}
	return nil
}

// RemoveMember takes userID out of group. Removing a non-member is a no-op.
func (e *Enforcer) RemoveMember(userID, group string) error {
	if _, err := e.enforcer.RemoveGroupingPolicy(userSubject(userID), groupSubject(group)); err != nil {
		return fmt.Errorf("authz: remove member: %w", err)
	}
	return nil
}

// RemoveUser drops every membership of userID, used on account deletion.
func (e *Enforcer) RemoveUser(userID string) error {
	if _, err := e.enforcer.RemoveFilteredGroupingPolicy(0, userSubject(userID)); err != nil {
		return fmt.Errorf("authz: remove user: %w", err)
	}
	return nil
}

// GroupsOf returns the names of the groups userID belongs to.
func (e *Enforcer) GroupsOf(userID string) []string {
	roles, err := e.enforcer.GetRolesForUser(userSubject(userID))
	if err != nil {
		return nil
	}

	groups := make([]string, 0, len(roles))
	for _, role := range roles {
		groups = append(groups, strings.TrimPrefix(role, groupPrefix))
	}
	return groups
}

const (
	userPrefix  = "user:"
	groupPrefix = "group:"
)

func userSubject(userID string) string { return userPrefix + userID }
func groupSubject(group string) string { return groupPrefix + group }
