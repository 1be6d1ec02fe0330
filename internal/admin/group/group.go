// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package group lets administrators manage permission-group memberships.

Groups and their permissions are seeded by migrations. Membership changes
are written to Postgres first and then pushed into the in-memory
authorization enforcer, so a grant takes effect on the next request.
*/
package group

import (
	"fmt"

	"github.com/taibuivan/librio/internal/platform/apperr"
)

// # Core Entities

// Group is a named set of permissions.
type Group struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	Members     []Member     `json:"members"`
}

// Permission grants one action on one object.
type Permission struct {
	Object string `json:"object"`
	Action string `json:"action"`
}

// Member is a user as listed in a group view.
type Member struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// MembershipView splits every user into members and non-members of a group.
type MembershipView struct {
	Group      *Group   `json:"group"`
	Members    []Member `json:"members"`
	NonMembers []Member `json:"non_members"`
}

// # Membership Outcomes

// Action describes what a membership request did.
type Action string

const (
	ActionAdded     Action = "added"
	ActionRemoved   Action = "removed"
	ActionUnchanged Action = "unchanged"
)

// Result is the answer to add, remove and toggle requests.
type Result struct {
	Action  Action `json:"action"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	GroupID int    `json:"group_id"`
}

func addedMessage(username, group string) string {
	return fmt.Sprintf("%s added to group %s", username, group)
}

func alreadyMemberMessage(username, group string) string {
	return fmt.Sprintf("%s is already in group %s", username, group)
}

func removedMessage(username, group string) string {
	return fmt.Sprintf("%s removed from group %s", username, group)
}

func notMemberMessage(username, group string) string {
	return fmt.Sprintf("%s is not in group %s", username, group)
}

// # Errors

var (
	ErrGroupNotFound = apperr.NotFound("Group")
	ErrUserNotFound  = apperr.NotFound("User")
)
