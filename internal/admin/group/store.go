// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import "context"

// Repository persists groups and memberships.
type Repository interface {
	// List returns every group with its permissions and members, by name.
	List(context context.Context) ([]*Group, error)

	FindByID(context context.Context, id int) (*Group, error)
	FindUser(context context.Context, userID string) (*Member, error)

	// Users returns the members and the non-members of a group, by username.
	Users(context context.Context, groupID int) (members, nonMembers []Member, err error)

	// AddMember reports whether a new membership was stored.
	AddMember(context context.Context, groupID int, userID string) (bool, error)

	// RemoveMember reports whether a membership was deleted.
	RemoveMember(context context.Context, groupID int, userID string) (bool, error)

	// ToggleMember flips a membership atomically and reports whether the
	// user is a member afterwards.
	ToggleMember(context context.Context, groupID int, userID string) (bool, error)
}

// Policy mirrors membership changes into the authorization enforcer.
type Policy interface {
	AddMember(userID, group string) error
	RemoveMember(userID, group string) error
}
