// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/validate"
)

// # Service Layer

// Service manages group memberships and keeps the enforcer in step.
//
// Membership writes are serialised so the enforcer sees them in the same
// order as the database.
type Service struct {
	mu     sync.Mutex
	repo   Repository
	policy Policy
	logger *slog.Logger
}

// NewService constructs a group [Service].
func NewService(repo Repository, policy Policy, logger *slog.Logger) *Service {
	return &Service{repo: repo, policy: policy, logger: logger}
}

// # Queries

// ListGroups returns every group with its permissions and members.
func (service *Service) ListGroups(context context.Context) ([]*Group, error) {
	return service.repo.List(context)
}

/*
Membership returns a group together with its members and every other user.

Parameters:
  - context: context.Context
  - groupID: int

Returns:
  - *MembershipView: Group, members and non-members
  - error: ErrGroupNotFound if missing
*/
func (service *Service) Membership(context context.Context, groupID int) (*MembershipView, error) {
	group, err := service.repo.FindByID(context, groupID)
	if err != nil {
		return nil, err
	}

	members, nonMembers, err := service.repo.Users(context, groupID)
	if err != nil {
		return nil, err
	}

	group.Members = members
	return &MembershipView{Group: group, Members: members, NonMembers: nonMembers}, nil
}

// # Commands

// AddUser puts a user in a group. Adding an existing member is not an error.
func (service *Service) AddUser(context context.Context, groupID int, userID string) (*Result, error) {
	group, user, err := service.resolve(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	added, err := service.repo.AddMember(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{UserID: user.UserID, GroupID: group.ID}
	if !added {
		result.Action = ActionUnchanged
		result.Message = alreadyMemberMessage(user.Username, group.Name)
		return result, nil
	}

	if err := service.push(service.policy.AddMember, user.UserID, group.Name); err != nil {
		return nil, err
	}

	service.logger.Info("group_member_added", slog.Int("group_id", group.ID), slog.String("user_id", user.UserID))
	result.Action = ActionAdded
	result.Message = addedMessage(user.Username, group.Name)
	return result, nil
}

// RemoveUser takes a user out of a group. Removing a non-member is not an error.
func (service *Service) RemoveUser(context context.Context, groupID int, userID string) (*Result, error) {
	group, user, err := service.resolve(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	removed, err := service.repo.RemoveMember(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{UserID: user.UserID, GroupID: group.ID}
	if !removed {
		result.Action = ActionUnchanged
		result.Message = notMemberMessage(user.Username, group.Name)
		return result, nil
	}

	if err := service.push(service.policy.RemoveMember, user.UserID, group.Name); err != nil {
		return nil, err
	}

	service.logger.Info("group_member_removed", slog.Int("group_id", group.ID), slog.String("user_id", user.UserID))
	result.Action = ActionRemoved
	result.Message = removedMessage(user.Username, group.Name)
	return result, nil
}

// Toggle adds a non-member or removes a member in one atomic step.
func (service *Service) Toggle(context context.Context, groupID int, userID string) (*Result, error) {
	group, user, err := service.resolve(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	member, err := service.repo.ToggleMember(context, groupID, userID)
	if err != nil {
		return nil, err
	}

	result := &Result{UserID: user.UserID, GroupID: group.ID}
	if member {
		err = service.push(service.policy.AddMember, user.UserID, group.Name)
		result.Action, result.Message = ActionAdded, addedMessage(user.Username, group.Name)
	} else {
		err = service.push(service.policy.RemoveMember, user.UserID, group.Name)
		result.Action, result.Message = ActionRemoved, removedMessage(user.Username, group.Name)
	}
	if err != nil {
		return nil, err
	}

	service.logger.Info("group_member_toggled",
		slog.Int("group_id", group.ID),
		slog.String("user_id", user.UserID),
		slog.String("action", string(result.Action)),
	)
	return result, nil
}

// # Helpers

func (service *Service) resolve(context context.Context, groupID int, userID string) (*Group, *Member, error) {
	if err := (&validate.Validator{}).UUID("user_id", userID).Err(); err != nil {
		return nil, nil, ErrUserNotFound
	}

	group, err := service.repo.FindByID(context, groupID)
	if err != nil {
		return nil, nil, err
	}

	user, err := service.repo.FindUser(context, userID)
	if err != nil {
		return nil, nil, err
	}
	return group, user, nil
}

// push mirrors a stored change into the enforcer. The database stays the
// source of truth; a failed push is reported so the caller can retry.
func (service *Service) push(apply func(userID, group string) error, userID, group string) error {
	if err := apply(userID, group); err != nil {
		service.logger.Error("group_policy_push_failed",
			slog.String("user_id", userID),
			slog.String("group", group),
			slog.Any("error", err),
		)
		return apperr.Internal(fmt.Errorf("push membership of %s in %s: %w", userID, group, err))
	}
	return nil
}
