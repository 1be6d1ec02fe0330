// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// UserRole is the account-level role embedded in access tokens.
//
// Fine-grained editing rights come from permission groups, not from roles.
// Only [RoleAdmin] bypasses group checks.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// IsAdmin reports whether the role is the superuser role.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}
