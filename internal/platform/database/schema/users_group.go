// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// PermissionGroupTable represents the 'users.permissiongroup' table.
type PermissionGroupTable struct {
	Table       string
	ID          string
	Name        string
	Description string
}

// PermissionGroup is the schema definition for users.permissiongroup.
var PermissionGroup = PermissionGroupTable{
	Table:       "users.permissiongroup",
	ID:          "id",
	Name:        "name",
	Description: "description",
}

// GroupPermissionTable represents the 'users.grouppermission' table.
type GroupPermissionTable struct {
	Table   string
	GroupID string
	Object  string
	Action  string
}

// GroupPermission is the schema definition for users.grouppermission.
var GroupPermission = GroupPermissionTable{
	Table:   "users.grouppermission",
	GroupID: "groupid",
	Object:  "object",
	Action:  "action",
}

// GroupMemberTable represents the 'users.groupmember' table.
type GroupMemberTable struct {
	Table     string
	GroupID   string
	UserID    string
	CreatedAt string
}

// GroupMember is the schema definition for users.groupmember.
var GroupMember = GroupMemberTable{
	Table:     "users.groupmember",
	GroupID:   "groupid",
	UserID:    "userid",
	CreatedAt: "createdat",
}
