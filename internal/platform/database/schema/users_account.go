// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table.
type UserAccountTable struct {
	Table          string
	ID             string
	Username       string
	Password       string
	BirthDate      string
	HideAdult      string
	Role           string
	LastLoginAt    string
	CreatedAt      string
	UpdatedAt      string
	UniqueUsername string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table:          "users.account",
	ID:             "id",
	Username:       "username",
	Password:       "passwordhash",
	BirthDate:      "birthdate",
	HideAdult:      "hideadult",
	Role:           "role",
	LastLoginAt:    "lastloginat",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	UniqueUsername: "account_username_key",
}

// Columns returns the public account columns, in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.BirthDate, t.HideAdult, t.Role,
		t.LastLoginAt, t.CreatedAt, t.UpdatedAt,
	}
}
