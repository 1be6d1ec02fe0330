// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// AuthorTable represents the 'core.author' table.
type AuthorTable struct {
	Table     string
	ID        string
	Name      string
	BirthDate string
	DeathDate string
	Biography string
	CreatedAt string
	UpdatedAt string
}

// Author is the schema definition for core.author.
var Author = AuthorTable{
	Table:     "core.author",
	ID:        "id",
	Name:      "name",
	BirthDate: "birthdate",
	DeathDate: "deathdate",
	Biography: "biography",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns returns the columns read by the author repository, in scan order.
func (t AuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.BirthDate, t.DeathDate, t.Biography, t.CreatedAt, t.UpdatedAt}
}
