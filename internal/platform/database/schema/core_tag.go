// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TagTable represents the 'core.tag' table.
type TagTable struct {
	Table     string
	ID        string
	Label     string
	Slug      string
	IsAdult   string
	Editable  string
	CreatedAt string

	// UniqueSlug is the constraint guarding tag slugs.
	UniqueSlug string
}

// Tag is the schema definition for core.tag.
var Tag = TagTable{
	Table:     "core.tag",
	ID:        "id",
	Label:     "label",
	Slug:      "slug",
	IsAdult:   "isadult",
	Editable:  "editable",
	CreatedAt: "createdat",

	UniqueSlug: "tag_slug_key",
}

// Columns returns the columns read by the tag repository, in scan order.
func (t TagTable) Columns() []string {
	return []string{t.ID, t.Label, t.Slug, t.IsAdult, t.Editable, t.CreatedAt}
}
