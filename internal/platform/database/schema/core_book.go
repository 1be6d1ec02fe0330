// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// BookTable represents the 'core.book' table.
type BookTable struct {
	Table       string
	ID          string
	Title       string
	Synopsis    string
	PageCount   string
	Edition     string
	ISBN        string
	ReleaseDate string
	CoverKey    string
	CreatedAt   string
	UpdatedAt   string
}

// Book is the schema definition for core.book.
var Book = BookTable{
	Table:       "core.book",
	ID:          "id",
	Title:       "title",
	Synopsis:    "synopsis",
	PageCount:   "pagecount",
	Edition:     "edition",
	ISBN:        "isbn",
	ReleaseDate: "releasedate",
	CoverKey:    "coverkey",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns the scalar book columns, in scan order.
func (t BookTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.Synopsis, t.PageCount, t.Edition, t.ISBN,
		t.ReleaseDate, t.CoverKey, t.CreatedAt, t.UpdatedAt,
	}
}

// BookAuthorTable represents the 'core.bookauthor' join table.
type BookAuthorTable struct {
	Table    string
	BookID   string
	AuthorID string
}

// BookAuthor is the schema definition for core.bookauthor.
var BookAuthor = BookAuthorTable{
	Table:    "core.bookauthor",
	BookID:   "bookid",
	AuthorID: "authorid",
}

// BookTagTable represents the 'core.booktag' join table.
type BookTagTable struct {
	Table  string
	BookID string
	TagID  string
}

// BookTag is the schema definition for core.booktag.
var BookTag = BookTagTable{
	Table:  "core.booktag",
	BookID: "bookid",
	TagID:  "tagid",
}
