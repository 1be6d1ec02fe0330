// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// ReadingTable represents the 'library.reading' table.
type ReadingTable struct {
	Table     string
	ID        string
	ReaderID  string
	BookID    string
	Status    string
	StartDate string
	EndDate   string
	Bookmark  string
	Rating    string
	Comment   string
	CreatedAt string
	UpdatedAt string

	// UniqueReaderBook is the constraint guarding one record per (reader, book).
	UniqueReaderBook string
}

// Reading is the schema definition for library.reading.
var Reading = ReadingTable{
	Table:            "library.reading",
	ID:               "id",
	ReaderID:         "readerid",
	BookID:           "bookid",
	Status:           "status",
	StartDate:        "startdate",
	EndDate:          "enddate",
	Bookmark:         "bookmark",
	Rating:           "rating",
	Comment:          "comment",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
	UniqueReaderBook: "reading_reader_book_key",
}

// Columns returns all reading columns, in scan order.
func (t ReadingTable) Columns() []string {
	return []string{
		t.ID, t.ReaderID, t.BookID, t.Status, t.StartDate, t.EndDate,
		t.Bookmark, t.Rating, t.Comment, t.CreatedAt, t.UpdatedAt,
	}
}

// WishlistTable represents the 'library.wishlist' table.
type WishlistTable struct {
	Table     string
	UserID    string
	BookID    string
	CreatedAt string
}

// Wishlist is the schema definition for library.wishlist.
var Wishlist = WishlistTable{
	Table:     "library.wishlist",
	UserID:    "userid",
	BookID:    "bookid",
	CreatedAt: "createdat",
}
