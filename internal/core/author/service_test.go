// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/core/author"
	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/pkg/pagination"
)

type memoryRepository struct {
	authors map[int]*author.Author
}

func (repository *memoryRepository) ListAuthors(context.Context, author.Filter, pagination.Params) ([]*author.Author, int, error) {
	result := make([]*author.Author, 0, len(repository.authors))
	for _, a := range repository.authors {
		result = append(result, a)
	}
	return result, len(result), nil
}

func (repository *memoryRepository) GetAuthor(_ context.Context, id int) (*author.Author, error) {
	a, ok := repository.authors[id]
	if !ok {
		return nil, author.ErrAuthorNotFound
	}
	return a, nil
}

func (repository *memoryRepository) CreateAuthor(_ context.Context, a *author.Author) error {
	a.ID = len(repository.authors) + 1
	repository.authors[a.ID] = a
	return nil
}

func (repository *memoryRepository) UpdateAuthor(_ context.Context, a *author.Author) error {
	if _, ok := repository.authors[a.ID]; !ok {
		return author.ErrAuthorNotFound
	}
	repository.authors[a.ID] = a
	return nil
}

func (repository *memoryRepository) DeleteAuthor(_ context.Context, id int) error {
	if _, ok := repository.authors[id]; !ok {
		return author.ErrAuthorNotFound
	}
	delete(repository.authors, id)
	return nil
}

// recordingLister captures the catalogue query issued for a bibliography.
type recordingLister struct {
	viewer book.Viewer
	query  book.Query
	books  []*book.Book
}

func (lister *recordingLister) ListBooks(_ context.Context, viewer book.Viewer, query book.Query, _ pagination.Params) ([]*book.Book, int, error) {
	lister.viewer = viewer
	lister.query = query
	return lister.books, len(lister.books), nil
}

func newService() (*author.Service, *memoryRepository, *recordingLister) {
	repository := &memoryRepository{authors: map[int]*author.Author{
		1: {ID: 1, Name: "Victor Hugo"},
	}}
	lister := &recordingLister{books: []*book.Book{{ID: "b-1", Title: "Les Misérables"}}}
	return author.NewService(repository, lister, slog.New(slog.NewTextHandler(io.Discard, nil))), repository, lister
}

/*
TestService_GetAuthorDetail lists books through the catalogue for the same viewer.
*/
func TestService_GetAuthorDetail(t *testing.T) {
	service, _, lister := newService()
	viewer := book.Viewer{UserID: "u-1", Authenticated: true}

	detail, err := service.GetAuthorDetail(context.Background(), viewer, 1)
	require.NoError(t, err)
	assert.Equal(t, "Victor Hugo", detail.Name)
	assert.Len(t, detail.Books, 1)

	assert.Equal(t, viewer, lister.viewer)
	require.NotNil(t, lister.query.AuthorID)
	assert.Equal(t, 1, *lister.query.AuthorID)

	_, err = service.GetAuthorDetail(context.Background(), viewer, 9)
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)
}

/*
TestService_CreateAuthor validates names and life dates.
*/
func TestService_CreateAuthor(t *testing.T) {
	service, repository, _ := newService()
	born := time.Date(1802, 2, 26, 0, 0, 0, 0, time.UTC)
	died := time.Date(1885, 5, 22, 0, 0, 0, 0, time.UTC)
	future := time.Now().AddDate(1, 0, 0)

	created, err := service.CreateAuthor(context.Background(), author.Input{Name: " Hugo ", BirthDate: &born, DeathDate: &died})
	require.NoError(t, err)
	assert.Equal(t, "Hugo", created.Name)
	assert.Contains(t, repository.authors, created.ID)

	tests := []struct {
		name  string
		input author.Input
		field string
	}{
		{"missing_name", author.Input{Name: ""}, author.FieldName},
		{"death_before_birth", author.Input{Name: "X", BirthDate: &died, DeathDate: &born}, author.FieldDeathDate},
		{"born_in_future", author.Input{Name: "X", BirthDate: &future}, author.FieldBirthDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateAuthor(context.Background(), tt.input)
			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.field, appErr.Details[0].Field)
		})
	}
}

/*
TestService_UpdateDeleteAuthor reports missing authors.
*/
func TestService_UpdateDeleteAuthor(t *testing.T) {
	service, _, _ := newService()
	ctx := context.Background()

	updated, err := service.UpdateAuthor(ctx, 1, author.Input{Name: "Victor-Marie Hugo"})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.ID)

	_, err = service.UpdateAuthor(ctx, 2, author.Input{Name: "Nobody"})
	assert.ErrorIs(t, err, author.ErrAuthorNotFound)

	require.NoError(t, service.DeleteAuthor(ctx, 1))
	assert.ErrorIs(t, service.DeleteAuthor(ctx, 1), author.ErrAuthorNotFound)
}

/*
TestListSQL checks the search and pagination clauses.
*/
func TestListSQL(t *testing.T) {
	query, args, countQuery, countArgs, err := author.ListSQL(author.Filter{Query: "hu_go"}, pagination.Params{Page: 3, Limit: 10})
	require.NoError(t, err)

	assert.Contains(t, query, `FROM "core"."author"`)
	assert.Contains(t, query, `"name" ILIKE $1`)
	assert.Contains(t, query, `ORDER BY "name" ASC, "id" ASC`)
	assert.Contains(t, query, "LIMIT")
	assert.Contains(t, args, `%hu\_go%`)

	assert.Contains(t, countQuery, "COUNT(*)")
	assert.NotContains(t, countQuery, "LIMIT")
	assert.Equal(t, []any{`%hu\_go%`}, countArgs)
}
