// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/storage"
	"github.com/taibuivan/librio/pkg/pagination"
	"github.com/taibuivan/librio/pkg/pointer"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newService(t *testing.T) (*book.Service, *memoryRepository, *storage.MemoryStore) {
	t.Helper()
	repository := newMemoryRepository(catalogue()...)
	covers := storage.NewMemoryStore("http://covers.test")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return book.NewService(repository, covers, logger), repository, covers
}

/*
TestService_GetBook applies the adult gate on detail reads.
*/
func TestService_GetBook(t *testing.T) {
	service, repository, _ := newService(t)
	repository.ratings[idMiserables] = []int{4, 5}
	ctx := context.Background()

	t.Run("plain_book_with_rating", func(t *testing.T) {
		b, err := service.GetBook(ctx, book.Anonymous, idMiserables)
		require.NoError(t, err)
		require.NotNil(t, b.AverageRating)
		assert.InDelta(t, 4.5, *b.AverageRating, 0.001)
	})

	t.Run("adult_book_denied", func(t *testing.T) {
		for _, viewer := range []book.Viewer{book.Anonymous, minor, squeamish} {
			_, err := service.GetBook(ctx, viewer, idEmmanuelle)
			assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
		}
	})

	t.Run("adult_book_allowed", func(t *testing.T) {
		b, err := service.GetBook(ctx, eligible, idEmmanuelle)
		require.NoError(t, err)
		assert.Nil(t, b.AverageRating)
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := service.GetBook(ctx, eligible, "not-a-uuid")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

		_, err = service.GetBook(ctx, eligible, "0190f5c2-0000-7000-8000-0000000000ff")
		assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
	})
}

/*
TestService_ListBooks returns visible books and their count.
*/
func TestService_ListBooks(t *testing.T) {
	service, _, _ := newService(t)

	books, total, err := service.ListBooks(context.Background(), minor, book.Query{}, pagination.Params{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{idMiserables}, ids(books))

	books, total, err = service.ListBooks(context.Background(), minor, book.Query{TagIDs: []int{tagErotica.ID}}, pagination.All)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

/*
TestService_CreateBook validates input before storing.
*/
func TestService_CreateBook(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		b, err := service.CreateBook(ctx, book.CreateInput{
			Title:     "  Notre-Dame de Paris ",
			PageCount: 940,
			ISBN:      "978-2-07-040850-4",
			AuthorIDs: []int{authorHugo.ID, authorHugo.ID},
			TagIDs:    []int{tagRoman.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, "Notre-Dame de Paris", b.Title)
		assert.Equal(t, "9782070408504", b.ISBN)
		assert.Len(t, b.Authors, 1)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := service.CreateBook(ctx, book.CreateInput{Title: " ", PageCount: 0, ISBN: "123"})
		appErr := apperr.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperr.CodeValidation, appErr.Code)

		var fields []string
		for _, detail := range appErr.Details {
			fields = append(fields, detail.Field)
		}
		assert.ElementsMatch(t,
			[]string{book.FieldTitle, book.FieldPageCount, book.FieldISBN, book.FieldAuthorIDs, book.FieldTagIDs},
			fields,
		)
	})

	t.Run("unknown_tag", func(t *testing.T) {
		_, err := service.CreateBook(ctx, book.CreateInput{Title: "X", PageCount: 1, AuthorIDs: []int{1}, TagIDs: []int{99}})
		assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable))
	})
}

/*
TestService_UpdateBook keeps unspecified fields and respects the gate.
*/
func TestService_UpdateBook(t *testing.T) {
	service, _, _ := newService(t)
	ctx := context.Background()

	b, err := service.UpdateBook(ctx, eligible, idMaigret, book.UpdateInput{PageCount: pointer.To(210)})
	require.NoError(t, err)
	assert.Equal(t, 210, b.PageCount)
	assert.Equal(t, "Maigret tend un piège", b.Title)
	assert.Len(t, b.Tags, 2)

	_, err = service.UpdateBook(ctx, eligible, idMaigret, book.UpdateInput{TagIDs: []int{}})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.UpdateBook(ctx, minor, idPolarNoir, book.UpdateInput{Title: pointer.To("Polar")})
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

/*
TestService_UploadCover stores sniffed images and replaces the previous cover.
*/
func TestService_UploadCover(t *testing.T) {
	service, repository, covers := newService(t)
	ctx := context.Background()

	first, err := service.UploadCover(ctx, eligible, idMaigret, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.CoverKey, "covers/"+idMaigret+"/"))
	assert.True(t, strings.HasSuffix(first.CoverKey, ".png"))
	assert.True(t, strings.HasPrefix(first.CoverURL, "http://covers.test/"))

	second, err := service.UploadCover(ctx, eligible, idMaigret, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	_, _, found := covers.Get(first.CoverKey)
	assert.False(t, found, "previous cover should be removed")
	contentType, _, found := covers.Get(second.CoverKey)
	assert.True(t, found)
	assert.Equal(t, "image/png", contentType)

	stored, err := repository.FindByID(ctx, idMaigret)
	require.NoError(t, err)
	assert.Equal(t, second.CoverKey, stored.CoverKey)

	_, err = service.UploadCover(ctx, eligible, idMaigret, strings.NewReader("plain text"))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.UploadCover(ctx, minor, idEmmanuelle, bytes.NewReader(pngHeader))
	assert.True(t, apperr.HasCode(err, apperr.CodeForbidden))
}

/*
TestService_DeleteBook removes the book.
*/
func TestService_DeleteBook(t *testing.T) {
	service, repository, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, service.DeleteBook(ctx, idMiserables))
	_, err := repository.FindByID(ctx, idMiserables)
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	assert.True(t, apperr.HasCode(service.DeleteBook(ctx, idMiserables), apperr.CodeNotFound))
}
