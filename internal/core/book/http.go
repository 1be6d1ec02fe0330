// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
	"github.com/taibuivan/librio/internal/platform/validate"
	"github.com/taibuivan/librio/pkg/pagination"
)

// multipartOverhead leaves room for form boundaries around the cover file.
const multipartOverhead = 64 << 10

// Handler exposes the catalogue over HTTP.
type Handler struct {
	service *Service
	checker middleware.PermissionChecker
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

// RegisterRoutes mounts the catalogue endpoints on router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public, filtered by the resolved viewer
	router.Get("/", handler.listBooks)
	router.Get("/{id}", handler.getBook)

	// Permission groups
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectBook, authz.ActionCreate)).Post("/", handler.createBook)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectBook, authz.ActionUpdate)).Patch("/{id}", handler.updateBook)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectBook, authz.ActionUpdate)).Put("/{id}/cover", handler.uploadCover)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectBook, authz.ActionDelete)).Delete("/{id}", handler.deleteBook)
}

// # Payloads

type createRequest struct {
	Title       string `json:"title"`
	Synopsis    string `json:"synopsis"`
	PageCount   int    `json:"page_count"`
	Edition     string `json:"edition"`
	ISBN        string `json:"isbn"`
	ReleaseDate string `json:"release_date"`
	AuthorIDs   []int  `json:"author_ids"`
	TagIDs      []int  `json:"tag_ids"`
}

// updateRequest distinguishes absent fields (nil) from explicit values.
// An empty release_date clears the date.
type updateRequest struct {
	Title       *string `json:"title"`
	Synopsis    *string `json:"synopsis"`
	PageCount   *int    `json:"page_count"`
	Edition     *string `json:"edition"`
	ISBN        *string `json:"isbn"`
	ReleaseDate *string `json:"release_date"`
	AuthorIDs   []int   `json:"author_ids"`
	TagIDs      []int   `json:"tag_ids"`
}

// # Handlers

/*
GET /api/v1/books.

Description: Lists the books visible to the caller, ordered by title.

Request:
  - q: string (title substring, case-insensitive)
  - tag: int, repeatable or comma-separated (every tag is required)
  - author: int
  - page, limit: pagination

Response:
  - 200: []Book: Paginated books
  - 400: ErrValidation: Malformed tag or author
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	tagIDs, err := requestutil.QueryInts(request, "tag")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	authorID, err := requestutil.QueryInt(request, "author")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	query := Query{
		Text:     request.URL.Query().Get("q"),
		TagIDs:   tagIDs,
		AuthorID: authorID,
	}
	page := pagination.Catalogue.FromRequest(request)

	books, total, err := handler.service.ListBooks(request.Context(), ViewerFrom(request.Context()), query, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, pagination.NewMeta(page.Page, page.Limit, total))
}

/*
GET /api/v1/books/{id}.

Response:
  - 200: Book: With average rating and cover URL
  - 403: ErrForbidden: Adult book, viewer not eligible
  - 404: ErrNotFound
*/
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	book, err := handler.service.GetBook(request.Context(), ViewerFrom(request.Context()), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

/*
POST /api/v1/books.

Response:
  - 201: Book: Created object
  - 400: ErrValidation: Input errors
  - 403: ErrForbidden: Missing book:create
  - 422: ErrUnprocessable: Unknown author or tag
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	var payload createRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	releaseDate, err := requestutil.ParseDate(FieldReleaseDate, payload.ReleaseDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.CreateBook(request.Context(), CreateInput{
		Title:       payload.Title,
		Synopsis:    payload.Synopsis,
		PageCount:   payload.PageCount,
		Edition:     payload.Edition,
		ISBN:        payload.ISBN,
		ReleaseDate: releaseDate,
		AuthorIDs:   payload.AuthorIDs,
		TagIDs:      payload.TagIDs,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, book)
}

/*
PATCH /api/v1/books/{id}.

Response:
  - 200: Book: Updated object
  - 403: ErrForbidden: Missing book:update, or adult book
*/
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	var payload updateRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{
		Title:     payload.Title,
		Synopsis:  payload.Synopsis,
		PageCount: payload.PageCount,
		Edition:   payload.Edition,
		ISBN:      payload.ISBN,
		AuthorIDs: payload.AuthorIDs,
		TagIDs:    payload.TagIDs,
	}

	if payload.ReleaseDate != nil {
		releaseDate, err := requestutil.ParseDate(FieldReleaseDate, *payload.ReleaseDate)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		input.ReleaseDate = releaseDate
		input.ClearReleaseDate = releaseDate == nil
	}

	book, err := handler.service.UpdateBook(request.Context(), ViewerFrom(request.Context()), requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

/*
PUT /api/v1/books/{id}/cover.

Description: Replaces the cover image. Multipart form, file field "cover".

Response:
  - 200: Book: With the new cover URL
  - 400: ErrValidation: Missing file, too large, or not an image
*/
func (handler *Handler) uploadCover(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxCoverSize+multipartOverhead)

	file, _, err := request.FormFile(FieldCover)
	if err != nil {
		respond.Error(writer, request, validate.FieldError(FieldCover, "A cover image file is required"))
		return
	}
	defer file.Close()

	book, err := handler.service.UploadCover(request.Context(), ViewerFrom(request.Context()), requestutil.Param(request, "id"), file)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

/*
DELETE /api/v1/books/{id}.

Response:
  - 204: No Content
  - 404: ErrNotFound
*/
func (handler *Handler) deleteBook(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteBook(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
