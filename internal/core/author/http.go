// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
	"github.com/taibuivan/librio/pkg/pagination"
)

type Handler struct {
	service *Service
	checker middleware.PermissionChecker
}

func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	// Public
	router.Get("/", handler.listAuthors)
	router.Get("/{id}", handler.getAuthor)

	// Permission groups
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectAuthor, authz.ActionCreate)).Post("/", handler.createAuthor)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectAuthor, authz.ActionUpdate)).Put("/{id}", handler.updateAuthor)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectAuthor, authz.ActionDelete)).Delete("/{id}", handler.deleteAuthor)
}

type authorRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	DeathDate string `json:"death_date"`
	Biography string `json:"biography"`
}

func (payload authorRequest) input() (Input, error) {
	birthDate, err := requestutil.ParseDate(FieldBirthDate, payload.BirthDate)
	if err != nil {
		return Input{}, err
	}
	deathDate, err := requestutil.ParseDate(FieldDeathDate, payload.DeathDate)
	if err != nil {
		return Input{}, err
	}
	return Input{Name: payload.Name, BirthDate: birthDate, DeathDate: deathDate, Biography: payload.Biography}, nil
}

func (handler *Handler) listAuthors(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.Directory.FromRequest(request)

	filter := Filter{
		Query: request.URL.Query().Get("q"),
	}

	authors, total, err := handler.service.ListAuthors(request.Context(), filter, paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, authors, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// getAuthor answers with the author and their visible books.
func (handler *Handler) getAuthor(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.IntParam(request, "id", "Author")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	detail, err := handler.service.GetAuthorDetail(request.Context(), book.ViewerFrom(request.Context()), authorID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, detail)
}

func (handler *Handler) createAuthor(writer http.ResponseWriter, request *http.Request) {
	var payload authorRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.input()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.CreateAuthor(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, author)
}

func (handler *Handler) updateAuthor(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.IntParam(request, "id", "Author")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload authorRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := payload.input()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	author, err := handler.service.UpdateAuthor(request.Context(), authorID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, author)
}

func (handler *Handler) deleteAuthor(writer http.ResponseWriter, request *http.Request) {
	authorID, err := requestutil.IntParam(request, "id", "Author")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteAuthor(request.Context(), authorID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
