// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package wishlist

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
	"github.com/taibuivan/librio/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the viewer's wishlist. Every route requires a login.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.list)
	router.Get("/{bookID}", handler.contains)
	router.Put("/{bookID}", handler.add)
	router.Delete("/{bookID}", handler.remove)
}

/*
GET /api/v1/wishlist.

Request:
  - q: string (title substring)
  - page, limit: pagination

Response:
  - 200: []Book: Wishlisted books visible to the viewer
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	page := pagination.Catalogue.FromRequest(request)

	books, total, err := handler.service.List(request.Context(), book.ViewerFrom(request.Context()), request.URL.Query().Get("q"), page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(page.Page, page.Limit, total))
}

func (handler *Handler) contains(writer http.ResponseWriter, request *http.Request) {
	membership, err := handler.service.Contains(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, membership)
}

/*
PUT /api/v1/wishlist/{bookID}.

Response:
  - 200: Membership: Added, or already present
  - 403: ErrForbidden: Adult book, viewer not eligible
  - 404: ErrNotFound: Unknown book
*/
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	membership, err := handler.service.Add(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, membership.Message, membership)
}

func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	membership, err := handler.service.Remove(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, membership.Message, membership)
}
