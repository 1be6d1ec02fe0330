// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
)

type Handler struct {
	service *Service
	checker middleware.PermissionChecker
}

func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", handler.listTags)
	router.Get("/{id}", handler.getTag)

	router.With(middleware.RequirePermission(handler.checker, authz.ObjectTag, authz.ActionCreate)).Post("/", handler.createTag)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectTag, authz.ActionUpdate)).Put("/{id}", handler.updateTag)
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectTag, authz.ActionDelete)).Delete("/{id}", handler.deleteTag)
}

func (handler *Handler) listTags(writer http.ResponseWriter, request *http.Request) {
	tags, err := handler.service.ListTags(request.Context(), Filter{Search: request.URL.Query().Get("q")})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, tags)
}

func (handler *Handler) getTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "id", "Tag")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.GetTag(request.Context(), tagID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) createTag(writer http.ResponseWriter, request *http.Request) {
	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.CreateTag(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, t)
}

func (handler *Handler) updateTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "id", "Tag")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input Input
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	t, err := handler.service.UpdateTag(request.Context(), tagID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, t)
}

func (handler *Handler) deleteTag(writer http.ResponseWriter, request *http.Request) {
	tagID, err := requestutil.IntParam(request, "id", "Tag")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteTag(request.Context(), tagID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
