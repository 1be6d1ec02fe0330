// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package group

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/platform/authz"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
)

// # Handler Implementation

// Handler exposes group administration under /api/v1/groups.
type Handler struct {
	service *Service
	checker middleware.PermissionChecker
}

func NewHandler(service *Service, checker middleware.PermissionChecker) *Handler {
	return &Handler{service: service, checker: checker}
}

// RegisterRoutes mounts the group endpoints.
//
// Listing needs group:view; every membership endpoint needs group:update.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(middleware.RequirePermission(handler.checker, authz.ObjectGroup, authz.ActionView)).Get("/", handler.listGroups)

	router.Route("/{id}/members", func(members chi.Router) {
		members.Use(middleware.RequirePermission(handler.checker, authz.ObjectGroup, authz.ActionUpdate))
		members.Get("/", handler.membership)
		members.Post("/{userID}", handler.addMember)
		members.Delete("/{userID}", handler.removeMember)
		members.Post("/{userID}/toggle", handler.toggleMember)
	})
}

/*
GET /api/v1/groups.

Response:
  - 200: []Group with permissions and members
  - 403: Missing group:view
*/
func (handler *Handler) listGroups(writer http.ResponseWriter, request *http.Request) {
	groups, err := handler.service.ListGroups(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, groups)
}

/*
GET /api/v1/groups/{id}/members.

Response:
  - 200: MembershipView
  - 404: Group not found
*/
func (handler *Handler) membership(writer http.ResponseWriter, request *http.Request) {
	groupID, err := requestutil.IntParam(request, "id", "Group")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.service.Membership(request.Context(), groupID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, view)
}

// POST /api/v1/groups/{id}/members/{userID}.
func (handler *Handler) addMember(writer http.ResponseWriter, request *http.Request) {
	handler.change(writer, request, handler.service.AddUser)
}

// DELETE /api/v1/groups/{id}/members/{userID}.
func (handler *Handler) removeMember(writer http.ResponseWriter, request *http.Request) {
	handler.change(writer, request, handler.service.RemoveUser)
}

// POST /api/v1/groups/{id}/members/{userID}/toggle.
func (handler *Handler) toggleMember(writer http.ResponseWriter, request *http.Request) {
	handler.change(writer, request, handler.service.Toggle)
}

type membershipChange func(context context.Context, groupID int, userID string) (*Result, error)

func (handler *Handler) change(writer http.ResponseWriter, request *http.Request, apply membershipChange) {
	groupID, err := requestutil.IntParam(request, "id", "Group")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := apply(request.Context(), groupID, requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, result.Message, result)
}
