// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
	"github.com/taibuivan/librio/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the signed-in reader's account routes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getProfile)
	router.Patch("/", handler.updateProfile)
	router.Delete("/", handler.deleteAccount)

	router.Get("/sessions", handler.listSessions)
	router.Delete("/sessions/{id}", handler.revokeSession)
}

// # Payloads

type updateRequest struct {
	Username  *string `json:"username"`
	BirthDate *string `json:"birth_date"`
	HideAdult *bool   `json:"hide_adult"`
}

type deleteRequest struct {
	Password string `json:"password"`
}

// # Handlers

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
PATCH /api/v1/account.

Request:
  - Body: updateRequest (username, birth_date, hide_adult; all optional)

Response:
  - 200: Profile: Updated account
  - 400: ErrValidation: Bad username or future birth date
  - 409: ErrConflict: Username taken
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload updateRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := UpdateInput{Username: payload.Username, HideAdult: payload.HideAdult}
	if payload.BirthDate != nil {
		birthDate, err := requestutil.ParseDate(FieldBirthDate, *payload.BirthDate)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if birthDate == nil {
			respond.Error(writer, request, validate.FieldError(FieldBirthDate, "This field is required"))
			return
		}
		input.BirthDate = birthDate
	}

	profile, err := handler.service.UpdateProfile(request.Context(), userID, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
DELETE /api/v1/account.

Request:
  - Body: deleteRequest (password)

Response:
  - 204: Account deleted, refresh cookie cleared
  - 401: ErrUnauthorized: Wrong password
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload deleteRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteAccount(request.Context(), userID, payload.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	respond.NoContent(writer)
}

func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	current := ""
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		current = cookie.Value
	}

	sessions, err := handler.service.ListSessions(request.Context(), userID, current)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sessions)
}

func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RevokeSession(request.Context(), userID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
