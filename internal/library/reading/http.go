// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/middleware"
	requestutil "github.com/taibuivan/librio/internal/platform/request"
	"github.com/taibuivan/librio/internal/platform/respond"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the reader's library. Every route requires a login.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.library)
	router.Post("/", handler.add)
	router.Get("/by-book/{bookID}", handler.getForBook)

	router.Route("/{id}", func(record chi.Router) {
		record.Get("/", handler.get)
		record.Put("/", handler.update)
		record.Delete("/", handler.delete)

		record.Patch("/status", handler.updateStatus)
		record.Patch("/bookmark", handler.updateBookmark)
		record.Patch("/start-date", handler.updateStartDate)
		record.Patch("/end-date", handler.updateEndDate)
		record.Patch("/rating", handler.updateRating)
		record.Patch("/comment", handler.updateComment)
	})
}

// # Payloads

type addRequest struct {
	BookID string `json:"book_id"`
}

type updateRequest struct {
	Status    Status `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Bookmark  *int   `json:"bookmark"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

// # Handlers

/*
GET /api/v1/readings.

Request:
  - q: string (book title substring)
  - status: Status (single shelf)

Response:
  - 200: Library: Records grouped by status
*/
func (handler *Handler) library(writer http.ResponseWriter, request *http.Request) {
	filter := Filter{
		Text:   request.URL.Query().Get("q"),
		Status: Status(request.URL.Query().Get("status")),
	}

	library, err := handler.service.Library(request.Context(), book.ViewerFrom(request.Context()), filter)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, library)
}

/*
POST /api/v1/readings.

Response:
  - 201: Reading: New "to-read" record
  - 403: ErrForbidden: Adult book, viewer not eligible
  - 409: ErrConflict: The book is already in the library
*/
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	var payload addRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Add(request.Context(), book.ViewerFrom(request.Context()), payload.BookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, r)
}

func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.service.Get(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) getForBook(writer http.ResponseWriter, request *http.Request) {
	r, err := handler.service.GetForBook(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "bookID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var payload updateRequest
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	startDate, err := requestutil.ParseDate(FieldStartDate, payload.StartDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	endDate, err := requestutil.ParseDate(FieldEndDate, payload.EndDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Update(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), UpdateInput{
		Status:    payload.Status,
		StartDate: startDate,
		EndDate:   endDate,
		Bookmark:  payload.Bookmark,
		Rating:    payload.Rating,
		Comment:   payload.Comment,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, r)
}

func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Single-Field Handlers

// answer renders the outcome of a single-field update.
func answer(writer http.ResponseWriter, request *http.Request, result *Result, err error) {
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, result.Message, result.Reading)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Status Status `json:"status"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateStatus(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), payload.Status)
	answer(writer, request, result, err)
}

func (handler *Handler) updateBookmark(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Bookmark *int `json:"bookmark"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateBookmark(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), payload.Bookmark)
	answer(writer, request, result, err)
}

func (handler *Handler) updateStartDate(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		StartDate string `json:"start_date"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	startDate, err := requestutil.ParseDate(FieldStartDate, payload.StartDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateStartDate(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), startDate)
	answer(writer, request, result, err)
}

func (handler *Handler) updateEndDate(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		EndDate string `json:"end_date"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	endDate, err := requestutil.ParseDate(FieldEndDate, payload.EndDate)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateEndDate(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), endDate)
	answer(writer, request, result, err)
}

func (handler *Handler) updateRating(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Rating *int `json:"rating"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateRating(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), payload.Rating)
	answer(writer, request, result, err)
}

func (handler *Handler) updateComment(writer http.ResponseWriter, request *http.Request) {
	var payload struct {
		Comment string `json:"comment"`
	}
	if err := requestutil.DecodeJSON(writer, request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.UpdateComment(request.Context(), book.ViewerFrom(request.Context()), requestutil.Param(request, "id"), payload.Comment)
	answer(writer, request, result, err)
}
