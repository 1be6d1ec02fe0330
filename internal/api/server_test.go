// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librio/internal/api"
	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/config"
	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == "valid" {
		return &sec.AuthClaims{UserID: "0190f5c2-0000-7000-8000-0000000000a1", Role: string(sec.RoleMember)}, nil
	}
	return nil, errors.New("bad token")
}

// echo answers GET / with the resolved viewer's id.
type echo struct{}

func (echo) RegisterRoutes(router chi.Router) {
	router.Get("/", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = io.WriteString(writer, book.ViewerFrom(request.Context()).UserID)
	})
}

func newServer(deps api.HealthDependencies) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(deps, logger)

	viewer := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			v := book.Anonymous
			if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
				v = book.Viewer{UserID: claims.UserID, Authenticated: true}
			}
			next.ServeHTTP(writer, request.WithContext(book.WithViewer(request.Context(), v)))
		})
	}

	cfg := &config.Config{ServerPort: "0", Environment: "development"}
	server := api.NewServer(context.Background(), cfg, logger, stubVerifier{}, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Viewer:    viewer,
		Books:     echo{},
		Tags:      echo{},
		Authors:   echo{},
		Readings:  echo{},
		Wishlist:  echo{},
		Auth:      echo{},
		Account:   echo{},
		Groups:    echo{},
	})
	return server.Handler()
}

func get(handler http.Handler, path, token string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestServer_HealthChecks checks liveness and readiness.
*/
func TestServer_HealthChecks(t *testing.T) {
	healthy := newServer(api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return nil },
	})
	assert.Equal(t, http.StatusOK, get(healthy, "/health", "").Code)
	assert.Equal(t, http.StatusOK, get(healthy, "/ready", "").Code)

	degraded := newServer(api.HealthDependencies{
		CheckDatabase: func(context.Context) error { return nil },
		CheckCache:    func(context.Context) error { return errors.New("connection refused") },
	})
	recorder := get(degraded, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "connection refused")

	assert.Equal(t, http.StatusOK, get(healthy, "/metrics", "").Code)
}

/*
TestServer_Routes mounts every group and resolves the viewer.
*/
func TestServer_Routes(t *testing.T) {
	server := newServer(api.HealthDependencies{})

	for _, prefix := range []string{"/books", "/tags", "/authors", "/readings", "/wishlist", "/auth", "/account", "/groups"} {
		assert.Equal(t, http.StatusOK, get(server, "/api/v1"+prefix, "").Code, prefix)
	}

	assert.Equal(t, "0190f5c2-0000-7000-8000-0000000000a1", get(server, "/api/v1/books", "valid").Body.String())
	assert.Equal(t, http.StatusUnauthorized, get(server, "/api/v1/books", "forged").Code)
	assert.Equal(t, http.StatusNotFound, get(server, "/api/v1/loans", "").Code)
}
