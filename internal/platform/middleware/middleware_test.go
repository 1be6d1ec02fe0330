// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/middleware"
	"github.com/taibuivan/librio/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	switch token {
	case "member":
		return &sec.AuthClaims{UserID: "u-member", Role: string(sec.RoleMember)}, nil
	case "admin":
		return &sec.AuthClaims{UserID: "u-admin", Role: string(sec.RoleAdmin)}, nil
	default:
		return nil, errors.New("bad token")
	}
}

type stubChecker map[string]bool

func (checker stubChecker) Can(userID, object, action string) bool {
	return checker[userID+":"+object+":"+action]
}

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func serve(handler http.Handler, token string) int {
	request := httptest.NewRequest(http.MethodPost, "/books", nil)
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder.Code
}

/*
TestAuthenticate covers anonymous, malformed, invalid and valid headers.
*/
func TestAuthenticate(t *testing.T) {
	var seen string
	handler := middleware.Authenticate(stubVerifier{})(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetUserID(request.Context())
	}))

	assert.Equal(t, http.StatusOK, serve(handler, ""))
	assert.Empty(t, seen)

	assert.Equal(t, http.StatusUnauthorized, serve(handler, "Token member"))
	assert.Equal(t, http.StatusUnauthorized, serve(handler, "Bearer forged"))

	assert.Equal(t, http.StatusOK, serve(handler, "Bearer member"))
	assert.Equal(t, "u-member", seen)
}

/*
TestRequirePermission checks 401, 403, group grant and admin bypass.
*/
func TestRequirePermission(t *testing.T) {
	checker := stubChecker{"u-member:book:create": true}

	create := middleware.Authenticate(stubVerifier{})(
		middleware.RequirePermission(checker, "book", "create")(okHandler))
	remove := middleware.Authenticate(stubVerifier{})(
		middleware.RequirePermission(checker, "book", "delete")(okHandler))

	assert.Equal(t, http.StatusUnauthorized, serve(create, ""))
	assert.Equal(t, http.StatusOK, serve(create, "Bearer member"))
	assert.Equal(t, http.StatusForbidden, serve(remove, "Bearer member"))
	assert.Equal(t, http.StatusOK, serve(remove, "Bearer admin"))
}

/*
TestRequestID echoes a client ID and generates one otherwise.
*/
func TestRequestID(t *testing.T) {
	handler := middleware.RequestID()(okHandler)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "abc")
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "abc", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, recorder.Header().Get(constants.HeaderXRequestID), 36)
}

/*
TestRateLimit rejects requests past the burst for one IP only.
*/
func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimitWith(ctx, 0.001, 2)(okHandler)

	send := func(ip string) int {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderXRealIP, ip)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

/*
TestPanicRecovery turns a panic into a 500.
*/
func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
}

type corsConfig struct {
	dev     bool
	origins []string
}

func (c corsConfig) IsDevelopment() bool      { return c.dev }
func (c corsConfig) AllowedOrigins() []string { return c.origins }

/*
TestCORS allows listed origin suffixes in production.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(corsConfig{origins: []string{"librio.app"}})(okHandler)

	check := func(origin string) string {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set(constants.HeaderOrigin, origin)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder.Header().Get("Access-Control-Allow-Origin")
	}

	assert.Equal(t, "https://librio.app", check("https://librio.app"))
	assert.Equal(t, "https://www.librio.app", check("https://www.librio.app"))
	assert.Empty(t, check("https://evil-librio.app"))
}

/*
TestRealIP prefers proxy headers.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", middleware.RealIP(request))
}
