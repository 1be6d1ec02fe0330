// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/respond"
	"github.com/taibuivan/librio/internal/platform/sec"
)

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// PermissionChecker answers permission-group questions.
type PermissionChecker interface {
	Can(userID, object, action string) bool
}

// Authenticate verifies a Bearer token when one is present.
//
// # Flow
//  1. No Authorization header: the request continues anonymously.
//  2. Malformed header or invalid token: 401.
//  3. Valid token: the claims are stored in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			noteUser(request.Context(), claims.UserID)
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests with 401.
// It must be mounted after [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequirePermission rejects requests whose user lacks action on object.
//
// Anonymous requests get 401, users outside every granting group get 403.
// Administrators pass without a group lookup.
func RequirePermission(checker PermissionChecker, object, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			if !sec.UserRole(claims.Role).IsAdmin() && !checker.Can(claims.UserID, object, action) {
				respond.Error(writer, request, apperr.Forbidden("You do not have permission to "+action+" this "+object))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
