// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil extracts typed values from HTTP requests.

It hides the router's parameter API and gives every handler the same error
behaviour for malformed bodies, IDs and query strings.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/librio/internal/platform/apperr"
	"github.com/taibuivan/librio/internal/platform/ctxutil"
	"github.com/taibuivan/librio/internal/platform/sec"
	"github.com/taibuivan/librio/internal/platform/validate"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = time.DateOnly

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body into target. Unknown fields are rejected.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(writer, request.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
IntParam parses a named URL parameter as a positive integer.

Returns:
  - error: apperr.NotFound(resource) when the value is not a positive integer
*/
func IntParam(request *http.Request, name, resource string) (int, error) {
	value, ok := positiveID(chi.URLParam(request, name))
	if !ok {
		return 0, apperr.NotFound(resource)
	}
	return value, nil
}

// positiveID parses a serial key: a positive integer that fits the
// database's 32-bit integer columns.
func positiveID(raw string) (int, bool) {
	value, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || value < 1 {
		return 0, false
	}
	return int(value), true
}

// QueryInts parses a repeated or comma-separated integer query parameter.
// Values that are not positive 32-bit integers are rejected.
func QueryInts(request *http.Request, name string) ([]int, error) {
	var values []int
	for _, raw := range request.URL.Query()[name] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			value, ok := positiveID(part)
			if !ok {
				return nil, validate.FieldError(name, "Must be a list of positive integers")
			}
			values = append(values, value)
		}
	}
	return values, nil
}

// QueryInt parses an optional positive integer query parameter.
func QueryInt(request *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(request.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	value, ok := positiveID(raw)
	if !ok {
		return nil, validate.FieldError(name, "Must be a positive integer")
	}
	return &value, nil
}

/*
ParseDate parses an optional calendar date in [DateLayout].

Returns:
  - *time.Time: nil when value is blank
  - error: a field validation error when value is malformed
*/
func ParseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, validate.FieldError(field, "Must be a date in YYYY-MM-DD format")
	}
	return &parsed, nil
}

// Claims returns the authenticated user claims, or nil for anonymous requests.
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - error: apperr.Unauthorized if the request is anonymous
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

// RequiredUserID returns the ID of the logged-in user.
func RequiredUserID(request *http.Request) (string, error) {
	claims, err := RequiredClaims(request)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
