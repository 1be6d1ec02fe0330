// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates PostgreSQL driver errors into [apperr.AppError] values.
//
// Uniqueness is enforced by the database, never by check-then-insert in Go, so
// the SQLSTATE of a failed write is the only reliable signal that a row already
// exists. Wrap classifies it once for every repository.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/librio/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap inspects a database error and maps it to an [apperr.AppError].
//
// The action names the failed operation and ends up in the internal cause
// (e.g. "create_reading"); it is never shown to clients.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return apperr.Conflict("Resource already exists").WithCause(err)
		case pgerrcode.ForeignKeyViolation:
			return apperr.Unprocessable("Referenced resource does not exist").WithCause(err)
		case pgerrcode.CheckViolation:
			return apperr.ValidationError("Value violates a storage constraint").WithCause(err)
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505, optionally
// restricted to a named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
