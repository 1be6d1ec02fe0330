// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package uuid generates the time-ordered UUIDv7 identifiers used as primary
// keys for books, accounts, sessions and reading records.
package uuid

import "github.com/google/uuid"

// New generates a new UUIDv7 string.
// It panics only if the OS random source fails.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}
	return id.String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	return uuid.Validate(s) == nil
}
