// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/librio/internal/platform/apperr"
)

/*
TestAppError_Is keeps sentinels matching through WithCause and wrapping.
*/
func TestAppError_Is(t *testing.T) {
	sentinel := apperr.Conflict("Username is already taken")
	cause := errors.New("duplicate key value violates unique constraint")

	wrapped := fmt.Errorf("register: %w", sentinel.WithCause(cause))

	assert.ErrorIs(t, wrapped, sentinel)
	assert.ErrorIs(t, wrapped, cause)
	assert.NotErrorIs(t, wrapped, apperr.Conflict("Slug is already taken"))
	assert.True(t, apperr.HasCode(wrapped, apperr.CodeConflict))
	assert.Equal(t, http.StatusConflict, apperr.As(wrapped).HTTPStatus)
}

/*
TestAs_Plain returns nil for errors outside the taxonomy.
*/
func TestAs_Plain(t *testing.T) {
	assert.Nil(t, apperr.As(errors.New("boom")))
	assert.False(t, apperr.HasCode(nil, apperr.CodeInternal))
}
