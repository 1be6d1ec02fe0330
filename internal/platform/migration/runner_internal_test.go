// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/librio":   "pgx5://u:p@db:5432/librio",
		"postgresql://u:p@db:5432/librio": "pgx5://u:p@db:5432/librio",
		"pgx5://u:p@db:5432/librio":       "pgx5://u:p@db:5432/librio",
		"host=db dbname=librio":           "host=db dbname=librio",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, toPgx5DSN(input), input)
	}
}
