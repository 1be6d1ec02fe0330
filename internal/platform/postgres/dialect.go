// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postgres

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	// Registers the "postgres" goqu dialect ($n placeholders, ILIKE).
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
)

// Dialect builds PostgreSQL statements with prepared ($n) placeholders.
var Dialect = goqu.Dialect("postgres")

// From starts a prepared SELECT on the given table expression.
func From(table any) *goqu.SelectDataset {
	return Dialect.From(table).Prepared(true)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike neutralises LIKE wildcards; PostgreSQL's default escape is '\'.
func EscapeLike(text string) string {
	return likeEscaper.Replace(text)
}
