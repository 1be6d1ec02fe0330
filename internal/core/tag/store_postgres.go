// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
)

// PostgresRepository implements [Repository].
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectColumns = strings.Join(schema.Tag.Columns(), ", ")

func scanTag(row pgx.Row) (*Tag, error) {
	t := &Tag{}
	if err := row.Scan(&t.ID, &t.Label, &t.Slug, &t.IsAdult, &t.Editable, &t.CreatedAt); err != nil {
		return nil, err
	}
	return t, nil
}

func (repository *PostgresRepository) List(context context.Context, filter Filter) ([]*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, selectColumns, schema.Tag.Table)
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(` WHERE %s ILIKE '%%' || $1 || '%%'`, schema.Tag.Label)
		args = append(args, search)
	}
	query += fmt.Sprintf(` ORDER BY %s ASC, %s ASC`, schema.Tag.Label, schema.Tag.ID)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_tags")
	}
	defer rows.Close()

	tags := make([]*Tag, 0)
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_tags")
	}

	return tags, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id int) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, selectColumns, schema.Tag.Table, schema.Tag.ID)

	t, err := scanTag(repository.db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTagNotFound
		}
		return nil, dberr.Wrap(err, "get_tag")
	}
	return t, nil
}

func (repository *PostgresRepository) Create(context context.Context, t *Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.Tag.Table, schema.Tag.Label, schema.Tag.Slug, schema.Tag.IsAdult, schema.Tag.Editable,
		schema.Tag.ID, schema.Tag.CreatedAt,
	)

	err := repository.db.QueryRow(context, query, t.Label, t.Slug, t.IsAdult, t.Editable).Scan(&t.ID, &t.CreatedAt)
	if dberr.IsUniqueViolation(err, schema.Tag.UniqueSlug) {
		return ErrSlugTaken.WithCause(err)
	}
	return dberr.Wrap(err, "create_tag")
}

func (repository *PostgresRepository) Update(context context.Context, t *Tag) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s`,
		schema.Tag.Table, schema.Tag.Label, schema.Tag.Slug, schema.Tag.IsAdult, schema.Tag.Editable,
		schema.Tag.ID, schema.Tag.Editable,
	)

	result, err := repository.db.Exec(context, query, t.ID, t.Label, t.Slug, t.IsAdult, t.Editable)
	if dberr.IsUniqueViolation(err, schema.Tag.UniqueSlug) {
		return ErrSlugTaken.WithCause(err)
	}
	if err != nil {
		return dberr.Wrap(err, "update_tag")
	}
	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s`, schema.Tag.Table, schema.Tag.ID, schema.Tag.Editable)

	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if result.RowsAffected() == 0 {
		return ErrTagNotFound
	}
	return nil
}
