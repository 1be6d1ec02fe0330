// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
	"github.com/taibuivan/librio/internal/platform/postgres"
	"github.com/taibuivan/librio/pkg/pagination"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func authorColumns() []any {
	columns := make([]any, 0, len(schema.Author.Columns()))
	for _, column := range schema.Author.Columns() {
		columns = append(columns, goqu.C(column))
	}
	return columns
}

func searchDataset(filter Filter) *goqu.SelectDataset {
	dataset := postgres.From(goqu.I(schema.Author.Table))
	if search := strings.TrimSpace(filter.Query); search != "" {
		dataset = dataset.Where(goqu.C(schema.Author.Name).ILike("%" + postgres.EscapeLike(search) + "%"))
	}
	return dataset
}

// ListSQL renders the search page query and the matching count query.
func ListSQL(filter Filter, page pagination.Params) (string, []any, string, []any, error) {
	listDataset := searchDataset(filter).
		Select(authorColumns()...).
		Order(goqu.C(schema.Author.Name).Asc(), goqu.C(schema.Author.ID).Asc())
	if !page.Unbounded() {
		listDataset = listDataset.Limit(uint(page.Limit)).Offset(uint(page.Offset()))
	}

	listQuery, listArgs, err := listDataset.ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}

	countQuery, countArgs, err := searchDataset(filter).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	return listQuery, listArgs, countQuery, countArgs, nil
}

func scanAuthor(row pgx.Row) (*Author, error) {
	a := &Author{}
	err := row.Scan(&a.ID, &a.Name, &a.BirthDate, &a.DeathDate, &a.Biography, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (repository *PostgresRepository) ListAuthors(context context.Context, filter Filter, page pagination.Params) ([]*Author, int, error) {
	query, args, countQuery, countArgs, err := ListSQL(filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("author: build list query: %w", err)
	}

	var total int
	if err := repository.db.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	authors := make([]*Author, 0)
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_authors")
	}

	return authors, total, nil
}

func (repository *PostgresRepository) GetAuthor(context context.Context, id int) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		strings.Join(schema.Author.Columns(), ", "), schema.Author.Table, schema.Author.ID,
	)

	a, err := scanAuthor(repository.db.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAuthorNotFound
		}
		return nil, dberr.Wrap(err, "get_author")
	}
	return a, nil
}

func (repository *PostgresRepository) CreateAuthor(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s
	`,
		schema.Author.Table, schema.Author.Name, schema.Author.BirthDate, schema.Author.DeathDate, schema.Author.Biography,
		schema.Author.ID, schema.Author.CreatedAt, schema.Author.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.Name, a.BirthDate, a.DeathDate, a.Biography).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

func (repository *PostgresRepository) UpdateAuthor(context context.Context, a *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		schema.Author.Table, schema.Author.Name, schema.Author.BirthDate, schema.Author.DeathDate,
		schema.Author.Biography, schema.Author.UpdatedAt, schema.Author.ID,
		schema.Author.CreatedAt, schema.Author.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, a.ID, a.Name, a.BirthDate, a.DeathDate, a.Biography).Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAuthorNotFound
	}
	return dberr.Wrap(err, "update_author")
}

func (repository *PostgresRepository) DeleteAuthor(context context.Context, id int) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Author.Table, schema.Author.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_author")
	}

	if cmd.RowsAffected() == 0 {
		return ErrAuthorNotFound
	}
	return nil
}
