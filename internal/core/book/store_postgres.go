// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
	"github.com/taibuivan/librio/internal/platform/postgres"
	"github.com/taibuivan/librio/pkg/pagination"
)

// PostgresRepository implements [Repository] using pgxpool and goqu.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a new [PostgresRepository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Query Building

var (
	// authorsJSON aggregates a book's authors, ordered by name.
	authorsJSON = goqu.L(fmt.Sprintf(
		`COALESCE((SELECT json_agg(json_build_object('id', a.%[1]s, 'name', a.%[2]s) ORDER BY a.%[2]s, a.%[1]s)
		FROM %[3]s ba JOIN %[4]s a ON a.%[1]s = ba.%[5]s WHERE ba.%[6]s = b.%[7]s), '[]')`,
		schema.Author.ID, schema.Author.Name,
		schema.BookAuthor.Table, schema.Author.Table,
		schema.BookAuthor.AuthorID, schema.BookAuthor.BookID, schema.Book.ID,
	)).As("authors")

	// tagsJSON aggregates a book's tags, ordered by label.
	tagsJSON = goqu.L(fmt.Sprintf(
		`COALESCE((SELECT json_agg(json_build_object('id', t.%[1]s, 'label', t.%[2]s, 'slug', t.%[3]s, 'is_adult', t.%[4]s) ORDER BY t.%[2]s, t.%[1]s)
		FROM %[5]s bt JOIN %[6]s t ON t.%[1]s = bt.%[7]s WHERE bt.%[8]s = b.%[9]s), '[]')`,
		schema.Tag.ID, schema.Tag.Label, schema.Tag.Slug, schema.Tag.IsAdult,
		schema.BookTag.Table, schema.Tag.Table,
		schema.BookTag.TagID, schema.BookTag.BookID, schema.Book.ID,
	)).As("tags")
)

// SelectColumns lists the book columns followed by the aggregated authors and
// tags, for queries that alias core.book as [Alias].
func SelectColumns() []any {
	columns := make([]any, 0, len(schema.Book.Columns())+2)
	for _, column := range schema.Book.Columns() {
		columns = append(columns, bookColumn(column))
	}
	return append(columns, authorsJSON, tagsJSON)
}

func fromBooks() *goqu.SelectDataset {
	return postgres.From(goqu.I(schema.Book.Table).As(Alias))
}

// ListSQL renders the page query for plan.
func ListSQL(plan Plan, page pagination.Params) (string, []any, error) {
	dataset := fromBooks().
		Select(SelectColumns()...).
		Order(bookColumn(schema.Book.Title).Asc(), bookColumn(schema.Book.ID).Asc())

	if where := plan.Where(); where != nil {
		dataset = dataset.Where(where)
	}
	if !page.Unbounded() {
		dataset = dataset.Limit(uint(page.Limit)).Offset(uint(page.Offset()))
	}
	return dataset.ToSQL()
}

// CountSQL renders the total-count query for plan.
func CountSQL(plan Plan) (string, []any, error) {
	dataset := fromBooks().Select(goqu.COUNT(goqu.Star()))
	if where := plan.Where(); where != nil {
		dataset = dataset.Where(where)
	}
	return dataset.ToSQL()
}

// ScanTargets returns the destinations matching [SelectColumns].
func ScanTargets(book *Book) []any {
	return []any{
		&book.ID, &book.Title, &book.Synopsis, &book.PageCount, &book.Edition, &book.ISBN,
		&book.ReleaseDate, &book.CoverKey, &book.CreatedAt, &book.UpdatedAt,
		&book.Authors, &book.Tags,
	}
}

func scanBook(row pgx.Row) (*Book, error) {
	book := &Book{}
	if err := row.Scan(ScanTargets(book)...); err != nil {
		return nil, err
	}
	return book, nil
}

// # Reads

func (repository *PostgresRepository) List(context context.Context, plan Plan, page pagination.Params) ([]*Book, int, error) {
	countQuery, countArgs, err := CountSQL(plan)
	if err != nil {
		return nil, 0, fmt.Errorf("book: build count query: %w", err)
	}

	var total int
	if err := repository.pool.QueryRow(context, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}
	if total == 0 {
		return []*Book{}, 0, nil
	}

	listQuery, listArgs, err := ListSQL(plan, page)
	if err != nil {
		return nil, 0, fmt.Errorf("book: build list query: %w", err)
	}

	rows, err := repository.pool.Query(context, listQuery, listArgs...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := make([]*Book, 0, page.Limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "iterate_books")
	}

	return books, total, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	query, args, err := fromBooks().
		Select(SelectColumns()...).
		Where(bookColumn(schema.Book.ID).Eq(id)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("book: build find query: %w", err)
	}

	book, err := scanBook(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, dberr.Wrap(err, "find_book")
	}
	return book, nil
}

func (repository *PostgresRepository) AverageRating(context context.Context, id string) (*float64, error) {
	query := fmt.Sprintf(`SELECT AVG(%s)::float8 FROM %s WHERE %s = $1 AND %s IS NOT NULL`,
		schema.Reading.Rating, schema.Reading.Table, schema.Reading.BookID, schema.Reading.Rating)

	var average *float64
	if err := repository.pool.QueryRow(context, query, id).Scan(&average); err != nil {
		return nil, dberr.Wrap(err, "average_rating")
	}
	if average == nil {
		return nil, nil
	}

	rounded := math.Round(*average*10) / 10
	return &rounded, nil
}

// # Writes

func (repository *PostgresRepository) Create(context context.Context, book *Book, authorIDs, tagIDs []int) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s`,
		schema.Book.Table,
		schema.Book.ID, schema.Book.Title, schema.Book.Synopsis, schema.Book.PageCount,
		schema.Book.Edition, schema.Book.ISBN, schema.Book.ReleaseDate,
		schema.Book.CreatedAt, schema.Book.UpdatedAt,
	)

	return postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, query,
			book.ID, book.Title, book.Synopsis, book.PageCount, book.Edition, book.ISBN, book.ReleaseDate,
		).Scan(&book.CreatedAt, &book.UpdatedAt)
		if err != nil {
			return dberr.Wrap(err, "create_book")
		}
		return replaceAssociations(context, tx, book.ID, authorIDs, tagIDs)
	})
}

func (repository *PostgresRepository) Update(context context.Context, book *Book, authorIDs, tagIDs []int) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.Book.Table,
		schema.Book.Title, schema.Book.Synopsis, schema.Book.PageCount,
		schema.Book.Edition, schema.Book.ISBN, schema.Book.ReleaseDate, schema.Book.UpdatedAt,
		schema.Book.ID, schema.Book.UpdatedAt,
	)

	return postgres.InTx(context, repository.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(context, query,
			book.ID, book.Title, book.Synopsis, book.PageCount, book.Edition, book.ISBN, book.ReleaseDate,
		).Scan(&book.UpdatedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrBookNotFound
			}
			return dberr.Wrap(err, "update_book")
		}
		return replaceAssociations(context, tx, book.ID, authorIDs, tagIDs)
	})
}

// replaceAssociations rewrites the join rows for every non-nil ID list.
func replaceAssociations(context context.Context, tx pgx.Tx, bookID string, authorIDs, tagIDs []int) error {
	if authorIDs != nil {
		if err := replaceJoin(context, tx, schema.BookAuthor.Table, schema.BookAuthor.BookID, schema.BookAuthor.AuthorID, bookID, authorIDs); err != nil {
			return dberr.Wrap(err, "replace_book_authors")
		}
	}
	if tagIDs != nil {
		if err := replaceJoin(context, tx, schema.BookTag.Table, schema.BookTag.BookID, schema.BookTag.TagID, bookID, tagIDs); err != nil {
			return dberr.Wrap(err, "replace_book_tags")
		}
	}
	return nil
}

func replaceJoin(context context.Context, tx pgx.Tx, table, bookColumn, refColumn, bookID string, refIDs []int) error {
	deleteQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, bookColumn)
	if _, err := tx.Exec(context, deleteQuery, bookID); err != nil {
		return err
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		SELECT $1, ref FROM UNNEST($2::int[]) AS ref
		ON CONFLICT DO NOTHING`,
		table, bookColumn, refColumn,
	)
	_, err := tx.Exec(context, insertQuery, bookID, refIDs)
	return err
}

func (repository *PostgresRepository) SetCoverKey(context context.Context, id, key string) (string, error) {
	query := fmt.Sprintf(`
		UPDATE %[1]s AS b
		SET %[2]s = $2, %[3]s = NOW()
		FROM (SELECT %[4]s, %[2]s FROM %[1]s WHERE %[4]s = $1 FOR UPDATE) AS previous
		WHERE b.%[4]s = previous.%[4]s
		RETURNING previous.%[2]s`,
		schema.Book.Table, schema.Book.CoverKey, schema.Book.UpdatedAt, schema.Book.ID,
	)

	var previous string
	if err := repository.pool.QueryRow(context, query, id, key).Scan(&previous); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBookNotFound
		}
		return "", dberr.Wrap(err, "set_cover_key")
	}
	return previous, nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Book.Table, schema.Book.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_book")
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}
	return nil
}
