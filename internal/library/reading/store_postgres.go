// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reading

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/core/book"
	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
	"github.com/taibuivan/librio/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgxpool and goqu.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const alias = "r"

// fieldColumns maps updatable fields to their columns.
var fieldColumns = map[string]string{
	FieldStatus:    schema.Reading.Status,
	FieldStartDate: schema.Reading.StartDate,
	FieldEndDate:   schema.Reading.EndDate,
	FieldBookmark:  schema.Reading.Bookmark,
	FieldRating:    schema.Reading.Rating,
	FieldComment:   schema.Reading.Comment,
}

func readingColumn(column string) exp.IdentifierExpression {
	return goqu.I(alias + "." + column)
}

// selectDataset joins every record with its book, authors and tags.
func selectDataset() *goqu.SelectDataset {
	columns := make([]any, 0, len(schema.Reading.Columns()))
	for _, column := range schema.Reading.Columns() {
		columns = append(columns, readingColumn(column))
	}

	return postgres.From(goqu.I(schema.Reading.Table).As(alias)).
		Join(
			goqu.I(schema.Book.Table).As(book.Alias),
			goqu.On(goqu.I(book.Alias+"."+schema.Book.ID).Eq(readingColumn(schema.Reading.BookID))),
		).
		Select(append(columns, book.SelectColumns()...)...)
}

// ListSQL renders the library query of one reader.
func ListSQL(readerID string, plan book.Plan, status Status) (string, []any, error) {
	conditions := []exp.Expression{readingColumn(schema.Reading.ReaderID).Eq(readerID)}
	if where := plan.Where(); where != nil {
		conditions = append(conditions, where)
	}
	if status != "" {
		conditions = append(conditions, readingColumn(schema.Reading.Status).Eq(string(status)))
	}

	return selectDataset().
		Where(conditions...).
		Order(goqu.I(book.Alias+"."+schema.Book.Title).Asc(), readingColumn(schema.Reading.ID).Asc()).
		ToSQL()
}

// UpdateSQL renders the partial update of the named fields.
func UpdateSQL(reading *Reading, fields ...string) (string, []any, error) {
	record := goqu.Record{schema.Reading.UpdatedAt: goqu.L("NOW()")}
	for _, field := range fields {
		column, ok := fieldColumns[field]
		if !ok {
			return "", nil, fmt.Errorf("reading: unknown field %q", field)
		}
		record[column] = fieldValue(reading, field)
	}

	return postgres.Dialect.Update(goqu.I(schema.Reading.Table)).
		Prepared(true).
		Set(record).
		Where(goqu.C(schema.Reading.ID).Eq(reading.ID)).
		Returning(goqu.C(schema.Reading.UpdatedAt)).
		ToSQL()
}

func fieldValue(reading *Reading, field string) any {
	switch field {
	case FieldStatus:
		return string(reading.Status)
	case FieldStartDate:
		return nullable(reading.StartDate)
	case FieldEndDate:
		return nullable(reading.EndDate)
	case FieldBookmark:
		return nullable(reading.Bookmark)
	case FieldRating:
		return nullable(reading.Rating)
	default:
		return reading.Comment
	}
}

// nullable turns a nil pointer into SQL NULL.
func nullable[T any](value *T) any {
	if value == nil {
		return nil
	}
	return *value
}

func scanReading(row pgx.Row) (*Reading, error) {
	r := &Reading{Book: &book.Book{}}
	targets := []any{
		&r.ID, &r.ReaderID, &r.BookID, &r.Status, &r.StartDate, &r.EndDate,
		&r.Bookmark, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt,
	}
	if err := row.Scan(append(targets, book.ScanTargets(r.Book)...)...); err != nil {
		return nil, err
	}
	return r, nil
}

func (repository *PostgresRepository) findOne(context context.Context, action string, condition exp.Expression) (*Reading, error) {
	query, args, err := selectDataset().Where(condition).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("reading: build %s query: %w", action, err)
	}

	r, err := scanReading(repository.pool.QueryRow(context, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, dberr.Wrap(err, action)
	}
	return r, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Reading, error) {
	return repository.findOne(context, "find_reading", readingColumn(schema.Reading.ID).Eq(id))
}

func (repository *PostgresRepository) FindByReaderBook(context context.Context, readerID, bookID string) (*Reading, error) {
	return repository.findOne(context, "find_reading_for_book", goqu.And(
		readingColumn(schema.Reading.ReaderID).Eq(readerID),
		readingColumn(schema.Reading.BookID).Eq(bookID),
	))
}

func (repository *PostgresRepository) ListByReader(context context.Context, readerID string, plan book.Plan, status Status) ([]*Reading, error) {
	query, args, err := ListSQL(readerID, plan, status)
	if err != nil {
		return nil, fmt.Errorf("reading: build library query: %w", err)
	}

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_library")
	}
	defer rows.Close()

	readings := make([]*Reading, 0)
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_reading")
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_library")
	}

	return readings, nil
}

// Create relies on the (reader, book) unique constraint; there is no
// existence check beforehand.
func (repository *PostgresRepository) Create(context context.Context, r *Reading) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s`,
		schema.Reading.Table,
		schema.Reading.ID, schema.Reading.ReaderID, schema.Reading.BookID, schema.Reading.Status,
		schema.Reading.CreatedAt, schema.Reading.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query, r.ID, r.ReaderID, r.BookID, string(r.Status)).Scan(&r.CreatedAt, &r.UpdatedAt)
	if dberr.IsUniqueViolation(err, schema.Reading.UniqueReaderBook) {
		return ErrReadingExists.WithCause(err)
	}
	return dberr.Wrap(err, "create_reading")
}

func (repository *PostgresRepository) Update(context context.Context, r *Reading, fields ...string) error {
	query, args, err := UpdateSQL(r, fields...)
	if err != nil {
		return err
	}

	if err := repository.pool.QueryRow(context, query, args...).Scan(&r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrReadingNotFound
		}
		return dberr.Wrap(err, "update_reading")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.Reading.Table, schema.Reading.ID)

	result, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_reading")
	}
	if result.RowsAffected() == 0 {
		return ErrReadingNotFound
	}
	return nil
}
