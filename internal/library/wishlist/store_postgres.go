// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package wishlist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) Add(context context.Context, userID, bookID string) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		schema.Wishlist.Table, schema.Wishlist.UserID, schema.Wishlist.BookID)

	tag, err := repository.pool.Exec(context, query, userID, bookID)
	if err != nil {
		return false, dberr.Wrap(err, "add_wishlist")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) Remove(context context.Context, userID, bookID string) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.Wishlist.Table, schema.Wishlist.UserID, schema.Wishlist.BookID)

	tag, err := repository.pool.Exec(context, query, userID, bookID)
	if err != nil {
		return false, dberr.Wrap(err, "remove_wishlist")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresRepository) Contains(context context.Context, userID, bookID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		schema.Wishlist.Table, schema.Wishlist.UserID, schema.Wishlist.BookID)

	var found bool
	if err := repository.pool.QueryRow(context, query, userID, bookID).Scan(&found); err != nil {
		return false, dberr.Wrap(err, "contains_wishlist")
	}
	return found, nil
}
