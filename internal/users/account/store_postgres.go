// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
	"github.com/taibuivan/librio/internal/users/auth"
)

// PostgresRepository implements [Repository] using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.BirthDate,
		schema.UserAccount.HideAdult, schema.UserAccount.Role, schema.UserAccount.LastLoginAt,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.Table,
		schema.UserAccount.ID)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, id).Scan(
		&profile.ID,
		&profile.Username,
		&profile.BirthDate,
		&profile.HideAdult,
		&profile.Role,
		&profile.LastLoginAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, dberr.Wrap(err, "find_account")
	}
	return profile, nil
}

func (repository *PostgresRepository) PasswordHash(context context.Context, id string) (string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserAccount.Password, schema.UserAccount.Table, schema.UserAccount.ID)

	var hash string
	if err := repository.pool.QueryRow(context, query, id).Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrAccountNotFound
		}
		return "", dberr.Wrap(err, "find_password_hash")
	}
	return hash, nil
}

func (repository *PostgresRepository) Update(context context.Context, profile *Profile) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.Username, schema.UserAccount.BirthDate, schema.UserAccount.HideAdult,
		schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID,
		schema.UserAccount.UpdatedAt)

	err := repository.pool.QueryRow(context, query,
		profile.ID,
		profile.Username,
		profile.BirthDate,
		profile.HideAdult,
	).Scan(&profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if dberr.IsUniqueViolation(err, schema.UserAccount.UniqueUsername) {
			return auth.ErrUsernameTaken.WithCause(err)
		}
		return dberr.Wrap(err, "update_account")
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_account")
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func (repository *PostgresRepository) ListSessions(context context.Context, userID string) ([]SessionInfo, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL AND %s > NOW()
		ORDER BY %s DESC`,
		schema.UserSession.ID, schema.UserSession.TokenHash, schema.UserSession.UserAgent, schema.UserSession.IPAddress,
		schema.UserSession.CreatedAt, schema.UserSession.ExpiresAt,
		schema.UserSession.Table,
		schema.UserSession.UserID, schema.UserSession.RevokedAt, schema.UserSession.ExpiresAt,
		schema.UserSession.CreatedAt)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_sessions")
	}
	defer rows.Close()

	sessions := make([]SessionInfo, 0)
	for rows.Next() {
		var session SessionInfo
		if err := rows.Scan(&session.ID, &session.TokenHash, &session.UserAgent, &session.IPAddress, &session.CreatedAt, &session.ExpiresAt); err != nil {
			return nil, dberr.Wrap(err, "scan_session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "list_sessions")
	}
	return sessions, nil
}

func (repository *PostgresRepository) RevokeSession(context context.Context, userID, sessionID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s = $2 AND %s IS NULL`,
		schema.UserSession.Table, schema.UserSession.RevokedAt,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.RevokedAt)

	tag, err := repository.pool.Exec(context, query, sessionID, userID)
	if err != nil {
		return false, dberr.Wrap(err, "revoke_session")
	}
	return tag.RowsAffected() == 1, nil
}
