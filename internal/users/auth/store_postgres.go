// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/librio/internal/platform/database/schema"
	"github.com/taibuivan/librio/internal/platform/dberr"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgxpool.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var userColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s",
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Password,
	schema.UserAccount.BirthDate, schema.UserAccount.Role, schema.UserAccount.LastLoginAt,
	schema.UserAccount.CreatedAt)

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.BirthDate,
		&user.Role,
		&user.LastLoginAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Password,
		schema.UserAccount.BirthDate, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt)

	err := repository.pool.QueryRow(context, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.BirthDate,
		string(user.Role),
	).Scan(&user.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err, schema.UserAccount.UniqueUsername) {
			return ErrUsernameTaken.WithCause(err)
		}
		return dberr.Wrap(err, "create_user")
	}
	return nil
}

func (repository *PostgresUserRepository) findOne(context context.Context, action, column string, value any) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, userColumns, schema.UserAccount.Table, column)

	user, err := scanUser(repository.pool.QueryRow(context, query, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, dberr.Wrap(err, action)
	}
	return user, nil
}

func (repository *PostgresUserRepository) FindByUsername(context context.Context, username string) (*User, error) {
	return repository.findOne(context, "find_user_by_username", schema.UserAccount.Username, username)
}

func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	return repository.findOne(context, "find_user_by_id", schema.UserAccount.ID, id)
}

func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, hash string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.Password, schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(context, query, userID, hash)
	if err != nil {
		return dberr.Wrap(err, "update_password")
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (repository *PostgresUserRepository) TouchLogin(context context.Context, userID string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt, schema.UserAccount.ID)

	if _, err := repository.pool.Exec(context, query, userID, at); err != nil {
		return dberr.Wrap(err, "touch_login")
	}
	return nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] using pgxpool.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`,
		schema.UserSession.Table,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.IPAddress, schema.UserSession.UserAgent, schema.UserSession.ExpiresAt,
		schema.UserSession.CreatedAt)

	err := repository.pool.QueryRow(context, query,
		session.ID,
		session.UserID,
		session.TokenHash,
		session.IPAddress,
		session.UserAgent,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "create_session")
	}
	return nil
}

func (repository *PostgresSessionRepository) FindActive(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NULL AND %s > NOW()`,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.IPAddress, schema.UserSession.UserAgent, schema.UserSession.ExpiresAt,
		schema.UserSession.RevokedAt, schema.UserSession.CreatedAt,
		schema.UserSession.Table,
		schema.UserSession.TokenHash, schema.UserSession.RevokedAt, schema.UserSession.ExpiresAt)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.ExpiresAt,
		&session.RevokedAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidRefresh
		}
		return nil, dberr.Wrap(err, "find_session")
	}
	return session, nil
}

func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UserSession.Table, schema.UserSession.RevokedAt, schema.UserSession.ID, schema.UserSession.RevokedAt)

	tag, err := repository.pool.Exec(context, query, sessionID)
	if err != nil {
		return false, dberr.Wrap(err, "revoke_session")
	}
	return tag.RowsAffected() == 1, nil
}

func (repository *PostgresSessionRepository) RevokeOthers(context context.Context, userID, keepSessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s <> $2 AND %s IS NULL`,
		schema.UserSession.Table, schema.UserSession.RevokedAt,
		schema.UserSession.UserID, schema.UserSession.ID, schema.UserSession.RevokedAt)

	if _, err := repository.pool.Exec(context, query, userID, keepSessionID); err != nil {
		return dberr.Wrap(err, "revoke_other_sessions")
	}
	return nil
}

func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.UserSession.Table, schema.UserSession.RevokedAt, schema.UserSession.UserID, schema.UserSession.RevokedAt)

	if _, err := repository.pool.Exec(context, query, userID); err != nil {
		return dberr.Wrap(err, "revoke_all_sessions")
	}
	return nil
}

func (repository *PostgresSessionRepository) DeleteExpired(context context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s <= NOW()`, schema.UserSession.Table, schema.UserSession.ExpiresAt)

	tag, err := repository.pool.Exec(context, query)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_expired_sessions")
	}
	return tag.RowsAffected(), nil
}
