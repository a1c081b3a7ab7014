// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

// Package postgres implements the auth repository contracts on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authgate/authgate/internal/auth"
)

const userColumns = "id, email, password_hash, session_id, reset_token, created_at, updated_at"

// poolIface is the subset of pgxpool.Pool the repository uses. Both
// *pgxpool.Pool and pgxmock satisfy it.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements auth.UserRepository using PostgreSQL. Every
// mutation is a single statement, so row atomicity comes from the database.
type UserRepository struct {
	pool poolIface
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool poolIface) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, session_id, reset_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.SessionID,
		user.ResetToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return oops.Code("USER_DUPLICATE_EMAIL").
				With("email", user.Email).
				Wrap(auth.ErrDuplicateEmail)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// GetBySessionID retrieves the user holding the given session token hash.
func (r *UserRepository) GetBySessionID(ctx context.Context, sessionID string) (*auth.User, error) {
	return r.getByToken(ctx, "session_id", sessionID)
}

// GetByResetToken retrieves the user with the given pending reset token hash.
func (r *UserRepository) GetByResetToken(ctx context.Context, resetToken string) (*auth.User, error) {
	return r.getByToken(ctx, "reset_token", resetToken)
}

// getByToken looks a user up by one of the unique token columns. The column
// name is fixed by the two exported callers, never caller-supplied. A second
// matching row means the uniqueness invariant broke; that is surfaced as
// ErrAmbiguousMatch rather than silently picking one.
func (r *UserRepository) getByToken(ctx context.Context, column, value string) (*auth.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = $1
		LIMIT 2
	`, value)
	if err != nil {
		return nil, oops.Code("USER_GET_BY_TOKEN_FAILED").
			With("operation", "get user by "+column).
			Wrap(err)
	}
	defer rows.Close()

	var user *auth.User
	for rows.Next() {
		if user != nil {
			return nil, oops.Code("USER_AMBIGUOUS_MATCH").
				With("column", column).
				Wrap(auth.ErrAmbiguousMatch)
		}
		user, err = scanUser(rows)
		if err != nil {
			return nil, oops.Code("USER_SCAN_FAILED").
				With("operation", "scan user row").
				Wrap(err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_ROWS_ERROR").
			With("operation", "iterate user rows").
			Wrap(err)
	}
	if user == nil {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return user, nil
}

// UpdateSession sets or clears the session token hash for a user.
func (r *UserRepository) UpdateSession(ctx context.Context, id ulid.ULID, sessionID *string) error {
	return r.updateColumn(ctx, id, "session_id", sessionID)
}

// UpdateResetToken sets or clears the pending reset token hash for a user.
func (r *UserRepository) UpdateResetToken(ctx context.Context, id ulid.ULID, resetToken *string) error {
	return r.updateColumn(ctx, id, "reset_token", resetToken)
}

// UpdatePassword replaces the password hash for a user.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	return r.updateColumn(ctx, id, "password_hash", &passwordHash)
}

// updateColumn applies a single-column partial update. Only the three
// mutable columns are reachable through the exported wrappers; email and id
// have no update path.
func (r *UserRepository) updateColumn(ctx context.Context, id ulid.ULID, column string, value *string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET `+column+` = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), value, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").
			With("operation", "update "+column).
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ConsumeResetToken atomically replaces the password, clears the reset
// token, and clears any active session for the user holding the token hash.
// The WHERE clause doubles as the compare-and-swap: a token already consumed
// (or never issued) matches no row.
func (r *UserRepository) ConsumeResetToken(ctx context.Context, resetToken, passwordHash string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, reset_token = NULL, session_id = NULL, updated_at = $3
		WHERE reset_token = $1
		RETURNING `+userColumns+`
	`, resetToken, passwordHash, time.Now())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("RESET_TOKEN_INVALID").Wrap(auth.ErrInvalidToken)
	}
	if err != nil {
		return nil, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "consume reset token").
			Wrap(err)
	}
	return user, nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr        string
		email        string
		passwordHash string
		sessionID    *string
		resetToken   *string
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := row.Scan(&idStr, &email, &passwordHash, &sessionID, &resetToken, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		SessionID:    sessionID,
		ResetToken:   resetToken,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
