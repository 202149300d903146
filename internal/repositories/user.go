package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/questly/auth-service/internal/logger"
	"github.com/questly/auth-service/internal/middlewares"
	"github.com/questly/auth-service/internal/models"
)

// ErrUniqueViolation is returned when an insert collides with the
// username or email uniqueness constraint.
var ErrUniqueViolation = errors.New("username or email already exists")

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// UserReadRepository provides read-only access to user records.
type UserReadRepository struct {
	db *sqlx.DB
}

func NewUserReadRepository(db *sqlx.DB) *UserReadRepository {
	return &UserReadRepository{db: db}
}

// GetByUsernameOrEmail returns the user matching the given username and/or
// email, comparing case-insensitively. Returns nil when no user matches.
func (r *UserReadRepository) GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash,
		       password_reset_code, password_reset_expires,
		       created_at, updated_at
		FROM users
		WHERE ($1::VARCHAR IS NULL OR username = LOWER($1))
		  AND ($2::VARCHAR IS NULL OR email = LOWER($2))
		LIMIT 1
	`

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.ext(ctx), &user, query, username, email)

	logger.Log.Debugw("user select",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByLogin returns the user whose username OR email equals the given
// identifier, compared case-insensitively. Returns nil when no user matches.
func (r *UserReadRepository) GetByLogin(ctx context.Context, login string) (*models.UserDB, error) {
	const query = `
		SELECT user_id, username, email, password_hash,
		       password_reset_code, password_reset_expires,
		       created_at, updated_at
		FROM users
		WHERE username = LOWER($1) OR email = LOWER($1)
		LIMIT 1
	`

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.ext(ctx), &user, query, login)

	logger.Log.Debugw("user select by login",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{login},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *UserReadRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// UserWriteRepository provides write access to user records.
type UserWriteRepository struct {
	db *sqlx.DB
}

func NewUserWriteRepository(db *sqlx.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// Save inserts a new user and returns the stored record. The uniqueness of
// username and email is enforced by the database; a concurrent insert with
// the same identity yields exactly one success and one ErrUniqueViolation.
func (r *UserWriteRepository) Save(ctx context.Context, username, email, passwordHash string) (*models.UserDB, error) {
	const query = `
		INSERT INTO users (username, email, password_hash, created_at, updated_at)
		VALUES (LOWER($1), LOWER($2), $3, NOW(), NOW())
		RETURNING user_id, username, email, password_hash,
		          password_reset_code, password_reset_expires,
		          created_at, updated_at
	`
	args := []any{username, email, passwordHash}

	var user models.UserDB
	err := sqlx.GetContext(ctx, r.ext(ctx), &user, query, args...)

	logger.Log.Debugw("user insert",
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{username, email},
		"error", err,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return nil, ErrUniqueViolation
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// SetResetCode stores a pending reset code and its expiry in a single
// update. A previously pending code is overwritten.
func (r *UserWriteRepository) SetResetCode(ctx context.Context, userID uuid.UUID, code string, expires time.Time) error {
	const query = `
		UPDATE users
		SET password_reset_code = $1,
		    password_reset_expires = $2,
		    updated_at = NOW()
		WHERE user_id = $3
	`

	_, err := r.ext(ctx).ExecContext(ctx, query, code, expires, userID)

	logger.Log.Debugw("user reset code update",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"error", err,
	)

	return err
}

// UpdatePassword writes a new password hash and clears any pending reset
// code and expiry in the same statement.
func (r *UserWriteRepository) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1,
		    password_reset_code = NULL,
		    password_reset_expires = NULL,
		    updated_at = NOW()
		WHERE user_id = $2
	`

	_, err := r.ext(ctx).ExecContext(ctx, query, passwordHash, userID)

	logger.Log.Debugw("user password update",
		"query", strings.Join(strings.Fields(query), " "),
		"user_id", userID,
		"error", err,
	)

	return err
}

func (r *UserWriteRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx := middlewares.GetTxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}
