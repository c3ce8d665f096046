package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"skillswap/pkg/db"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")
)

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserBySubject(ctx context.Context, subject string) (*User, error)
	GetUserByID(ctx context.Context, userID string) (*User, error)
}

type repository struct {
	db db.SQLExecutor
}

func NewRepository(database db.SQLExecutor) Repository {
	return &repository{db: database}
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == constraint
}

// CreateUser creates a new user account
func (r *repository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, subject, email, username)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Subject, user.Email, user.Username,
	).Scan(&user.CreatedAt)

	if isUniqueViolation(err, "users_username_key") {
		return ErrUsernameExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUserBySubject retrieves a user by the provider's subject claim
func (r *repository) GetUserBySubject(ctx context.Context, subject string) (*User, error) {
	query := `
		SELECT id, subject, email, username, created_at
		FROM users
		WHERE subject = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, subject).Scan(
		&user.ID, &user.Subject, &user.Email, &user.Username, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by subject: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID
func (r *repository) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `
		SELECT id, subject, email, username, created_at
		FROM users
		WHERE id = $1
	`

	var user User
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID, &user.Subject, &user.Email, &user.Username, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}
