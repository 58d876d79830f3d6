package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories depend on.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var (
	// ErrDuplicateEmail is returned when an insert hits users_email_key.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateUsername is returned when an insert hits users_username_key.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrTicketResolved is returned when a guarded update finds the ticket already resolved.
	ErrTicketResolved = errors.New("ticket already resolved")
)

const (
	uniqueViolation         = "23505"
	usersEmailConstraint    = "users_email_key"
	usersUsernameConstraint = "users_username_key"
)

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case usersEmailConstraint:
		return ErrDuplicateEmail
	case usersUsernameConstraint:
		return ErrDuplicateUsername
	}
	return err
}

func requireRow(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
