// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package repository provides typed access to the award tables.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"codeberg.org/oliverandrich/teaching-award/internal/database"
	"github.com/vinovest/sqlx"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a UNIQUE constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraint is returned when the store rejects a row, e.g. a
	// nomination from an email domain outside email_domains.
	ErrConstraint = errors.New("constraint violated")
	// ErrUnsupportedMatcher is returned when the store lacks the SQL
	// functions a search matcher relies on.
	ErrUnsupportedMatcher = errors.New("search matcher not supported by store")
)

// querier is the subset of sqlx shared by *sqlx.DB and *sqlx.Tx.
type querier interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// Repository runs queries either directly on the pool or inside a
// transaction started with InTx.
type Repository struct {
	db      *sqlx.DB
	q       querier
	txBound bool
}

// New creates a new Repository instance.
func New(db *sqlx.DB) *Repository {
	return &Repository{db: db, q: db}
}

// InTx runs fn with a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
// Calls on a repository that is already transactional reuse it.
func (r *Repository) InTx(ctx context.Context, fn func(tx Store) error) error {
	return r.inTx(ctx, func(tx *Repository) error { return fn(tx) })
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.txBound {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&Repository{db: r.db, q: tx, txBound: true}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *Repository) get(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(r.q.GetContext(ctx, dest, r.q.Rebind(query), args...))
}

func (r *Repository) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(r.q.SelectContext(ctx, dest, r.q.Rebind(query), args...))
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return 0, wrapError(err)
	}
	return res.RowsAffected()
}

// wrapError converts driver errors to repository errors.
func wrapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case database.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case database.IsCheckViolation(err):
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	case database.IsUndefinedFunction(err):
		return fmt.Errorf("%w: %v", ErrUnsupportedMatcher, err)
	}
	return err
}

// IsUndefinedFunction reports whether err means a query used SQL
// functions the store does not provide.
func IsUndefinedFunction(err error) bool {
	return errors.Is(err, ErrUnsupportedMatcher)
}
