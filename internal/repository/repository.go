// Package repository reads the reference datasets from a PostGIS database.
package repository

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Database is the subset of a pgx pool used by Repository.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
