// Package sqlcheck validates compiled SQL against a scratch SQLite
// database whose schema is derived from the mapping model. Statements are
// prepared, never executed, so table and column references are checked
// without any data.
package sqlcheck

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapoql/pkg/mapping"

	// sqlite driver for the scratch database.
	_ "modernc.org/sqlite"
)

// Checker prepares statements against a database holding the mapped schema.
type Checker struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// New wraps an open database. The schema must be installed with Init.
func New(db *sql.DB, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Checker{DB: db, Logger: logger}
}

// Open creates an in-memory SQLite database holding the schema of model.
func Open(ctx context.Context, model *mapping.Model, logger *slog.Logger) (*Checker, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open scratch database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	c := New(db, logger)
	if err := c.Init(ctx, model); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Init creates the tables of model.
func (c *Checker) Init(ctx context.Context, model *mapping.Model) error {
	if c.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	stmts, err := Schema(model)
	if err != nil {
		return fmt.Errorf("failed to derive schema: %w", err)
	}
	for _, stmt := range stmts {
		c.Logger.Debug("creating table", "ddl", stmt)
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Check prepares query and reports whether the database accepts it.
func (c *Checker) Check(ctx context.Context, query string) error {
	if c.DB == nil {
		return fmt.Errorf("database connection not established")
	}
	stmt, err := c.DB.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("generated SQL was rejected: %w", err)
	}
	return stmt.Close()
}

// Close closes the database connection.
func (c *Checker) Close() error {
	if c.DB != nil {
		c.Logger.Debug("closing scratch database")
		return c.DB.Close()
	}
	return nil
}
