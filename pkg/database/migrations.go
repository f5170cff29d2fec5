package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationsRunner handles database migrations
type MigrationsRunner struct {
	db         *sql.DB
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrationsRunner creates a new migration runner
func NewMigrationsRunner(db *sql.DB, logger *zap.Logger) (*MigrationsRunner, error) {
	runner := &MigrationsRunner{
		db:         db,
		logger:     logger,
		migrations: []Migration{},
	}

	if err := runner.loadMigrations(); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	return runner, nil
}

// DisableLogging silences the runner
func (r *MigrationsRunner) DisableLogging() {
	r.logger = zap.NewNop()
}

// Migrations returns the loaded migrations sorted by version
func (r *MigrationsRunner) Migrations() []Migration {
	return r.migrations
}

// loadMigrations loads all .up.sql migration files from the embedded filesystem
func (r *MigrationsRunner) loadMigrations() error {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return fmt.Errorf("failed to read migration directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		if !strings.HasSuffix(filename, ".up.sql") {
			continue
		}

		// 000001_name.up.sql
		parts := strings.SplitN(filename, "_", 2)
		if len(parts) < 2 {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(parts[0], "%d", &version); err != nil {
			r.logger.Warn("Skipping invalid migration file", zap.String("file", filename))
			continue
		}

		content, err := migrationFiles.ReadFile("sql/" + filename)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", filename, err)
		}

		r.migrations = append(r.migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".up.sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(r.migrations, func(i, j int) bool {
		return r.migrations[i].Version < r.migrations[j].Version
	})

	return nil
}

const createMigrationsTableQuery = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		applied_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
	)
`

// MigrationState reports whether an embedded migration is applied
type MigrationState struct {
	Migration
	Applied   bool
	AppliedAt time.Time
}

func (r *MigrationsRunner) applied(ctx context.Context) (map[int]time.Time, error) {
	if _, err := r.db.ExecContext(ctx, createMigrationsTableQuery); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, fmt.Errorf("failed to scan applied migration: %w", err)
		}
		applied[version] = at
	}
	return applied, rows.Err()
}

// Status lists every embedded migration with its applied state
func (r *MigrationsRunner) Status(ctx context.Context) ([]MigrationState, error) {
	applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}

	states := make([]MigrationState, 0, len(r.migrations))
	for _, m := range r.migrations {
		at, ok := applied[m.Version]
		states = append(states, MigrationState{Migration: m, Applied: ok, AppliedAt: at})
	}
	return states, nil
}

// Run executes all pending migrations
func (r *MigrationsRunner) Run() error {
	return r.RunContext(context.Background())
}

// RunContext executes all pending migrations, each in its own transaction.
// The first failure stops the run and leaves later migrations pending.
func (r *MigrationsRunner) RunContext(ctx context.Context) error {
	states, err := r.Status(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, state := range states {
		if state.Applied {
			continue
		}
		if err := r.apply(ctx, state.Migration); err != nil {
			return err
		}
		count++
	}

	if count == 0 {
		r.logger.Info("No pending migrations")
		return nil
	}

	r.logger.Info("All migrations completed", zap.Int("applied", count))
	return nil
}

func (r *MigrationsRunner) apply(ctx context.Context, m Migration) error {
	r.logger.Info("Applying migration",
		zap.Int("version", m.Version),
		zap.String("name", m.Name),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
