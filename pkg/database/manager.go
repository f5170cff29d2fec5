package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Config holds the PostgreSQL connection settings
type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN builds the lib/pq connection string
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// DatabaseManager handles all database operations
type DatabaseManager struct {
	db            *sql.DB
	healthChecker *HealthChecker
	logger        *zap.Logger
}

// NewDatabaseManager connects to PostgreSQL and starts health checking
func NewDatabaseManager(cfg Config, logger *zap.Logger) (*DatabaseManager, error) {
	db, err := connectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	dm := &DatabaseManager{
		db:            db,
		healthChecker: NewHealthChecker(db, 30*time.Second, logger),
		logger:        logger,
	}
	dm.healthChecker.Start()

	logger.Info("Connected to database",
		zap.String("user", cfg.User),
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return dm, nil
}

// NewDatabaseManagerFromDB wraps an existing connection without health checking
func NewDatabaseManagerFromDB(db *sql.DB, logger *zap.Logger) *DatabaseManager {
	return &DatabaseManager{db: db, logger: logger}
}

// GetDB returns the underlying database connection
func (dm *DatabaseManager) GetDB() *sql.DB {
	return dm.db
}

// Close closes the database connection and stops health checking
func (dm *DatabaseManager) Close() error {
	if dm.healthChecker != nil {
		dm.healthChecker.Stop()
	}
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}

// Ping verifies the connection is usable
func (dm *DatabaseManager) Ping(ctx context.Context) error {
	return dm.ensureConnection(ctx)
}

// IsConnectionHealthy returns the current health status
func (dm *DatabaseManager) IsConnectionHealthy() bool {
	if dm.healthChecker == nil {
		return true
	}
	return dm.healthChecker.IsHealthy()
}

// Init runs all pending migrations
func (dm *DatabaseManager) Init() error {
	dm.logger.Info("Running database migrations")

	runner, err := NewMigrationsRunner(dm.db, dm.logger)
	if err != nil {
		return fmt.Errorf("failed to create migration runner: %w", err)
	}

	if err := runner.Run(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	dm.logger.Info("Database initialization completed")
	return nil
}

func (dm *DatabaseManager) ensureConnection(ctx context.Context) error {
	if dm.healthChecker == nil {
		return dm.db.PingContext(ctx)
	}
	return dm.healthChecker.EnsureConnection(ctx)
}

// queryWithHealthCheck executes a query with connection health verification
func (dm *DatabaseManager) queryWithHealthCheck(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := dm.ensureConnection(ctx); err != nil {
		return nil, err
	}

	return dm.db.QueryContext(ctx, query, args...)
}

// execInTx runs fn inside a transaction. Any failure rolls the transaction back
// and is reported as a PersistenceError.
func (dm *DatabaseManager) execInTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	if err := dm.ensureConnection(ctx); err != nil {
		return &PersistenceError{Op: op, Err: err}
	}

	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: op, Err: fmt.Errorf("failed to start transaction: %w", err)}
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			dm.logger.Error("Rollback failed", zap.String("op", op), zap.Error(rbErr))
		}
		return &PersistenceError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: op, Err: fmt.Errorf("failed to commit: %w", err)}
	}

	return nil
}

// connectDatabase establishes a connection to the database
func connectDatabase(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	return db, nil
}
