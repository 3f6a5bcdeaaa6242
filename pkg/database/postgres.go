package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"user-activation/pkg/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// ErrPoolTimeout is returned when no connection frees up within the
// configured acquisition timeout.
var ErrPoolTimeout = errors.New("database pool acquisition timed out")

// PgxIface interface untuk abstraction database
type PgxIface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// DB wraps a pgx pool and bounds how long a caller waits for a connection.
type DB struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// QueryRow implements PgxIface. The connection is released once the row is scanned.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	conn, err := db.acquire(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return &releasingRow{row: conn.QueryRow(ctx, sql, args...), conn: conn}
}

// Exec implements PgxIface
func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	conn, err := db.acquire(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	defer conn.Release()

	return conn.Exec(ctx, sql, args...)
}

// Ping implements PgxIface
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Close implements PgxIface
func (db *DB) Close() {
	db.pool.Close()
}

// Pool exposes the underlying pool for migrations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	defer cancel()

	conn, err := db.pool.Acquire(acquireCtx)
	if err != nil {
		// only our own deadline counts as pool exhaustion, not the caller's
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrPoolTimeout, db.acquireTimeout)
		}
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	return conn, nil
}

type releasingRow struct {
	row  pgx.Row
	conn *pgxpool.Conn
}

func (r *releasingRow) Scan(dest ...any) error {
	defer r.conn.Release()
	return r.row.Scan(dest...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

// ConnString builds a libpq URL for the given database name.
func ConnString(config utils.DatabaseConfig, dbName string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.User, config.Password),
		Host:     net.JoinHostPort(config.Host, config.Port),
		Path:     "/" + dbName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// InitDB opens the connection pool and blocks until the database answers
// a ping or the retry budget runs out.
func InitDB(ctx context.Context, config utils.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(ConnString(config, config.Name))
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	// Pool configuration
	poolConfig.MaxConns = config.MaxConns
	poolConfig.MinConns = config.MinConns
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := WaitForDB(ctx, pool, config, log); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{pool: pool, acquireTimeout: config.PoolTimeout}, nil
}

// Pinger is satisfied by *pgxpool.Pool and *pgx.Conn.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForDB pings until the database is reachable, at most config.Retries times.
func WaitForDB(ctx context.Context, db Pinger, config utils.DatabaseConfig, log *zap.Logger) error {
	backoff := retry.WithMaxRetries(uint64(config.Retries-1), retry.NewConstant(config.RetryDelay))

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()

		if err := db.Ping(pingCtx); err != nil {
			log.Warn("Waiting for PostgreSQL",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", config.Retries),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database not available after %d attempts: %w", attempt, err)
	}

	log.Info("PostgreSQL is ready", zap.Int("attempts", attempt))
	return nil
}

// EnsureDatabase creates config.Name through the maintenance database when it does not exist yet.
func EnsureDatabase(ctx context.Context, config utils.DatabaseConfig, log *zap.Logger) error {
	var conn *pgx.Conn
	connect := func(ctx context.Context) error {
		c, err := pgx.Connect(ctx, ConnString(config, config.MaintenanceDB))
		if err != nil {
			log.Warn("Waiting for PostgreSQL server", zap.Error(err))
			return retry.RetryableError(err)
		}
		conn = c
		return nil
	}

	backoff := retry.WithMaxRetries(uint64(config.Retries-1), retry.NewConstant(config.RetryDelay))
	if err := retry.Do(ctx, backoff, connect); err != nil {
		return fmt.Errorf("connect to maintenance database %s: %w", config.MaintenanceDB, err)
	}
	defer conn.Close(ctx)

	var exists bool
	err := conn.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, config.Name).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database %s: %w", config.Name, err)
	}

	if exists {
		log.Info("Database already exists", zap.String("database", config.Name))
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{config.Name}.Sanitize()); err != nil {
		// another instance may have won the race
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "42P04" {
			return nil
		}
		return fmt.Errorf("create database %s: %w", config.Name, err)
	}

	log.Info("Database created", zap.String("database", config.Name))
	return nil
}
