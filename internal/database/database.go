package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shareit/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 driver
	"github.com/rs/zerolog"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

type DB struct {
	*sql.DB
	driver string
	logger *zerolog.Logger
}

// NewDB открывает соединение, дожидается доступности базы и создает схему.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zerolog.Logger) (*DB, error) {
	var dsn string
	switch cfg.Driver {
	case DriverSQLite:
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = cfg.Path + "?_foreign_keys=on&_busy_timeout=5000"
	case DriverPostgres:
		dsn = cfg.Postgres.DSN()
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	sqlDB, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite допускает только одного писателя
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.Postgres.MaxConnections > 0 {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxConnections)
	}

	db := &DB{DB: sqlDB, driver: cfg.Driver, logger: logger}

	backoff := connectBackoff{Retries: cfg.ConnectRetries, Initial: 200 * time.Millisecond, Max: 5 * time.Second}
	if err := db.pingWithRetry(ctx, backoff); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.createTables(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", cfg.Driver).Msg("Database initialized")
	return db, nil
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) createTables(ctx context.Context) error {
	idType, tsType := "INTEGER PRIMARY KEY AUTOINCREMENT", "DATETIME"
	if db.driver == DriverPostgres {
		idType, tsType = "BIGSERIAL PRIMARY KEY", "TIMESTAMPTZ"
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id %[1]s,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            created_at %[2]s NOT NULL,
            updated_at %[2]s NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS item_requests (
            id %[1]s,
            description TEXT NOT NULL,
            requestor_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created %[2]s NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id %[1]s,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            available BOOLEAN NOT NULL,
            owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            request_id BIGINT REFERENCES item_requests(id) ON DELETE SET NULL,
            created_at %[2]s NOT NULL,
            updated_at %[2]s NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id %[1]s,
            start_date %[2]s NOT NULL,
            end_date %[2]s NOT NULL,
            item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            booker_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            status TEXT NOT NULL,
            created_at %[2]s NOT NULL,
            updated_at %[2]s NOT NULL,
            CHECK (start_date < end_date)
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            id %[1]s,
            text TEXT NOT NULL,
            item_id BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            author_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created %[2]s NOT NULL
        )`,

		`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_item_id ON bookings(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_booker_id ON bookings(booker_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_start_date ON bookings(start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_item_requests_requestor_id ON item_requests(requestor_id)`,
	}

	for _, query := range queries {
		if strings.Contains(query, "%[1]s") {
			query = fmt.Sprintf(query, idType, tsType)
		}
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

// rebind переписывает плейсхолдеры ? в $n для postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

// insert выполняет INSERT ... RETURNING id и возвращает новый идентификатор.
func (db *DB) insert(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	if err := db.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// utc нормализует время перед записью: в sqlite время хранится строкой
// и сравнивается лексикографически.
func utc(t time.Time) time.Time {
	return t.UTC()
}

// placeholders возвращает "?, ?, ?" для n аргументов.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
