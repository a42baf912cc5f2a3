/*
Package mysql provides a MySQL-backed implementation of kv.Store.

PURPOSE:
  Same key layout and semantics as store/sqlite, for shops that already run
  a MySQL server. Chosen with -db-driver=mysql.

KEY TABLES:
  kv: kv_key VARCHAR(191) primary key, kv_value LONGBLOB, updated_at DATETIME(6)

USAGE:
  store, err := mysql.New(mysql.Config{User: "tracker", Password: "...", DBName: "tracker"}.DSN())
*/
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	driver "github.com/go-sql-driver/mysql"
	"github.com/warp/print-tracker/kv"
)

// Config holds connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DSN returns the driver connection string.
func (c Config) DSN() string {
	cfg := driver.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	host, port := c.Host, c.Port
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Store implements kv.TxStore using MySQL.
type Store struct {
	db *sql.DB
}

// New connects to dsn, verifies the connection and creates the schema.
func New(dsn string) (*Store, error) {
	cfg, err := driver.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		kv_key VARCHAR(191) NOT NULL PRIMARY KEY,
		kv_value LONGBLOB NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`)
	return err
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return get(ctx, s.db, key)
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, s.db, key, value)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return del(ctx, s.db, key)
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	return keys(ctx, s.db, prefix)
}

// WithTx executes fn inside a transaction. Rows read through the view are
// locked with SELECT ... FOR UPDATE so concurrent saves serialize.
func (s *Store) WithTx(ctx context.Context, fn func(kv.Store) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return getForUpdate(ctx, t.tx, key)
}

func (t *txStore) Set(ctx context.Context, key string, value []byte) error {
	return set(ctx, t.tx, key, value)
}

func (t *txStore) Delete(ctx context.Context, key string) error {
	return del(ctx, t.tx, key)
}

func (t *txStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	return keys(ctx, t.tx, prefix)
}

func get(ctx context.Context, q querier, key string) ([]byte, bool, error) {
	return scanValue(q.QueryRowContext(ctx, "SELECT kv_value FROM kv WHERE kv_key = ?", key))
}

func getForUpdate(ctx context.Context, q querier, key string) ([]byte, bool, error) {
	return scanValue(q.QueryRowContext(ctx, "SELECT kv_value FROM kv WHERE kv_key = ? FOR UPDATE", key))
}

func scanValue(row *sql.Row) ([]byte, bool, error) {
	var value []byte
	err := row.Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get key: %w", err)
	}
	return value, true, nil
}

func set(ctx context.Context, q querier, key string, value []byte) error {
	query := `
		INSERT INTO kv (kv_key, kv_value, updated_at)
		VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE kv_value = VALUES(kv_value), updated_at = VALUES(updated_at)
	`
	if _, err := q.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func del(ctx context.Context, q querier, key string) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM kv WHERE kv_key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

func keys(ctx context.Context, q querier, prefix string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT kv_key FROM kv WHERE LEFT(kv_key, ?) = ? ORDER BY kv_key ASC",
		len(prefix), prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan key: %w", err)
		}
		result = append(result, k)
	}
	return result, rows.Err()
}
