package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"PowerPrice/internal/model"
)

// SQLiteStore keeps the latest rate per pair in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log *slog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log *slog.Logger) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("sqlite rate store opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversion_rates (
			pair       TEXT PRIMARY KEY,
			rate       TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) LoadRate(ctx context.Context, pair string) (*model.ConversionRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		rate      decimal.Decimal
		fetchedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT rate, fetched_at FROM conversion_rates WHERE pair = ?`, pair,
	).Scan(&rate, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load rate %s: %w", pair, err)
	}
	return &model.ConversionRate{Rate: rate, FetchedAt: time.UnixMilli(fetchedAt)}, nil
}

func (s *SQLiteStore) SaveRate(ctx context.Context, pair string, rate model.ConversionRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `INSERT INTO conversion_rates (pair, rate, fetched_at)
		VALUES (?,?,?)
		ON CONFLICT(pair) DO UPDATE SET rate = excluded.rate, fetched_at = excluded.fetched_at`,
		pair, rate.Rate.String(), rate.FetchedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save rate %s: %w", pair, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info("closing sqlite rate store")
	return s.db.Close()
}
