package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultSQLitePath = "bridge_local.db"

// SQLiteService keeps profiles in a local sqlite file, sharing the
// database file with the ledger when both run in local mode.
type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	path := strings.TrimSpace(os.Getenv("PROFILE_SQLITE_PATH"))
	if path == "" {
		path = defaultSQLitePath
	}
	return NewSQLiteService(path)
}

func NewSQLiteService(path string) (*SQLiteService, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal_mode: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := ensureSQLiteProfileSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteService{db: db}, nil
}

func ensureSQLiteProfileSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS player_profiles (
	name TEXT PRIMARY KEY,
	card_theme TEXT NOT NULL DEFAULT '',
	table_theme TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure profile schema: %w", err)
	}
	return nil
}

func (s *SQLiteService) Close() error { return s.db.Close() }

func (s *SQLiteService) Get(ctx context.Context, name string) (Profile, error) {
	const query = `
SELECT name, card_theme, table_theme, updated_at
FROM player_profiles
WHERE name = ?`

	var p Profile
	err := s.db.QueryRowContext(ctx, query, strings.TrimSpace(name)).Scan(
		&p.Name, &p.CardTheme, &p.TableTheme, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}

func (s *SQLiteService) Upsert(ctx context.Context, p Profile) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("empty profile name")
	}

	const query = `
INSERT INTO player_profiles (name, card_theme, table_theme, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
	card_theme = excluded.card_theme,
	table_theme = excluded.table_theme,
	updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		p.Name, p.CardTheme, p.TableTheme, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
