package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const defaultLocalDBName = "bridge_local.db"

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteServiceFromEnv() (*SQLiteService, error) {
	dbPath := strings.TrimSpace(os.Getenv("LEDGER_SQLITE_PATH"))
	if dbPath == "" {
		dbPath = defaultLocalDBName
	}
	return NewSQLiteService(dbPath)
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{db: db}, nil
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS round_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    session_code  TEXT NOT NULL,
    round         INTEGER NOT NULL,
    contract      TEXT NOT NULL DEFAULT '',
    declarer      TEXT NOT NULL DEFAULT '',
    passed_out    INTEGER NOT NULL DEFAULT 0,
    tricks_ns     INTEGER NOT NULL DEFAULT 0,
    tricks_ew     INTEGER NOT NULL DEFAULT 0,
    scoring_team  TEXT NOT NULL DEFAULT '',
    points        INTEGER NOT NULL DEFAULT 0,
    played_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_round_history_session
    ON round_history (session_code, played_at DESC);
`)
	return err
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) AppendRound(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.SessionCode) == "" {
		return fmt.Errorf("empty session code")
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO round_history
    (session_code, round, contract, declarer, passed_out, tricks_ns, tricks_ew, scoring_team, points, played_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionCode, rec.Round, rec.Contract, rec.Declarer, boolToInt(rec.PassedOut),
		rec.TricksNS, rec.TricksEW, rec.ScoringTeam, rec.Points, rec.PlayedAt.UTC())
	return err
}

func (s *SQLiteService) ListRecent(ctx context.Context, sessionCode string, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_code, round, contract, declarer, passed_out, tricks_ns, tricks_ew, scoring_team, points, played_at
FROM round_history
WHERE session_code = ?
ORDER BY played_at DESC, id DESC
LIMIT ?`, sessionCode, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var passedOut int
		if err := rows.Scan(&rec.SessionCode, &rec.Round, &rec.Contract, &rec.Declarer,
			&passedOut, &rec.TricksNS, &rec.TricksEW, &rec.ScoringTeam, &rec.Points, &rec.PlayedAt); err != nil {
			return nil, err
		}
		rec.PassedOut = passedOut != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
