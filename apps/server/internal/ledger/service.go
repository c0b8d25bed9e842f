package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultRecentLimit = 100

	ModeSQLite   = "sqlite"
	ModePostgres = "postgres"
	ModeNoop     = "noop"
)

var ErrNotFound = errors.New("not found")

// Record is one finished deal as stored in the round history.
type Record struct {
	SessionCode string    `json:"session_code"`
	Round       int       `json:"round"`
	Contract    string    `json:"contract,omitempty"` // empty when passed out
	Declarer    string    `json:"declarer,omitempty"`
	PassedOut   bool      `json:"passed_out,omitempty"`
	TricksNS    int       `json:"tricks_ns"`
	TricksEW    int       `json:"tricks_ew"`
	ScoringTeam string    `json:"scoring_team,omitempty"`
	Points      int       `json:"points"`
	PlayedAt    time.Time `json:"played_at"`
}

type Service interface {
	Close() error
	AppendRound(ctx context.Context, rec Record) error
	ListRecent(ctx context.Context, sessionCode string, limit int) ([]Record, error)
}

type noopService struct{}

func (n *noopService) Close() error                                  { return nil }
func (n *noopService) AppendRound(context.Context, Record) error     { return nil }
func (n *noopService) ListRecent(context.Context, string, int) ([]Record, error) {
	return nil, nil
}

func NewNoopService() Service { return &noopService{} }

func ledgerModeFromEnv() string {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("LEDGER_MODE")))
	switch raw {
	case "", ModeSQLite, "local":
		return ModeSQLite
	case ModePostgres, "db", "postgresql":
		return ModePostgres
	case ModeNoop, "off", "none":
		return ModeNoop
	default:
		return raw
	}
}

// NewServiceFromEnv picks the backend from LEDGER_MODE: a local
// sqlite file (default), postgres via LEDGER_DATABASE_DSN, or noop.
func NewServiceFromEnv() (Service, string, error) {
	mode := ledgerModeFromEnv()

	switch mode {
	case ModeSQLite:
		service, err := NewSQLiteServiceFromEnv()
		if err != nil {
			return nil, mode, err
		}
		return service, mode, nil
	case ModePostgres:
		service, err := NewPostgresService(ledgerDSNFromEnv())
		if err != nil {
			return nil, mode, err
		}
		return service, mode, nil
	case ModeNoop:
		return NewNoopService(), mode, nil
	default:
		return nil, mode, fmt.Errorf("invalid LEDGER_MODE %q (supported: %s, %s, %s)",
			mode, ModeSQLite, ModePostgres, ModeNoop)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultRecentLimit {
		return defaultRecentLimit
	}
	return limit
}
