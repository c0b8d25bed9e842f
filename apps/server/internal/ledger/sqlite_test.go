package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *SQLiteService {
	t.Helper()
	s, err := NewSQLiteService(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndListRecent(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, s.AppendRound(ctx, Record{
			SessionCode: "ABCDE",
			Round:       i,
			Contract:    "4S",
			Declarer:    "S",
			TricksNS:    10,
			TricksEW:    3,
			ScoringTeam: "NS",
			Points:      420,
			PlayedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := s.ListRecent(ctx, "ABCDE", 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, 3, records[0].Round)
	assert.Equal(t, 1, records[2].Round)
	assert.Equal(t, "4S", records[0].Contract)
	assert.Equal(t, "NS", records[0].ScoringTeam)
	assert.Equal(t, 420, records[0].Points)
	assert.Equal(t, 10, records[0].TricksNS)
}

func TestListRecentScopedBySession(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.AppendRound(ctx, Record{SessionCode: "AAAAA", Round: 1, PlayedAt: now}))
	require.NoError(t, s.AppendRound(ctx, Record{SessionCode: "BBBBB", Round: 1, PlayedAt: now}))

	records, err := s.ListRecent(ctx, "AAAAA", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "AAAAA", records[0].SessionCode)
}

func TestListRecentHonorsLimit(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.AppendRound(ctx, Record{
			SessionCode: "ABCDE",
			Round:       i,
			PlayedAt:    now.Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := s.ListRecent(ctx, "ABCDE", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, 5, records[0].Round)
}

func TestPassedOutRoundTrip(t *testing.T) {
	s := newTestLedger(t)
	ctx := context.Background()

	require.NoError(t, s.AppendRound(ctx, Record{
		SessionCode: "ABCDE",
		Round:       1,
		PassedOut:   true,
		PlayedAt:    time.Now().UTC(),
	}))

	records, err := s.ListRecent(ctx, "ABCDE", 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].PassedOut)
	assert.Empty(t, records[0].Contract)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultRecentLimit, clampLimit(0))
	assert.Equal(t, defaultRecentLimit, clampLimit(-5))
	assert.Equal(t, defaultRecentLimit, clampLimit(1000))
	assert.Equal(t, 25, clampLimit(25))
}

func TestNoopServiceIsInert(t *testing.T) {
	s := NewNoopService()
	require.NoError(t, s.AppendRound(context.Background(), Record{}))
	records, err := s.ListRecent(context.Background(), "ABCDE", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, s.Close())
}
