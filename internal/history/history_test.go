package history

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("UMA_HISTORY_TEST_DSN")
	if dsn == "" {
		t.Skip("UMA_HISTORY_TEST_DSN is required for integration test")
	}
	return dsn
}

func TestOpen_EmptyDSNIsNop(t *testing.T) {
	rec, err := Open(context.Background(), "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, rec)
	assert.NoError(t, rec.Record(context.Background(), CareerRecord{}))
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord("run-1", "ura", 120000, 850, 2, true)
	assert.Len(t, rec.ID, 36)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, 120000, rec.TotalFans)
	assert.False(t, rec.FinishedAt.IsZero())
	assert.Equal(t, "career_history", rec.TableName())
}

func TestRepo_RecordAndRecent(t *testing.T) {
	dsn := requireDSN(t)
	ctx := context.Background()

	db, err := OpenPostgres(dsn)
	require.NoError(t, err)
	require.NoError(t, Migrate(ctx, db))

	runID := "it-history-recent"
	_ = db.Exec("DELETE FROM career_history WHERE run_id = ?", runID).Error

	repo := NewRepo(db)
	require.NoError(t, repo.Record(ctx, NewRecord(runID, "ura", 1000, 10, 0, true)))
	require.NoError(t, repo.Record(ctx, NewRecord(runID, "ura", 2000, 20, 1, false)))

	got, err := repo.Recent(ctx, runID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2000, got[0].TotalFans)
}
