package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/trunk/internal/core"
)

func TestAuditRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := NewDB(ctx, filepath.Join(t.TempDir(), "trunk.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewAuditRepo(db)

	require.NoError(t, repo.InsertStep(ctx, "run-1", 1, core.EpisodeStep{
		Tool:      "fetch_url",
		Arguments: `{"url":"https://example.com"}`,
		Result:    "ok",
		Duration:  120 * time.Millisecond,
	}))
	require.NoError(t, repo.InsertRun(ctx, "run-1", "fetch example", "success", 2))
	require.NoError(t, repo.InsertRun(ctx, "run-2", "another task", "exhausted", 20))

	runs, err := repo.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].RunID)
	assert.Equal(t, "exhausted", runs[0].Status)
	assert.Equal(t, "run-1", runs[1].RunID)
	assert.Equal(t, 2, runs[1].Iterations)
}
