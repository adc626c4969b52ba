package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencode-ai/pipebuilder/internal/db"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

func seededRuns(t *testing.T) *db.RunRepository {
	t.Helper()
	database, err := db.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	_, err = database.MigrateUp(context.Background())
	require.NoError(t, err)

	repo := db.NewRunRepository(database)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &models.GenerationRun{
		ID:            "aaaaaaaa-0000-0000-0000-000000000001",
		RequestedPath: "jobs/old",
		BlockTypes:    []string{"read_csv"},
		CreatedAt:     now.Add(-72 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Finish(ctx, old.ID, "jobs/run.py", nil))

	failed := &models.GenerationRun{
		ID:             "bbbbbbbb-0000-0000-0000-000000000002",
		RequestedPath:  "jobs/new",
		BlockTypes:     []string{"read_csv", "write_csv"},
		EmitLocalFiles: true,
		CreatedAt:      now.Add(-time.Hour),
	}
	require.NoError(t, repo.Create(ctx, failed))
	require.NoError(t, repo.Finish(ctx, failed.ID, "", errors.New("permission denied")))
	return repo
}

func TestRunHistory(t *testing.T) {
	withOutputMode(t, false, false)
	repo := seededRuns(t)

	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &out, repo, db.RunQuery{}))

	text := out.String()
	assert.Contains(t, text, "STATUS")
	assert.Contains(t, text, "aaaaaaaa")
	assert.Contains(t, text, "OK succeeded")
	assert.Contains(t, text, "ERR failed")
	assert.Contains(t, text, "jobs/new")
	assert.Contains(t, text, "ERR bbbbbbbb: permission denied")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("bbbbbbbb")), bytes.Index(out.Bytes(), []byte("aaaaaaaa")), "newest first")
}

func TestRunHistoryFilteredJSON(t *testing.T) {
	withOutputMode(t, true, false)
	repo := seededRuns(t)

	status := models.RunStatusFailed
	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &out, repo, db.RunQuery{Status: &status}))

	var runs []models.GenerationRun
	require.NoError(t, json.Unmarshal(out.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "permission denied", runs[0].Error)
	assert.Equal(t, []string{"read_csv", "write_csv"}, runs[0].BlockTypes)
}

func TestRunHistoryEmpty(t *testing.T) {
	withOutputMode(t, false, false)
	repo := seededRuns(t)

	since := time.Now().Add(time.Hour)
	var out bytes.Buffer
	require.NoError(t, runHistory(context.Background(), &out, repo, db.RunQuery{Since: &since}))
	assert.Equal(t, "No generation runs recorded.\n", out.String())
}

func TestRunHistoryPrune(t *testing.T) {
	withOutputMode(t, true, false)
	repo := seededRuns(t)

	cutoff := time.Now().Add(-24 * time.Hour)
	var out bytes.Buffer
	require.NoError(t, runHistoryPrune(context.Background(), &out, repo, cutoff))

	var result PruneResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, int64(1), result.Deleted)

	remaining, err := repo.List(context.Background(), db.RunQuery{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "jobs/new", remaining[0].RequestedPath)
}

func TestParseCutoff(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{input: "2h", want: now.Add(-2 * time.Hour)},
		{input: "7d", want: now.AddDate(0, 0, -7)},
		{input: "0d", want: now},
		{input: "2026-01-02T03:04:05Z", want: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
		{input: "-1h", wantErr: true},
		{input: "soon", wantErr: true},
		{input: "xd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseCutoff(tt.input, now)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseRunStatus(t *testing.T) {
	status, err := parseRunStatus(" Failed ")
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, status)

	_, err = parseRunStatus("done")
	var preflight *PreflightError
	assert.True(t, errors.As(err, &preflight))
}
