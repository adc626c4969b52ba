package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencode-ai/pipebuilder/internal/models"
)

// Run repository errors.
var (
	ErrRunNotFound = errors.New("generation run not found")
	ErrInvalidRun  = errors.New("invalid generation run")
)

// RunRepository persists generation history.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new RunRepository.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// RunQuery filters listed runs.
type RunQuery struct {
	Status *models.RunStatus
	Since  *time.Time
	Limit  int
}

const runColumns = `id, requested_path, saved_path, block_types_json, emit_local_files,
	status, error, created_at, finished_at`

// Create inserts a run. ID, status and creation time default when unset.
func (r *RunRepository) Create(ctx context.Context, run *models.GenerationRun) error {
	if run == nil {
		return ErrInvalidRun
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRun, err)
	}

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = models.RunStatusPending
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.BlockTypes == nil {
		run.BlockTypes = []string{}
	}

	blockTypes, err := json.Marshal(run.BlockTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal block types: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO generation_runs (
			id, requested_path, saved_path, block_types_json, block_count,
			emit_local_files, status, error, created_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.RequestedPath,
		nullString(run.SavedPath),
		string(blockTypes),
		len(run.BlockTypes),
		run.EmitLocalFiles,
		string(run.Status),
		nullString(run.Error),
		run.CreatedAt.UTC().Format(timeFormat),
		formatTime(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation run: %w", err)
	}
	return nil
}

// Finish records the outcome of a run. A nil genErr marks it succeeded.
func (r *RunRepository) Finish(ctx context.Context, id, savedPath string, genErr error) error {
	status := models.RunStatusSucceeded
	errMsg := ""
	if genErr != nil {
		status = models.RunStatusFailed
		errMsg = genErr.Error()
	}
	finished := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE generation_runs
		SET saved_path = ?, status = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, nullString(savedPath), string(status), nullString(errMsg), formatTime(&finished), id)
	if err != nil {
		return fmt.Errorf("failed to update generation run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Get retrieves a run by ID.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.GenerationRun, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM generation_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// List returns runs, newest first.
func (r *RunRepository) List(ctx context.Context, q RunQuery) ([]*models.GenerationRun, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + runColumns + ` FROM generation_runs WHERE 1=1`
	args := []any{}
	if q.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*q.Status))
	}
	if q.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UTC().Format(timeFormat))
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.GenerationRun, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation runs: %w", err)
	}
	return runs, nil
}

// Delete removes runs created before cutoff and returns how many were removed.
func (r *RunRepository) Delete(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM generation_runs WHERE created_at < ?`,
		before.UTC().Format(timeFormat))
	if err != nil {
		return 0, fmt.Errorf("failed to delete generation runs: %w", err)
	}
	return result.RowsAffected()
}

func scanRun(row rowScanner) (*models.GenerationRun, error) {
	var run models.GenerationRun
	var savedPath, errMsg, finishedAt sql.NullString
	var blockTypes, status, createdAt string

	if err := row.Scan(
		&run.ID,
		&run.RequestedPath,
		&savedPath,
		&blockTypes,
		&run.EmitLocalFiles,
		&status,
		&errMsg,
		&createdAt,
		&finishedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan generation run: %w", err)
	}

	run.SavedPath = savedPath.String
	run.Error = errMsg.String
	run.Status = models.RunStatus(status)
	if err := json.Unmarshal([]byte(blockTypes), &run.BlockTypes); err != nil {
		return nil, fmt.Errorf("failed to parse block types: %w", err)
	}
	if t, err := time.Parse(timeFormat, createdAt); err == nil {
		run.CreatedAt = t
	}
	if finishedAt.Valid {
		if t, err := time.Parse(timeFormat, finishedAt.String); err == nil {
			run.FinishedAt = &t
		}
	}
	return &run, nil
}
