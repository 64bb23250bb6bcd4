package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/arena-zones-backend/internal/models"
)

const defaultListLimit = 50

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create creates a new analysis task
func (r *AnalysisTaskRepository) Create(ctx context.Context, task *models.AnalysisTask) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}

	query := `
		INSERT INTO analysis_tasks (
			arena_id, skills, status, params_json, subject_count, sample_count,
			result_summary, error_message, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		task.ArenaID,
		task.Skills,
		task.Status,
		task.ParamsJSON,
		task.SubjectCount,
		task.SampleCount,
		task.ResultSummary,
		task.ErrorMessage,
		task.CreatedBy,
		now.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

const taskColumns = `
	id, arena_id, skills, status, params_json, subject_count, sample_count,
	result_summary, error_message, created_by, created_at, updated_at,
	started_at, completed_at
`

func scanTask(row rowScanner) (*models.AnalysisTask, error) {
	var (
		task                   models.AnalysisTask
		createdAt, updatedAt   int64
		startedAt, completedAt sql.NullInt64
	)
	err := row.Scan(
		&task.ID,
		&task.ArenaID,
		&task.Skills,
		&task.Status,
		&task.ParamsJSON,
		&task.SubjectCount,
		&task.SampleCount,
		&task.ResultSummary,
		&task.ErrorMessage,
		&task.CreatedBy,
		&createdAt,
		&updatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	task.StartedAt = nullableMillis(startedAt)
	task.CompletedAt = nullableMillis(completedAt)
	return &task, nil
}

// GetByID retrieves an analysis task by ID
func (r *AnalysisTaskRepository) GetByID(ctx context.Context, id int64) (*models.AnalysisTask, error) {
	query := "SELECT " + taskColumns + " FROM analysis_tasks WHERE id = ?"

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("analysis task %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis task: %w", err)
	}
	return task, nil
}

// List retrieves analysis tasks with optional filters, newest first
func (r *AnalysisTaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]*models.AnalysisTask, error) {
	query := "SELECT " + taskColumns + " FROM analysis_tasks WHERE 1=1"

	args := []interface{}{}
	if filter.ArenaID != "" {
		query += " AND arena_id = ?"
		args = append(args, filter.ArenaID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.AnalysisTask{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *AnalysisTaskRepository) update(ctx context.Context, id int64, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return fmt.Errorf("failed to update analysis task %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("analysis task %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// MarkAsRunning marks a task as running
func (r *AnalysisTaskRepository) MarkAsRunning(ctx context.Context, id int64) error {
	now := time.Now().UTC().UnixMilli()
	return r.update(ctx, id, `
		UPDATE analysis_tasks
		SET status = ?, started_at = ?, updated_at = ?
		WHERE id = ?
	`, models.TaskStatusRunning, now, now)
}

// MarkAsCompleted marks a task as completed with its result summary
func (r *AnalysisTaskRepository) MarkAsCompleted(ctx context.Context, id int64, resultSummary string) error {
	now := time.Now().UTC().UnixMilli()
	return r.update(ctx, id, `
		UPDATE analysis_tasks
		SET status = ?, result_summary = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, models.TaskStatusCompleted, resultSummary, now, now)
}

// MarkAsFailed marks a task as failed with an error message
func (r *AnalysisTaskRepository) MarkAsFailed(ctx context.Context, id int64, errorMsg string) error {
	now := time.Now().UTC().UnixMilli()
	return r.update(ctx, id, `
		UPDATE analysis_tasks
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`, models.TaskStatusFailed, errorMsg, now, now)
}
