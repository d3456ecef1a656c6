package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

const (
	taskColumns   = "id, name, interval_seconds, last_run, next_run, last_error, last_success, enabled"
	resultColumns = "task_id, run_id, started_at, ended_at, success, error, warning, items_processed"
)

// schedulerStore keeps update-check and warm-up task state in the same
// database as the dataset, so a restart resumes the schedule.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetTask returns nil and no error if the task has never been saved.
func (s *schedulerStore) GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM scheduled_tasks WHERE id = ?", taskID)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get task "+taskID, err)
	}
	return &task, nil
}

// ListTasks returns every saved task ordered by id.
func (s *schedulerStore) ListTasks(ctx context.Context) ([]domain.ScheduledTask, error) {
	tasks, err := queryAll(ctx, s.store.db, scanTask,
		"SELECT "+taskColumns+" FROM scheduled_tasks ORDER BY id")
	if err != nil {
		return nil, domain.NewStorageError("list tasks", err)
	}
	return tasks, nil
}

// SaveTask upserts the task by id.
func (s *schedulerStore) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO scheduled_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			interval_seconds = excluded.interval_seconds,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled`,
		task.ID, task.Name, int64(task.Interval/time.Second),
		formatNullableTime(task.LastRun), formatNullableTime(task.NextRun),
		nullString(task.LastError), formatNullableTime(task.LastSuccess),
		boolToInt(task.Enabled))
	if err != nil {
		return domain.NewStorageError("save task "+task.ID, err)
	}
	return nil
}

// RecordResult appends one run of a task.
func (s *schedulerStore) RecordResult(ctx context.Context, result *domain.TaskResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx,
		"INSERT INTO task_results ("+resultColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		result.TaskID, nullString(result.RunID),
		result.StartedAt.UTC().Format(time.RFC3339), result.EndedAt.UTC().Format(time.RFC3339),
		boolToInt(result.Success), nullString(result.Error), nullString(result.Warning),
		result.ItemsProcessed)
	if err != nil {
		return domain.NewStorageError("record result "+result.TaskID, err)
	}
	return nil
}

// GetTaskHistory returns up to limit runs of a task, newest first. Runs
// started in the same second keep insertion order.
func (s *schedulerStore) GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	results, err := queryAll(ctx, s.store.db, scanResult, `
		SELECT `+resultColumns+` FROM task_results
		WHERE task_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`, taskID, limit)
	if err != nil {
		return nil, domain.NewStorageError("task history "+taskID, err)
	}
	return results, nil
}

// PruneHistory keeps the newest keep runs of each task.
func (s *schedulerStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM task_results
		WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (
					PARTITION BY task_id ORDER BY started_at DESC, id DESC
				) AS rn
				FROM task_results
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return domain.NewStorageError("prune task history", err)
	}
	return nil
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(rowScanner) (T, error),
	query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanTask(row rowScanner) (domain.ScheduledTask, error) {
	var (
		task                                   domain.ScheduledTask
		seconds                                int64
		lastRun, nextRun, lastErr, lastSuccess sql.NullString
		enabled                                int
	)
	if err := row.Scan(&task.ID, &task.Name, &seconds,
		&lastRun, &nextRun, &lastErr, &lastSuccess, &enabled); err != nil {
		return domain.ScheduledTask{}, err
	}

	task.Interval = time.Duration(seconds) * time.Second
	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	task.LastError = lastErr.String
	task.LastSuccess = parseNullableTime(lastSuccess)
	task.Enabled = enabled == 1
	return task, nil
}

func scanResult(row rowScanner) (domain.TaskResult, error) {
	var (
		result                 domain.TaskResult
		started, ended         sql.NullString
		success                int
		runID, errMsg, warning sql.NullString
	)
	if err := row.Scan(&result.TaskID, &runID, &started, &ended,
		&success, &errMsg, &warning, &result.ItemsProcessed); err != nil {
		return domain.TaskResult{}, err
	}

	result.RunID = runID.String
	result.StartedAt = parseNullableTime(started)
	result.EndedAt = parseNullableTime(ended)
	result.Success = success == 1
	result.Error = errMsg.String
	result.Warning = warning.String
	return result, nil
}

// formatNullableTime stores the zero time as NULL.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// parseNullableTime maps NULL and unparsable values to the zero time.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
