package driven

import (
	"context"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// SchedulerStore persists background task state across restarts,
// so an update check that ran recently is not repeated on start-up.
type SchedulerStore interface {
	// GetTask retrieves a scheduled task by ID.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all scheduled tasks.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or updates a task by ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordResult appends a task execution result.
	RecordResult(ctx context.Context, result *domain.TaskResult) error

	// GetTaskHistory returns recent results for a task, most recent first.
	GetTaskHistory(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneHistory keeps only the most recent 'keep' results per task.
	PruneHistory(ctx context.Context, keep int) error
}
