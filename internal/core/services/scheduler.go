package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/core/ports/driving"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	schedulerTick     = time.Minute
	historyRetention  = 100
	taskNameCheck     = "Update Check"
	taskNameWarmIndex = "Index Warm-up"
)

// Scheduler runs background update checks and index warm-ups.
// It is a pure core service with no external control API.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	updates driving.UpdateService
	index   driving.IndexService
	locale  string
	tick    time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	updates driving.UpdateService,
	index driving.IndexService,
	locale string,
) *Scheduler {
	return &Scheduler{
		config:  config,
		store:   store,
		updates: updates,
		index:   index,
		locale:  locale,
		tick:    schedulerTick,
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Debug("scheduler: disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.initialiseTasks(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}
	return s.run(ctx, stopCh)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// initialiseTasks ensures all configured tasks exist in the store.
func (s *Scheduler) initialiseTasks(ctx context.Context) error {
	tasks := []struct{ id, name string }{
		{domain.TaskIDUpdateCheck, taskNameCheck},
		{domain.TaskIDIndexWarmup, taskNameWarmIndex},
	}
	var errs []error
	for _, t := range tasks {
		cfg := s.config.GetTaskConfig(t.id)
		if !cfg.Enabled || cfg.Interval <= 0 {
			continue
		}
		errs = append(errs, s.ensureTask(ctx, t.id, t.name, cfg))
	}
	return errors.Join(errs...)
}

// ensureTask creates or updates a task in the store. New tasks are due
// immediately so a fresh install checks for content on first start.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string, cfg domain.TaskConfig) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Interval: cfg.Interval,
			Enabled:  cfg.Enabled,
		}
	} else {
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Now().Add(cfg.Interval)
		}
		task.Enabled = cfg.Enabled
	}

	return s.store.SaveTask(ctx, task)
}

func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := time.Now()
	for i := range tasks {
		task := &tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, task)
		}
	}
}

// runTask executes a single task in the background.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := &domain.TaskResult{
			TaskID:    task.ID,
			StartedAt: time.Now(),
		}

		var err error
		switch task.ID {
		case domain.TaskIDUpdateCheck:
			err = s.runUpdateCheck(ctx, result)
		case domain.TaskIDIndexWarmup:
			err = s.runIndexWarmup(ctx, result)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		result.EndedAt = time.Now()
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)

		if saveErr := s.store.SaveTask(ctx, task); saveErr != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, saveErr)
		}
		if recordErr := s.store.RecordResult(ctx, result); recordErr != nil {
			logger.Warn("scheduler: failed to record result for %s: %v", task.ID, recordErr)
		}
		if pruneErr := s.store.PruneHistory(ctx, historyRetention); pruneErr != nil {
			logger.Warn("scheduler: failed to prune history: %v", pruneErr)
		}
	}()
}

func (s *Scheduler) runUpdateCheck(ctx context.Context, result *domain.TaskResult) error {
	if s.updates == nil {
		return nil
	}
	res, err := s.updates.CheckForUpdates(ctx, s.locale)
	result.RunID = res.RunID
	result.Warning = res.Warning
	result.ItemsProcessed = len(res.Changed)
	return err
}

func (s *Scheduler) runIndexWarmup(ctx context.Context, result *domain.TaskResult) error {
	if s.index == nil {
		return nil
	}
	idx, err := s.index.EnsureIndex(ctx)
	if err != nil {
		return err
	}
	result.ItemsProcessed = idx.Len()
	return nil
}
