package service

import (
	"context"
	"errors"
	"time"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/cache"
	"todo-collab/pkg/logger"

	"go.uber.org/zap"
)

const taskCacheTTL = time.Hour

func taskKey(id string) string { return "task:" + id }

// TaskService manages personal tasks. Every operation is scoped to the
// owning user.
type TaskService struct {
	store *repository.Store
	cache cache.Cache
}

func (s *TaskService) List(ctx context.Context, userID string) ([]models.Task, error) {
	tasks, err := s.store.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, internal("Failed to fetch tasks", err)
	}
	return tasks, nil
}

// load reads a task through the cache without checking ownership.
func (s *TaskService) load(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	err := cache.GetJSON(ctx, s.cache, taskKey(id), &t)
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.SystemLogger.Warn("Task cache read failed", zap.String("task_id", id), zap.Error(err))
	}

	found, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Task not found", "Failed to fetch task")
	}
	if err := cache.SetJSON(ctx, s.cache, taskKey(id), found, taskCacheTTL); err != nil {
		logger.SystemLogger.Warn("Task cache write failed", zap.String("task_id", id), zap.Error(err))
	}
	return found, nil
}

func (s *TaskService) owned(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		logger.SecurityLogger.Warn("Task access denied",
			zap.String("task_id", id), zap.String("user_id", userID))
		return nil, forbidden("Unauthorized")
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	return s.owned(ctx, userID, id)
}

func (s *TaskService) Create(ctx context.Context, userID string, in TaskInput) (*models.Task, error) {
	p, err := in.patch(true)
	if err != nil {
		return nil, err
	}

	t := newTask(userID, p)
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, internal("Failed to create task", err)
	}
	logger.AuditLogger.Info("Task created", zap.String("task_id", t.ID), zap.String("user_id", userID))
	return t, nil
}

// Update applies only the fields present in in.
func (s *TaskService) Update(ctx context.Context, userID, id string, in TaskInput) (*models.Task, error) {
	current, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	p, err := in.patch(false)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return current, nil
	}

	t, err := s.store.UpdateTask(ctx, id, p)
	if err != nil {
		return nil, lookupError(err, "Task not found", "Failed to update task")
	}
	s.invalidate(ctx, id)
	logger.AuditLogger.Info("Task updated", zap.String("task_id", id), zap.String("user_id", userID))
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return lookupError(err, "Task not found", "Failed to delete task")
	}
	s.invalidate(ctx, id)
	logger.AuditLogger.Info("Task deleted", zap.String("task_id", id), zap.String("user_id", userID))
	return nil
}

func (s *TaskService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Del(ctx, taskKey(id)); err != nil {
		logger.SystemLogger.Warn("Task cache invalidation failed", zap.String("task_id", id), zap.Error(err))
	}
}
