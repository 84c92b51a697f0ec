package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todo-collab/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const taskColumns = "id, title, completed, category, category_color, subtasks, due_date, user_id, created_at, updated_at"

// FieldPatch holds the optional column changes shared by tasks and group
// tasks. Nil fields are left unchanged.
type FieldPatch struct {
	Title         *string
	Completed     *bool
	Category      *string
	CategoryColor *string
	Subtasks      *models.Subtasks
	SetDueDate    bool
	DueDate       *time.Time
}

// Empty reports whether the patch changes nothing.
func (p FieldPatch) Empty() bool {
	return p.Title == nil && p.Completed == nil && p.Category == nil &&
		p.CategoryColor == nil && p.Subtasks == nil && !p.SetDueDate
}

func (p FieldPatch) assignments(now time.Time) (string, []any) {
	var sets []string
	var args []any
	add := func(column string, v any) {
		sets = append(sets, column+" = ?")
		args = append(args, v)
	}
	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	if p.Category != nil {
		add("category", *p.Category)
	}
	if p.CategoryColor != nil {
		add("category_color", *p.CategoryColor)
	}
	if p.Subtasks != nil {
		add("subtasks", *p.Subtasks)
	}
	if p.SetDueDate {
		add("due_date", p.DueDate)
	}
	add("updated_at", now)
	return strings.Join(sets, ", "), args
}

func updateFields(ctx context.Context, q sqlx.ExtContext, table, id string, p FieldPatch, now time.Time) error {
	sets, args := p.assignments(now)
	args = append(args, id)
	return exec(ctx, q, "UPDATE "+table+" SET "+sets+" WHERE id = ?", args...)
}

// ListTasksByUser returns the user's tasks, newest first.
func (s *Store) ListTasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := selectAll(ctx, s.db, &tasks,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks for user %s: %w", userID, err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := get(ctx, s.db, &t, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &t, nil
}

// CreateTask inserts t, filling its id and timestamps.
func (s *Store) CreateTask(ctx context.Context, t *models.Task) error {
	t.ID = uuid.NewString()
	t.CreatedAt = s.now()
	t.UpdatedAt = t.CreatedAt
	if t.Subtasks == nil {
		t.Subtasks = models.Subtasks{}
	}

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.Title, t.Completed, t.Category, t.CategoryColor, t.Subtasks, t.DueDate,
		t.UserID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating task: %w", translateError(err))
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, id string, p FieldPatch) (*models.Task, error) {
	if err := updateFields(ctx, s.db, "tasks", id, p, s.now()); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", id, err)
	}
	return s.GetTask(ctx, id)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	if err := exec(ctx, s.db, "DELETE FROM tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}
