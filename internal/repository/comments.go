package repository

import (
	"context"
	"fmt"

	"todo-collab/internal/models"

	"github.com/google/uuid"
)

const commentSelect = `
	SELECT c.id, c.content, c.group_task_id, c.user_id, c.created_at,
		u.id AS "user.id", u.name AS "user.name", u.email AS "user.email"
	FROM comments c
	JOIN users u ON u.id = c.user_id`

// ListComments returns the task's comments, newest first.
func (s *Store) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := selectAll(ctx, s.db, &comments,
		commentSelect+" WHERE c.group_task_id = ? ORDER BY c.created_at DESC, c.id DESC", taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments for %s: %w", taskID, err)
	}
	return comments, nil
}

// CreateComment inserts c and returns the stored row with its author.
func (s *Store) CreateComment(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO comments (id, content, group_task_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.Content, c.GroupTaskID, c.UserID, c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating comment: %w", translateError(err))
	}

	var stored models.Comment
	if err := get(ctx, s.db, &stored, commentSelect+" WHERE c.id = ?", c.ID); err != nil {
		return nil, fmt.Errorf("loading comment %s: %w", c.ID, err)
	}
	return &stored, nil
}
