package service

import (
	"context"
	"strings"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/logger"

	"go.uber.org/zap"
)

// CommentService appends to and reads a group task's comment thread.
// Comments cannot be edited or deleted.
type CommentService struct {
	store *repository.Store
}

func (s *CommentService) List(ctx context.Context, userID, taskID string) ([]models.Comment, error) {
	if _, err := visibleGroupTask(ctx, s.store, userID, taskID); err != nil {
		return nil, err
	}
	comments, err := s.store.ListComments(ctx, taskID)
	if err != nil {
		return nil, internal("Failed to fetch comments", err)
	}
	return comments, nil
}

// Add stores content trimmed. Blank content is rejected.
func (s *CommentService) Add(ctx context.Context, userID, taskID, content string) (*models.Comment, error) {
	if _, err := visibleGroupTask(ctx, s.store, userID, taskID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("Comment content is required")
	}

	c, err := s.store.CreateComment(ctx, &models.Comment{
		Content:     content,
		GroupTaskID: taskID,
		UserID:      userID,
	})
	if err != nil {
		return nil, lookupError(err, "Group task not found", "Failed to add comment")
	}
	logger.AuditLogger.Info("Comment added",
		zap.String("comment_id", c.ID), zap.String("group_task_id", taskID), zap.String("user_id", userID))
	return c, nil
}
