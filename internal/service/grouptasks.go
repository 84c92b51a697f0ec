package service

import (
	"context"
	"errors"
	"strings"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/logger"

	"go.uber.org/zap"
)

// GroupTaskService manages shared tasks. The owner controls the task
// fields and the assignee list; each assignee controls only their own
// status.
type GroupTaskService struct {
	store *repository.Store
}

// List returns the tasks userID owns and, separately, the ones they are
// assigned to without owning.
func (s *GroupTaskService) List(ctx context.Context, userID string) (*models.GroupTaskList, error) {
	owned, err := s.store.ListOwnedGroupTasks(ctx, userID)
	if err != nil {
		return nil, internal("Failed to fetch group tasks", err)
	}
	assigned, err := s.store.ListAssignedGroupTasks(ctx, userID)
	if err != nil {
		return nil, internal("Failed to fetch group tasks", err)
	}
	return &models.GroupTaskList{OwnedTasks: owned, AssignedTasks: assigned}, nil
}

// Get returns the task when userID is its owner or one of its assignees.
func (s *GroupTaskService) Get(ctx context.Context, userID, id string) (*models.GroupTask, error) {
	return visibleGroupTask(ctx, s.store, userID, id)
}

func visibleGroupTask(ctx context.Context, store *repository.Store, userID, id string) (*models.GroupTask, error) {
	g, err := store.GetGroupTask(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Group task not found", "Failed to fetch group task")
	}
	if _, assigned := g.Assignee(userID); g.OwnerID != userID && !assigned {
		logger.SecurityLogger.Warn("Group task access denied",
			zap.String("group_task_id", id), zap.String("user_id", userID))
		return nil, forbidden("Unauthorized")
	}
	return g, nil
}

func (s *GroupTaskService) Create(ctx context.Context, userID string, in GroupTaskInput) (*models.GroupTask, error) {
	p, err := in.patch(true)
	if err != nil {
		return nil, err
	}

	g := newGroupTask(userID, p)
	if err := s.store.CreateGroupTask(ctx, g, assigneeIDs(in.AssigneeIDs)); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, invalid("Unknown assignee")
		}
		return nil, internal("Failed to create group task", err)
	}
	logger.AuditLogger.Info("Group task created",
		zap.String("group_task_id", g.ID), zap.String("user_id", userID))

	created, err := s.store.GetGroupTask(ctx, g.ID)
	if err != nil {
		return nil, internal("Failed to fetch group task", err)
	}
	return created, nil
}

// Update applies the owner's field changes, replacing the assignee set when
// assigneeIds is present, and the caller's own status, all in one
// transaction. Marking the last pending assignee completed completes the
// task. Nothing ever flips the task back automatically.
func (s *GroupTaskService) Update(ctx context.Context, userID, id string, in GroupTaskInput) (*models.GroupTask, error) {
	g, err := visibleGroupTask(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	isOwner := g.OwnerID == userID
	ownerFields := in.hasOwnerFields()

	if ownerFields && !isOwner {
		return nil, forbidden("Unauthorized")
	}

	var ids []string
	if in.AssigneeIDs != nil {
		ids = assigneeIDs(in.AssigneeIDs)
	}

	if in.Status != nil {
		if *in.Status != models.AssigneePending && *in.Status != models.AssigneeCompleted {
			return nil, invalid("Invalid status")
		}
		_, assigned := g.Assignee(userID)
		if in.AssigneeIDs != nil {
			assigned = contains(ids, userID)
		}
		if !assigned {
			return nil, forbidden("Unauthorized")
		}
	}

	if !ownerFields && in.Status == nil {
		return g, nil
	}

	u := repository.GroupTaskUpdate{StatusUserID: userID}
	if ownerFields {
		p, err := in.patch(false)
		if err != nil {
			return nil, err
		}
		u.Fields = &p
		u.ReplaceAssignees = in.AssigneeIDs != nil
		u.AssigneeIDs = ids
	}
	if in.Status != nil {
		u.Status = *in.Status
	}

	updated, completed, err := s.store.UpdateGroupTask(ctx, id, u)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrForeignKey):
			return nil, invalid("Unknown assignee")
		case errors.Is(err, repository.ErrNotFound):
			return nil, notFound("Group task not found")
		}
		return nil, internal("Failed to update group task", err)
	}

	if ownerFields {
		logger.AuditLogger.Info("Group task updated",
			zap.String("group_task_id", id), zap.String("user_id", userID))
	}
	if in.Status != nil {
		logger.AuditLogger.Info("Assignee status updated",
			zap.String("group_task_id", id), zap.String("user_id", userID), zap.String("status", *in.Status))
	}
	if completed {
		logger.AuditLogger.Info("Group task completed by all assignees", zap.String("group_task_id", id))
	}
	return updated, nil
}

func (s *GroupTaskService) Delete(ctx context.Context, userID, id string) error {
	g, err := visibleGroupTask(ctx, s.store, userID, id)
	if err != nil {
		return err
	}
	if g.OwnerID != userID {
		return forbidden("Unauthorized")
	}
	if err := s.store.DeleteGroupTask(ctx, id); err != nil {
		return lookupError(err, "Group task not found", "Failed to delete group task")
	}
	logger.AuditLogger.Info("Group task deleted",
		zap.String("group_task_id", id), zap.String("user_id", userID))
	return nil
}

// assigneeIDs trims and de-duplicates ids, keeping first-seen order.
func assigneeIDs(in *[]string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(*in))
	seen := make(map[string]bool, len(*in))
	for _, id := range *in {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
