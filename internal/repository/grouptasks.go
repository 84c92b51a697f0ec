package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-collab/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const groupTaskSelect = `
	SELECT g.id, g.title, g.completed, g.category, g.category_color, g.subtasks,
		g.due_date, g.owner_id, g.created_at, g.updated_at,
		o.id AS "owner.id", o.name AS "owner.name", o.email AS "owner.email"
	FROM group_tasks g
	JOIN users o ON o.id = g.owner_id`

const assigneeSelect = `
	SELECT a.id, a.group_task_id, a.user_id, a.status, a.created_at, a.updated_at,
		u.id AS "user.id", u.name AS "user.name", u.email AS "user.email"
	FROM group_task_assignees a
	JOIN users u ON u.id = a.user_id`

type groupTaskRow struct {
	models.GroupTask
	OwnerSummary models.UserSummary `db:"owner"`
}

// CreateGroupTask inserts the task and one pending assignee row per id in a
// single transaction.
func (s *Store) CreateGroupTask(ctx context.Context, g *models.GroupTask, assigneeIDs []string) error {
	g.ID = uuid.NewString()
	g.CreatedAt = s.now()
	g.UpdatedAt = g.CreatedAt
	if g.Subtasks == nil {
		g.Subtasks = models.Subtasks{}
	}

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO group_tasks (id, title, completed, category, category_color, subtasks,
				due_date, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			g.ID, g.Title, g.Completed, g.Category, g.CategoryColor, g.Subtasks,
			g.DueDate, g.OwnerID, g.CreatedAt, g.UpdatedAt,
		)
		if err != nil {
			return translateError(err)
		}
		return insertAssignees(ctx, tx, g.ID, assigneeIDs, g.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("creating group task: %w", err)
	}
	return nil
}

func insertAssignees(ctx context.Context, tx *sqlx.Tx, taskID string, userIDs []string, now time.Time) error {
	for _, userID := range userIDs {
		_, err := tx.ExecContext(ctx, tx.Rebind(`
			INSERT INTO group_task_assignees (id, group_task_id, user_id, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			uuid.NewString(), taskID, userID, models.AssigneePending, now, now,
		)
		if err != nil {
			return translateError(err)
		}
	}
	return nil
}

// GetGroupTask loads the task with its owner, assignees and comments.
func (s *Store) GetGroupTask(ctx context.Context, id string) (*models.GroupTask, error) {
	var row groupTaskRow
	if err := get(ctx, s.db, &row, groupTaskSelect+" WHERE g.id = ?", id); err != nil {
		return nil, fmt.Errorf("getting group task %s: %w", id, err)
	}
	tasks, err := s.hydrate(ctx, []groupTaskRow{row})
	if err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

// ListOwnedGroupTasks returns tasks owned by userID, newest first.
func (s *Store) ListOwnedGroupTasks(ctx context.Context, userID string) ([]models.GroupTask, error) {
	var rows []groupTaskRow
	err := selectAll(ctx, s.db, &rows,
		groupTaskSelect+" WHERE g.owner_id = ? ORDER BY g.created_at DESC, g.id", userID)
	if err != nil {
		return nil, fmt.Errorf("listing owned group tasks: %w", err)
	}
	return s.hydrate(ctx, rows)
}

// ListAssignedGroupTasks returns tasks userID is assigned to but does not own.
func (s *Store) ListAssignedGroupTasks(ctx context.Context, userID string) ([]models.GroupTask, error) {
	var rows []groupTaskRow
	err := selectAll(ctx, s.db, &rows, groupTaskSelect+`
		WHERE g.owner_id <> ?
		AND EXISTS (
			SELECT 1 FROM group_task_assignees a
			WHERE a.group_task_id = g.id AND a.user_id = ?
		)
		ORDER BY g.created_at DESC, g.id`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing assigned group tasks: %w", err)
	}
	return s.hydrate(ctx, rows)
}

// hydrate attaches assignees and comments to rows with one query each.
func (s *Store) hydrate(ctx context.Context, rows []groupTaskRow) ([]models.GroupTask, error) {
	tasks := make([]models.GroupTask, 0, len(rows))
	if len(rows) == 0 {
		return tasks, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	var assignees []models.GroupTaskAssignee
	if err := selectIn(ctx, s.db, &assignees,
		assigneeSelect+" WHERE a.group_task_id IN (?) ORDER BY a.created_at, u.email", ids); err != nil {
		return nil, fmt.Errorf("loading assignees: %w", err)
	}
	var comments []models.Comment
	if err := selectIn(ctx, s.db, &comments,
		commentSelect+" WHERE c.group_task_id IN (?) ORDER BY c.created_at DESC, c.id DESC", ids); err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}

	byTask := make(map[string]int, len(rows))
	for i, r := range rows {
		g := r.GroupTask
		owner := r.OwnerSummary
		g.Owner = &owner
		g.Assignees = []models.GroupTaskAssignee{}
		g.Comments = []models.Comment{}
		tasks = append(tasks, g)
		byTask[g.ID] = i
	}
	for _, a := range assignees {
		i := byTask[a.GroupTaskID]
		tasks[i].Assignees = append(tasks[i].Assignees, a)
	}
	for _, c := range comments {
		i := byTask[c.GroupTaskID]
		tasks[i].Comments = append(tasks[i].Comments, c)
	}
	return tasks, nil
}

// GroupTaskUpdate is one change to a group task. Fields is nil when no
// owner field changes. Status, when set, is StatusUserID's own assignee
// status.
type GroupTaskUpdate struct {
	Fields           *FieldPatch
	ReplaceAssignees bool
	AssigneeIDs      []string
	StatusUserID     string
	Status           string
}

// UpdateGroupTask applies u in one transaction: owner fields, the assignee
// set swap and the caller's status. markedComplete reports that the last
// pending assignee completed and the task flipped to completed.
func (s *Store) UpdateGroupTask(ctx context.Context, id string, u GroupTaskUpdate) (task *models.GroupTask, markedComplete bool, err error) {
	now := s.now()
	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if u.Fields != nil {
			if err := updateFields(ctx, tx, "group_tasks", id, *u.Fields, now); err != nil {
				return err
			}
			if u.ReplaceAssignees {
				if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM group_task_assignees WHERE group_task_id = ?"), id); err != nil {
					return translateError(err)
				}
				if err := insertAssignees(ctx, tx, id, u.AssigneeIDs, now); err != nil {
					return err
				}
			}
		}
		if u.Status == "" {
			return nil
		}
		var err error
		markedComplete, err = setAssigneeStatus(ctx, tx, id, u.StatusUserID, u.Status, now)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("updating group task %s: %w", id, err)
	}
	task, err = s.GetGroupTask(ctx, id)
	return task, markedComplete, err
}

// setAssigneeStatus updates userID's assignee row. When the new status is
// completed and no other assignee is pending, the task is marked completed.
func setAssigneeStatus(ctx context.Context, tx *sqlx.Tx, taskID, userID, status string, now time.Time) (bool, error) {
	if err := exec(ctx, tx, `
		UPDATE group_task_assignees SET status = ?, updated_at = ?
		WHERE group_task_id = ? AND user_id = ?`,
		status, now, taskID, userID,
	); err != nil {
		return false, err
	}
	if status != models.AssigneeCompleted {
		return false, nil
	}

	var remaining int
	if err := get(ctx, tx, &remaining,
		"SELECT COUNT(*) FROM group_task_assignees WHERE group_task_id = ? AND status <> ?",
		taskID, models.AssigneeCompleted,
	); err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}

	err := exec(ctx, tx,
		"UPDATE group_tasks SET completed = ?, updated_at = ? WHERE id = ? AND completed = ?",
		true, now, taskID, false,
	)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		// already completed
		return false, nil
	default:
		return false, err
	}
}

// DeleteGroupTask removes the task; assignees and comments cascade.
func (s *Store) DeleteGroupTask(ctx context.Context, id string) error {
	if err := exec(ctx, s.db, "DELETE FROM group_tasks WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting group task %s: %w", id, err)
	}
	return nil
}
