package service

import (
	"bytes"
	"encoding/json"
	"strings"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
)

// TaskInput is the body accepted when creating or patching a task. Absent
// fields stay nil and are left unchanged on update.
type TaskInput struct {
	Title         *string         `json:"title" validate:"omitempty,max=255"`
	Completed     *bool           `json:"completed"`
	Category      *string         `json:"category" validate:"omitempty,max=100"`
	CategoryColor *string         `json:"categoryColor" validate:"omitempty,max=32"`
	Subtasks      json.RawMessage `json:"subtasks"`
	DueDate       json.RawMessage `json:"dueDate"`
}

// GroupTaskInput adds the group-only fields. Status is the caller's own
// assignee status and is the only field a non-owner may send.
type GroupTaskInput struct {
	TaskInput
	AssigneeIDs *[]string `json:"assigneeIds"`
	Status      *string   `json:"status" validate:"omitempty,oneof=pending completed"`
}

// hasOwnerFields reports whether anything other than status was sent.
func (in GroupTaskInput) hasOwnerFields() bool {
	return in.Title != nil || in.Completed != nil || in.Category != nil ||
		in.CategoryColor != nil || present(in.Subtasks) || present(in.DueDate) ||
		in.AssigneeIDs != nil
}

func present(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) > 0
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// patch validates in and converts it to store changes. On create the title
// is mandatory.
func (in TaskInput) patch(creating bool) (repository.FieldPatch, error) {
	var p repository.FieldPatch

	switch {
	case in.Title != nil:
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return p, invalid("Title is required")
		}
		p.Title = &title
	case creating:
		return p, invalid("Title is required")
	}

	p.Completed = in.Completed
	p.Category = in.Category
	p.CategoryColor = in.CategoryColor

	if present(in.Subtasks) {
		subtasks, err := ParseSubtasks(in.Subtasks)
		if err != nil {
			return p, err
		}
		p.Subtasks = &subtasks
	}

	if present(in.DueDate) {
		due, err := parseDueDate(in.DueDate)
		if err != nil {
			return p, err
		}
		p.SetDueDate = true
		p.DueDate = due
	}
	return p, nil
}

func newTask(userID string, p repository.FieldPatch) *models.Task {
	t := &models.Task{
		UserID:        userID,
		Category:      p.Category,
		CategoryColor: p.CategoryColor,
		Subtasks:      models.Subtasks{},
		DueDate:       p.DueDate,
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Subtasks != nil {
		t.Subtasks = *p.Subtasks
	}
	return t
}

func newGroupTask(ownerID string, p repository.FieldPatch) *models.GroupTask {
	t := newTask(ownerID, p)
	return &models.GroupTask{
		Title:         t.Title,
		Completed:     t.Completed,
		Category:      t.Category,
		CategoryColor: t.CategoryColor,
		Subtasks:      t.Subtasks,
		DueDate:       t.DueDate,
		OwnerID:       ownerID,
	}
}
