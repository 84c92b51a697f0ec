package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"todo-collab/internal/models"
)

// maxSubtaskID is the largest id a client may send.
const maxSubtaskID = 1 << 31

type subtaskInput struct {
	ID        *int   `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ParseSubtasks accepts a JSON array of subtasks or a JSON string holding
// one. Entries without a usable id, or repeating an earlier id, are numbered
// after the highest id present. null and "" yield an empty list.
func ParseSubtasks(raw json.RawMessage) (models.Subtasks, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return models.Subtasks{}, nil
	}

	if raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, invalid("Invalid subtasks")
		}
		if strings.TrimSpace(encoded) == "" {
			return models.Subtasks{}, nil
		}
		raw = []byte(encoded)
	}

	var in []subtaskInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, invalid("Invalid subtasks")
	}

	maxID := 0
	for _, s := range in {
		if s.ID == nil {
			continue
		}
		if *s.ID > maxSubtaskID {
			return nil, invalid("Invalid subtasks")
		}
		maxID = max(maxID, *s.ID)
	}

	out := make(models.Subtasks, 0, len(in))
	seen := make(map[int]bool, len(in))
	for _, s := range in {
		title := strings.TrimSpace(s.Title)
		if title == "" {
			return nil, invalid("Subtask title is required")
		}
		id := 0
		if s.ID != nil {
			id = *s.ID
		}
		if id <= 0 || seen[id] {
			maxID++
			id = maxID
		}
		seen[id] = true
		out = append(out, models.Subtask{ID: id, Title: title, Completed: s.Completed})
	}
	return out, nil
}

const dateOnly = "2006-01-02"

// parseDueDate accepts RFC 3339 or a bare date. null and "" clear the date.
func parseDueDate(raw json.RawMessage) (*time.Time, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, invalid("Invalid due date")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, invalid("Invalid due date")
}
