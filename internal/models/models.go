package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	AssigneePending   = "pending"
	AssigneeCompleted = "completed"

	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipRejected = "rejected"
)

type User struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Name           *string   `json:"name" db:"name"`
	Image          *string   `json:"image" db:"image"`
	HashedPassword *string   `json:"-" db:"hashed_password"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// UserSummary is the public projection of a user embedded in other records.
type UserSummary struct {
	ID    string  `json:"id" db:"id"`
	Name  *string `json:"name" db:"name"`
	Email string  `json:"email" db:"email"`
}

type Subtask struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Subtasks is stored as a JSON array in a TEXT column.
type Subtasks []Subtask

func (s Subtasks) Value() (driver.Value, error) {
	raw, err := json.Marshal([]Subtask(s.orEmpty()))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *Subtasks) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Subtasks{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("subtasks: unsupported column type %T", src)
	}
	if len(raw) == 0 {
		*s = Subtasks{}
		return nil
	}

	var out []Subtask
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("subtasks: decoding column: %w", err)
	}
	*s = Subtasks(out).orEmpty()
	return nil
}

func (s Subtasks) MarshalJSON() ([]byte, error) {
	return json.Marshal([]Subtask(s.orEmpty()))
}

func (s Subtasks) orEmpty() Subtasks {
	if s == nil {
		return Subtasks{}
	}
	return s
}

type Task struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Completed     bool       `json:"completed" db:"completed"`
	Category      *string    `json:"category" db:"category"`
	CategoryColor *string    `json:"categoryColor" db:"category_color"`
	Subtasks      Subtasks   `json:"subtasks" db:"subtasks"`
	DueDate       *time.Time `json:"dueDate" db:"due_date"`
	UserID        string     `json:"userId" db:"user_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
}

type GroupTask struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Completed     bool       `json:"completed" db:"completed"`
	Category      *string    `json:"category" db:"category"`
	CategoryColor *string    `json:"categoryColor" db:"category_color"`
	Subtasks      Subtasks   `json:"subtasks" db:"subtasks"`
	DueDate       *time.Time `json:"dueDate" db:"due_date"`
	OwnerID       string     `json:"ownerId" db:"owner_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`

	Owner     *UserSummary        `json:"owner,omitempty" db:"-"`
	Assignees []GroupTaskAssignee `json:"assignees" db:"-"`
	Comments  []Comment           `json:"comments" db:"-"`
}

// Assignee returns the caller's assignee row, if any.
func (g *GroupTask) Assignee(userID string) (GroupTaskAssignee, bool) {
	for _, a := range g.Assignees {
		if a.UserID == userID {
			return a, true
		}
	}
	return GroupTaskAssignee{}, false
}

// GroupTaskList is the response of the group task index.
type GroupTaskList struct {
	OwnedTasks    []GroupTask `json:"ownedTasks"`
	AssignedTasks []GroupTask `json:"assignedTasks"`
}

type GroupTaskAssignee struct {
	ID          string      `json:"id" db:"id"`
	GroupTaskID string      `json:"groupTaskId" db:"group_task_id"`
	UserID      string      `json:"userId" db:"user_id"`
	Status      string      `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
	User        UserSummary `json:"user" db:"user"`
}

type Comment struct {
	ID          string      `json:"id" db:"id"`
	Content     string      `json:"content" db:"content"`
	GroupTaskID string      `json:"groupTaskId" db:"group_task_id"`
	UserID      string      `json:"userId" db:"user_id"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	User        UserSummary `json:"user" db:"user"`
}

type Friendship struct {
	ID          string    `json:"id" db:"id"`
	InitiatorID string    `json:"initiatorId" db:"initiator_id"`
	ReceiverID  string    `json:"receiverId" db:"receiver_id"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// FriendEntry describes the other party of a friendship from the caller's
// point of view.
type FriendEntry struct {
	ID           string  `json:"id" db:"id"`
	Name         *string `json:"name" db:"name"`
	Email        string  `json:"email" db:"email"`
	FriendshipID string  `json:"friendshipId" db:"friendship_id"`
	Status       string  `json:"status,omitempty" db:"status"`
}

type FriendList struct {
	Friends         []FriendEntry `json:"friends"`
	PendingSent     []FriendEntry `json:"pendingSent"`
	PendingReceived []FriendEntry `json:"pendingReceived"`
}
