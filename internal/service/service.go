// Package service holds the domain rules: ownership, the group task
// assignee state machine and the friendship request state machine. Every
// failure it returns is an *Error whose Kind the HTTP layer maps to a
// status code.
package service

import (
	"strings"

	"todo-collab/internal/repository"
	"todo-collab/pkg/cache"

	"golang.org/x/crypto/bcrypt"
)

type Services struct {
	Users      *UserService
	Tasks      *TaskService
	GroupTasks *GroupTaskService
	Comments   *CommentService
	Friends    *FriendService
}

// New wires every service to the same store and cache.
func New(store *repository.Store, c cache.Cache) *Services {
	if c == nil {
		c = cache.Nop{}
	}
	return &Services{
		Users:      &UserService{store: store, cache: c, PasswordCost: bcrypt.DefaultCost},
		Tasks:      &TaskService{store: store, cache: c},
		GroupTasks: &GroupTaskService{store: store},
		Comments:   &CommentService{store: store},
		Friends:    &FriendService{store: store},
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// trimmedOrNil drops blank optional strings.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
