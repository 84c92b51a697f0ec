package service

import (
	"context"
	"errors"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/logger"

	"go.uber.org/zap"
)

// FriendService runs the friend request state machine:
// pending -> accepted | rejected, answered only by the receiver.
type FriendService struct {
	store *repository.Store
}

func (s *FriendService) List(ctx context.Context, userID string) (*models.FriendList, error) {
	friends, err := s.store.ListFriendships(ctx, userID, models.FriendshipAccepted, repository.Either)
	if err != nil {
		return nil, internal("Failed to fetch friends", err)
	}
	sent, err := s.store.ListFriendships(ctx, userID, models.FriendshipPending, repository.Sent)
	if err != nil {
		return nil, internal("Failed to fetch friends", err)
	}
	received, err := s.store.ListFriendships(ctx, userID, models.FriendshipPending, repository.Received)
	if err != nil {
		return nil, internal("Failed to fetch friends", err)
	}
	return &models.FriendList{Friends: friends, PendingSent: sent, PendingReceived: received}, nil
}

// Request sends a friend request to the user registered under email. Only
// one friendship may exist per pair of users, whoever initiated it.
func (s *FriendService) Request(ctx context.Context, userID, email string) (*models.FriendEntry, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("Friend email is required")
	}

	friend, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, lookupError(err, "User with this email not found", "Failed to send friend request")
	}
	if friend.ID == userID {
		return nil, invalid("You cannot add yourself as a friend")
	}

	_, err = s.store.FindFriendshipBetween(ctx, userID, friend.ID)
	switch {
	case err == nil:
		return nil, conflict("Friendship request already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return nil, internal("Failed to send friend request", err)
	}

	f, err := s.store.CreateFriendship(ctx, userID, friend.ID)
	if err != nil {
		// lost a race with a concurrent request for the same pair
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Friendship request already exists")
		}
		return nil, internal("Failed to send friend request", err)
	}

	logger.AuditLogger.Info("Friend request sent",
		zap.String("friendship_id", f.ID), zap.String("user_id", userID))
	return &models.FriendEntry{
		ID:           friend.ID,
		Name:         friend.Name,
		Email:        friend.Email,
		FriendshipID: f.ID,
		Status:       f.Status,
	}, nil
}

// Respond lets the receiver accept or reject a pending request. The result
// describes the initiator.
func (s *FriendService) Respond(ctx context.Context, userID, id, status string) (*models.FriendEntry, error) {
	f, err := s.store.GetFriendship(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Friendship not found", "Failed to update friendship")
	}
	if f.ReceiverID != userID {
		logger.SecurityLogger.Warn("Friend request answered by non-receiver",
			zap.String("friendship_id", id), zap.String("user_id", userID))
		return nil, forbidden("Unauthorized")
	}
	if status != models.FriendshipAccepted && status != models.FriendshipRejected {
		return nil, invalid("Invalid status")
	}
	if f.Status != models.FriendshipPending {
		return nil, invalid("Friend request has already been answered")
	}

	// the update only matches a pending row, so a concurrent answer loses here
	updated, err := s.store.AnswerFriendship(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("Friend request has already been answered")
		}
		return nil, internal("Failed to update friendship", err)
	}
	initiator, err := s.store.GetUserByID(ctx, f.InitiatorID)
	if err != nil {
		return nil, internal("Failed to update friendship", err)
	}

	logger.AuditLogger.Info("Friend request answered",
		zap.String("friendship_id", id), zap.String("status", status))
	return &models.FriendEntry{
		ID:           initiator.ID,
		Name:         initiator.Name,
		Email:        initiator.Email,
		FriendshipID: updated.ID,
		Status:       updated.Status,
	}, nil
}

// Remove deletes a friendship in any state. Either party may do it.
func (s *FriendService) Remove(ctx context.Context, userID, id string) error {
	f, err := s.store.GetFriendship(ctx, id)
	if err != nil {
		return lookupError(err, "Friendship not found", "Failed to remove friend")
	}
	if f.InitiatorID != userID && f.ReceiverID != userID {
		return forbidden("Unauthorized")
	}
	if err := s.store.DeleteFriendship(ctx, id); err != nil {
		return lookupError(err, "Friendship not found", "Failed to remove friend")
	}
	logger.AuditLogger.Info("Friendship removed",
		zap.String("friendship_id", id), zap.String("user_id", userID))
	return nil
}
