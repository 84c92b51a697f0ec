package repository

import (
	"context"
	"fmt"

	"todo-collab/internal/models"

	"github.com/google/uuid"
)

const friendshipColumns = "id, initiator_id, receiver_id, status, created_at, updated_at"

// pairKey orders two user ids so the pair has one canonical form.
func pairKey(a, b string) (low, high string) {
	if a < b {
		return a, b
	}
	return b, a
}

// CreateFriendship inserts a pending request. A request for a pair that
// already has a row in either direction fails with ErrDuplicate.
func (s *Store) CreateFriendship(ctx context.Context, initiatorID, receiverID string) (*models.Friendship, error) {
	now := s.now()
	f := &models.Friendship{
		ID:          uuid.NewString(),
		InitiatorID: initiatorID,
		ReceiverID:  receiverID,
		Status:      models.FriendshipPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	low, high := pairKey(initiatorID, receiverID)

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO friendships (id, initiator_id, receiver_id, user_low, user_high, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		f.ID, f.InitiatorID, f.ReceiverID, low, high, f.Status, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating friendship: %w", translateError(err))
	}
	return f, nil
}

func (s *Store) GetFriendship(ctx context.Context, id string) (*models.Friendship, error) {
	var f models.Friendship
	if err := get(ctx, s.db, &f, "SELECT "+friendshipColumns+" FROM friendships WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting friendship %s: %w", id, err)
	}
	return &f, nil
}

// FindFriendshipBetween returns the row linking a and b in either direction.
func (s *Store) FindFriendshipBetween(ctx context.Context, a, b string) (*models.Friendship, error) {
	var f models.Friendship
	err := get(ctx, s.db, &f, `
		SELECT `+friendshipColumns+` FROM friendships
		WHERE (initiator_id = ? AND receiver_id = ?)
		   OR (initiator_id = ? AND receiver_id = ?)`,
		a, b, b, a,
	)
	if err != nil {
		return nil, fmt.Errorf("finding friendship: %w", err)
	}
	return &f, nil
}

// Direction selects which side of a friendship the listing user is on.
type Direction int

const (
	// Either matches rows where the user is initiator or receiver.
	Either Direction = iota
	Sent
	Received
)

// ListFriendships returns the other party of every friendship of userID with
// the given status, oldest first.
func (s *Store) ListFriendships(ctx context.Context, userID, status string, dir Direction) ([]models.FriendEntry, error) {
	var query string
	var args []any
	switch dir {
	case Sent:
		query = `
			SELECT u.id, u.name, u.email, f.id AS friendship_id, f.status
			FROM friendships f
			JOIN users u ON u.id = f.receiver_id
			WHERE f.initiator_id = ? AND f.status = ?`
		args = []any{userID, status}
	case Received:
		query = `
			SELECT u.id, u.name, u.email, f.id AS friendship_id, f.status
			FROM friendships f
			JOIN users u ON u.id = f.initiator_id
			WHERE f.receiver_id = ? AND f.status = ?`
		args = []any{userID, status}
	default:
		query = `
			SELECT u.id, u.name, u.email, f.id AS friendship_id, f.status
			FROM friendships f
			JOIN users u ON u.id = CASE WHEN f.initiator_id = ? THEN f.receiver_id ELSE f.initiator_id END
			WHERE (f.initiator_id = ? OR f.receiver_id = ?) AND f.status = ?`
		args = []any{userID, userID, userID, status}
	}

	entries := []models.FriendEntry{}
	if err := selectAll(ctx, s.db, &entries, query+" ORDER BY f.created_at, f.id", args...); err != nil {
		return nil, fmt.Errorf("listing friendships for %s: %w", userID, err)
	}
	return entries, nil
}

// AnswerFriendship moves a pending friendship to status. It returns
// ErrNotFound when the row is gone or was already answered.
func (s *Store) AnswerFriendship(ctx context.Context, id, status string) (*models.Friendship, error) {
	err := exec(ctx, s.db, "UPDATE friendships SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		status, s.now(), id, models.FriendshipPending)
	if err != nil {
		return nil, fmt.Errorf("updating friendship %s: %w", id, err)
	}
	return s.GetFriendship(ctx, id)
}

func (s *Store) DeleteFriendship(ctx context.Context, id string) error {
	if err := exec(ctx, s.db, "DELETE FROM friendships WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting friendship %s: %w", id, err)
	}
	return nil
}
