package repository

import (
	"context"
	"fmt"

	"todo-collab/internal/models"

	"github.com/google/uuid"
)

const userColumns = "id, email, name, image, hashed_password, created_at, updated_at"

// CreateUser inserts u, filling its id and timestamps.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	u.UpdatedAt = u.CreatedAt

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, email, name, image, hashed_password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Email, u.Name, u.Image, u.HashedPassword, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating user: %w", translateError(err))
	}
	return nil
}

// UpsertUserByEmail returns the user with email, creating a minimal record
// first when none exists. Existing profiles are left untouched.
func (s *Store) UpsertUserByEmail(ctx context.Context, email string, name, image *string) (*models.User, error) {
	now := s.now()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, email, name, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`),
		uuid.NewString(), email, name, image, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upserting user %s: %w", email, translateError(err))
	}
	return s.GetUserByEmail(ctx, email)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := get(ctx, s.db, &u, "SELECT "+userColumns+" FROM users WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := get(ctx, s.db, &u, "SELECT "+userColumns+" FROM users WHERE email = ?", email); err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &u, nil
}

// UpdateUserProfile changes only the non-nil fields.
func (s *Store) UpdateUserProfile(ctx context.Context, id string, name, image *string) (*models.User, error) {
	err := exec(ctx, s.db, `
		UPDATE users
		SET name = COALESCE(?, name),
			image = COALESCE(?, image),
			updated_at = ?
		WHERE id = ?`,
		name, image, s.now(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user %s: %w", id, err)
	}
	return s.GetUserByID(ctx, id)
}
