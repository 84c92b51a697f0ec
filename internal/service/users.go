package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"todo-collab/internal/models"
	"todo-collab/internal/repository"
	"todo-collab/pkg/cache"
	"todo-collab/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const userCacheTTL = 10 * time.Minute

func userKey(id string) string { return "user:" + id }

type UserService struct {
	store *repository.Store
	cache cache.Cache

	// PasswordCost is the bcrypt cost used by SignUp.
	PasswordCost int
}

// SignUp creates a password account. The returned user never carries the
// hash.
func (s *UserService) SignUp(ctx context.Context, email, name, password string) (*models.User, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return nil, invalid("Email, name, and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, invalid("Password is too long")
		}
		return nil, internal("Failed to hash password", err)
	}
	hash := string(hashed)

	u := &models.User{Email: email, Name: &name, HashedPassword: &hash}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("Email already exists")
		}
		return nil, internal("An error occurred during signup", err)
	}

	logger.AuditLogger.Info("User signed up", zap.String("user_id", u.ID))
	u.HashedPassword = nil
	return u, nil
}

// Authenticate checks a password login. Unknown emails, OAuth-only accounts
// and wrong passwords all fail the same way.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Failed to log in", err)
	}
	if err != nil || u.HashedPassword == nil {
		logger.SecurityLogger.Warn("Login failed: unknown account", zap.String("email", email))
		return nil, unauthenticated("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte(password)); err != nil {
		logger.SecurityLogger.Warn("Login failed: wrong password", zap.String("user_id", u.ID))
		return nil, unauthenticated("Invalid email or password")
	}

	u.HashedPassword = nil
	return u, nil
}

// Provision returns the user for an externally verified email, creating it
// on first sight. It is the only place users appear without signing up.
func (s *UserService) Provision(ctx context.Context, email string, name, image *string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("Email is required")
	}
	u, err := s.store.UpsertUserByEmail(ctx, email, trimmedOrNil(name), trimmedOrNil(image))
	if err != nil {
		return nil, internal("Failed to provision user", err)
	}
	u.HashedPassword = nil
	return u, nil
}

// Get loads a user through the cache.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := cache.GetJSON(ctx, s.cache, userKey(id), &u)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.SystemLogger.Warn("User cache read failed", zap.String("user_id", id), zap.Error(err))
	}

	found, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to fetch user")
	}
	found.HashedPassword = nil
	if err := cache.SetJSON(ctx, s.cache, userKey(id), found, userCacheTTL); err != nil {
		logger.SystemLogger.Warn("User cache write failed", zap.String("user_id", id), zap.Error(err))
	}
	return found, nil
}

// UpdateProfile changes the name and/or image. Blank values count as
// absent and at least one must remain.
func (s *UserService) UpdateProfile(ctx context.Context, id string, name, image *string) (*models.User, error) {
	name, image = trimmedOrNil(name), trimmedOrNil(image)
	if name == nil && image == nil {
		return nil, invalid("At least one field to update is required")
	}

	u, err := s.store.UpdateUserProfile(ctx, id, name, image)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to update profile")
	}
	if err := s.cache.Del(ctx, userKey(id)); err != nil {
		logger.SystemLogger.Warn("User cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}

	logger.AuditLogger.Info("Profile updated", zap.String("user_id", id))
	u.HashedPassword = nil
	return u, nil
}
