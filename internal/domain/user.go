package domain

import (
	"context"
	"fmt"
	"time"
)

// User is the canonical profile record stored in PostgreSQL.
type User struct {
	ID        int64
	FirstName string
	LastName  string
	BirthDate time.Time
	Sex       bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRepository captures persistence operations for users. Lookups return
// nil without an error when no row matches.
type UserRepository interface {
	FindAll(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, user User) (*User, error)
	Update(ctx context.Context, user User) (*User, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UserService owns the user profile CRUD workflows.
type UserService struct {
	repo UserRepository
}

// NewUserService constructs a UserService.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// ListUsers returns every stored profile.
func (s *UserService) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.FindAll(ctx)
}

// GetUser fetches a profile by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CreateUser persists a new profile and returns it with the assigned id.
func (s *UserService) CreateUser(ctx context.Context, user User) (*User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// UpdateUser replaces every mutable field of an existing profile. Partial
// updates are rejected upstream at validation, never merged here.
func (s *UserService) UpdateUser(ctx context.Context, user User) (*User, error) {
	existing, err := s.repo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", user.ID, err)
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}

	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	existing.BirthDate = user.BirthDate
	existing.Sex = user.Sex
	existing.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, *existing)
	if err != nil {
		return nil, fmt.Errorf("update user %d: %w", user.ID, err)
	}
	if updated == nil {
		return nil, ErrUserNotFound
	}
	return updated, nil
}

// DeleteUser removes a profile by id.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if !deleted {
		return ErrUserNotFound
	}
	return nil
}
