package service

import (
	"context"
	"errors"

	"discusshub/internal/models"
	"discusshub/internal/repository"
)

// UserService handles user registration and role management.
type UserService struct {
	users repository.UserRepository
}

// NewUserService returns a UserService backed by the given repository.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// RegisterUser stores the user unless the email is already registered.
// Registration is idempotent per email: a repeat returns (false, nil) and
// leaves the existing record untouched.
func (s *UserService) RegisterUser(ctx context.Context, user *models.User) (created bool, err error) {
	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win the race between the lookup and
		// the insert; treat the unique violation as the idempotent case.
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetUserByEmail returns the user with the address, or nil when absent.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// ListUsers returns every registered user.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// PromoteToAdmin grants the admin role to the user with the given ID.
func (s *UserService) PromoteToAdmin(ctx context.Context, id uint) error {
	return s.users.PromoteToAdmin(ctx, id)
}

// DeleteUser removes the user record. Their posts stay.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.users.Delete(ctx, id)
}

// IsAdmin reports whether the email belongs to an admin. An unknown email is
// simply not an admin.
func (s *UserService) IsAdmin(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsAdmin(), nil
}
