package service

import (
	"context"
	"strings"

	"github.com/fixmore/mall/internal/cache"
	"github.com/fixmore/mall/internal/constants"
	"github.com/fixmore/mall/internal/logger"
	"github.com/fixmore/mall/internal/models"
	"github.com/fixmore/mall/internal/repository"
)

// UserAdminService manages customer accounts from the admin panel.
type UserAdminService struct {
	userRepo repository.UserRepository
}

// NewUserAdminService creates a user admin service.
func NewUserAdminService(userRepo repository.UserRepository) *UserAdminService {
	return &UserAdminService{userRepo: userRepo}
}

// List lists users.
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// GetByID fetches a user.
func (s *UserAdminService) GetByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateStatus enables or disables an account. Disabling bumps the token
// version, so outstanding tokens stop validating on the next request.
func (s *UserAdminService) UpdateStatus(id uint, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return nil, ErrNotFound
	}

	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if user.Status == status {
		return user, nil
	}

	if err := s.userRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}
	_ = cache.DelUserAuthState(context.Background(), id)

	logger.Infow("user_status_updated",
		"user_id", id,
		"previous_status", user.Status,
		"status", status,
	)
	return s.userRepo.GetByID(id)
}
