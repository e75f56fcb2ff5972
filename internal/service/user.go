package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trainlog/trainlog/internal/model"
	"github.com/trainlog/trainlog/internal/repository"
	"github.com/trainlog/trainlog/internal/validation"
)

// ErrSelfModification blocks admins from demoting or deleting themselves,
// which could leave the system without an admin.
var ErrSelfModification = errors.New("admins cannot change their own account")

type UserService struct {
	userRepository repository.UserRepository
	emailService   *EmailService
}

func NewUserService(userRepository repository.UserRepository, emailService *EmailService) *UserService {
	return &UserService{
		userRepository: userRepository,
		emailService:   emailService,
	}
}

func (s *UserService) Users(ctx context.Context) ([]*model.PublicUser, error) {
	return s.userRepository.Users(ctx)
}

func (s *UserService) ByID(ctx context.Context, id int64) (*model.PublicUser, error) {
	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) UpdateRole(ctx context.Context, actorID, id int64, role string) (*model.PublicUser, error) {
	if role != model.RoleUser && role != model.RoleAdmin {
		return nil, &validation.Error{Field: "role", Message: "role must be user or admin."}
	}
	if actorID == id {
		return nil, ErrSelfModification
	}

	if err := s.userRepository.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	slog.Info("user role updated", "actor_id", actorID, "user_id", id, "role", role)
	return s.ByID(ctx, id)
}

// Delete removes a user. Workouts and goals cascade; exercises the user
// created stay in the catalog without an owner.
func (s *UserService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return ErrSelfModification
	}

	user, err := s.userRepository.ByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user deleted", "actor_id", actorID, "user_id", id)

	if err := s.emailService.SendAccountDeletedEmail(ctx, user.Email, user.Username); err != nil {
		slog.Warn("failed to send account deleted email", "error", err, "user_id", id)
	}
	return nil
}

func (s *UserService) Stats(ctx context.Context) (*model.AdminStats, error) {
	return s.userRepository.AdminStats(ctx)
}
