package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Toleubekov/auction-system/models"
	"github.com/Toleubekov/auction-system/repositories"
)

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateNickname(ctx context.Context, currentUserID, id int, nickname string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateNickname позволяет пользователю менять только собственный никнейм.
func (s *userService) UpdateNickname(ctx context.Context, currentUserID, id int, nickname string) (*models.User, error) {
	if currentUserID != id {
		return nil, ErrForbiddenOperation
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrValidationFailed
	}

	if err := s.userRepo.UpdateNickname(ctx, id, nickname); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserNicknameConflict):
			return nil, ErrUserNicknameConflict
		}
		return nil, fmt.Errorf("failed to update nickname: %w", err)
	}
	return s.GetByID(ctx, id)
}
