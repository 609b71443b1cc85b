package service

import (
	"context"
	"log"

	"matreshka-feed/internal/domain"
	"matreshka-feed/internal/repository"
)

type UserService interface {
	// Upsert creates or refreshes the Telegram account cache entry.
	// A no-op on backends without a user table.
	Upsert(ctx context.Context, user *domain.User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error)
}

type userService struct {
	users repository.UserRepository
}

// NewUserService accepts a nil repository for the local backend, where
// no user table exists.
func NewUserService(users repository.UserRepository) UserService {
	return &userService{users: users}
}

func (s *userService) Upsert(ctx context.Context, user *domain.User) error {
	if s.users == nil {
		return nil
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return err
	}
	log.Printf("User upserted: %d (@%s)", user.TelegramID, user.Username)
	return nil
}

func (s *userService) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	if s.users == nil {
		return nil, nil
	}
	return s.users.GetByTelegramID(ctx, telegramID)
}
