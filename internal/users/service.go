// internal/users/service.go

package users

import (
	"context"

	"github.com/rs/zerolog/log"
)

type Service interface {
	GetProfile(ctx context.Context, userID int64) (*UserProfile, error)
	BlockUser(ctx context.Context, userID, blockedID int64) error
	UnblockUser(ctx context.Context, userID, blockedID int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *service) BlockUser(ctx context.Context, userID, blockedID int64) error {
	if userID == blockedID {
		return ErrCannotBlockSelf
	}

	if _, err := s.repo.GetByID(ctx, blockedID); err != nil {
		return err
	}

	if err := s.repo.BlockUser(ctx, userID, blockedID); err != nil {
		return err
	}

	log.Info().Int64("user_id", userID).Int64("blocked_id", blockedID).Msg("User blocked")
	return nil
}

func (s *service) UnblockUser(ctx context.Context, userID, blockedID int64) error {
	if userID == blockedID {
		return ErrCannotBlockSelf
	}
	return s.repo.UnblockUser(ctx, userID, blockedID)
}
