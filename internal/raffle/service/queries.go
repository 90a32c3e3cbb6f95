package service

import (
	"context"
	"errors"

	"raffle/internal/raffle/models"
	id "raffle/pkg/domain"
	dErrors "raffle/pkg/domain-errors"
	"raffle/pkg/platform/sentinel"
)

// GetRegistry returns the registry. An uninitialized registry is returned as
// the zero value.
func (s *Service) GetRegistry(ctx context.Context) (*models.Registry, error) {
	reg, err := s.store.GetRegistry(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registry")
	}
	return reg, nil
}

func (s *Service) GetRaffle(ctx context.Context, raffleID id.RaffleID) (*models.Raffle, error) {
	r, err := s.store.GetRaffle(ctx, raffleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ReasonRaffleNotFound.Err()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load raffle")
	}
	return r, nil
}

// ListRaffles returns raffles matching filter, ordered by id.
func (s *Service) ListRaffles(ctx context.Context, filter models.ListFilter) ([]*models.Raffle, error) {
	raffles, err := s.store.ListRaffles(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list raffles")
	}
	return raffles, nil
}
