package app

import (
	"context"

	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// SubmitFastestFinger records a player's ordering for the current heat.
func (s *Service) SubmitFastestFinger(ctx context.Context, code, playerID string, order []int, elapsedMs int64) error {
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.SubmitFFF(room, playerID, order, elapsedMs)
	})
	return err
}

// EnactHeat applies a resolved heat. Host only; a heat that was superseded is rejected.
func (s *Service) EnactHeat(ctx context.Context, code, actorID string, res game.HeatResult) error {
	room, err := s.hostMutate(ctx, code, actorID, func(room domain.Room) (domain.Patch, error) {
		return game.EnactHeat(room, res, s.rng)
	})
	if err != nil {
		return err
	}
	s.log.Info("heat resolved",
		zap.String("code", room.GameCode),
		zap.Int("heat", res.QuestionIndex),
		zap.String("outcome", string(res.Outcome)),
		zap.String("winner", res.WinnerID),
		zap.Strings("tied", res.Tied))
	return nil
}

// Catalog returns the fastest finger questions every client resolves heats against.
func (s *Service) Catalog(ctx context.Context) ([]domain.FFFQuestion, error) {
	if s.catalog == nil {
		return domain.DefaultFFFCatalog, nil
	}
	return s.catalog.Catalog(ctx)
}
