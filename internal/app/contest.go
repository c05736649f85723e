package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// Answer submits the contestant's choice.
func (s *Service) Answer(ctx context.Context, code, playerID string, option int) (game.AnswerResult, error) {
	var res game.AnswerResult
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		r, p, err := game.Answer(room, playerID, option)
		res = r
		return p, err
	})
	return res, err
}

// WalkAway banks the current tier's prize. Callers confirm first; see Session.
func (s *Service) WalkAway(ctx context.Context, code, playerID string) (int, error) {
	var prize int
	room, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		amount, p, err := game.WalkAway(room, playerID)
		prize = amount
		return p, err
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("player walked away", zap.String("code", room.GameCode), zap.String("player", playerID), zap.Int("prize", prize))
	return prize, nil
}

// ProvisionQuestion generates the question the room is waiting for. Host only. The
// loading flag is raised first and the result is only written if the turn still needs it.
func (s *Service) ProvisionQuestion(ctx context.Context, code, actorID string, need game.QuestionNeed) error {
	if _, err := s.hostMutate(ctx, code, actorID, func(room domain.Room) (domain.Patch, error) {
		return game.BeginLoading(room, need)
	}); err != nil {
		return err
	}

	key := fmt.Sprintf("%s/%s", code, need.Contestant)
	q, fallback := s.questions.Provide(ctx, key, need.Age, need.Prize, need.Tier)

	room, err := s.hostMutate(ctx, code, actorID, func(room domain.Room) (domain.Patch, error) {
		return game.SetQuestion(room, need, q)
	})
	if err != nil {
		return err
	}
	s.log.Info("question provisioned",
		zap.String("code", room.GameCode),
		zap.String("contestant", need.Contestant),
		zap.Int("tier", need.Tier),
		zap.Bool("fallback", fallback))
	return nil
}

// CompleteGame moves a finished game to final scores. Host only.
func (s *Service) CompleteGame(ctx context.Context, code, actorID string) error {
	room, err := s.hostMutate(ctx, code, actorID, game.Complete)
	if err != nil {
		return err
	}
	s.log.Info("game completed", zap.String("code", room.GameCode))
	return nil
}

// ArchiveResults stores the final ranking. Host only; repeated calls overwrite.
func (s *Service) ArchiveResults(ctx context.Context, code, actorID string) error {
	if s.archive == nil {
		return nil
	}
	room, err := s.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if !room.IsHost(actorID) {
		return domain.ErrNotHost
	}
	if room.Status != domain.StatusFinalScores {
		return fmt.Errorf("%w: game is not finished", domain.ErrInvalidState)
	}
	if err := s.archive.SaveResults(ctx, room.GameCode, game.Rankings(room), s.now()); err != nil {
		return fmt.Errorf("archive results: %w", err)
	}
	return nil
}
