package app

import (
	"context"

	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// FiftyFifty removes two wrong options and returns the disabled indices.
func (s *Service) FiftyFifty(ctx context.Context, code, playerID string) ([]int, error) {
	var disabled []int
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		d, p, err := game.FiftyFifty(room, playerID, s.rng)
		disabled = d
		return p, err
	})
	return disabled, err
}

// AskAudience opens an audience poll.
func (s *Service) AskAudience(ctx context.Context, code, playerID string) error {
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.AskAudience(room, playerID)
	})
	return err
}

// PhoneFriend calls targetID for a suggestion.
func (s *Service) PhoneFriend(ctx context.Context, code, playerID, targetID string) error {
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.PhoneFriend(room, playerID, targetID)
	})
	return err
}

// SubmitAudienceVote records one audience vote.
func (s *Service) SubmitAudienceVote(ctx context.Context, code, playerID string, option int) error {
	return s.respond(ctx, code, playerID, option, domain.LifelineAudience)
}

// SubmitFriendSuggestion records the called friend's answer.
func (s *Service) SubmitFriendSuggestion(ctx context.Context, code, playerID string, option int) error {
	return s.respond(ctx, code, playerID, option, domain.LifelineFriend)
}

func (s *Service) respond(ctx context.Context, code, playerID string, option int, kind domain.LifelineType) error {
	_, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		if req := room.ActiveLifelineRequest; req == nil || req.Type != kind {
			return nil, domain.ErrNoLifelineRequest
		}
		return game.Respond(room, playerID, option)
	})
	return err
}

// AggregateLifeline publishes the result of a completed request. Host only.
func (s *Service) AggregateLifeline(ctx context.Context, code, actorID string) error {
	var req *domain.LifelineRequest
	room, err := s.hostMutate(ctx, code, actorID, func(room domain.Room) (domain.Patch, error) {
		req = room.ActiveLifelineRequest
		return game.Aggregate(room)
	})
	if err != nil {
		return err
	}
	s.log.Info("lifeline resolved",
		zap.String("code", room.GameCode),
		zap.String("type", string(req.Type)),
		zap.String("initiator", req.InitiatorID))
	return nil
}

// ClearStaleRequest drops a lifeline request raised for an earlier question. Host only.
func (s *Service) ClearStaleRequest(ctx context.Context, code, actorID string) error {
	_, err := s.hostMutate(ctx, code, actorID, game.ClearStaleRequest)
	return err
}
