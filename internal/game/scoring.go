package game

import (
	"slices"
	"sort"

	"millionaire-service/internal/domain"
)

// SafetyNetPrize is the guaranteed prize after a wrong answer: the highest safety net
// at or below the last fully answered tier. Pass -1 when nothing was answered.
func SafetyNetPrize(lastAnswered int) int {
	prize := 0
	for _, idx := range domain.SafetyNetIndices {
		if idx <= lastAnswered {
			prize = domain.Prize(idx)
		}
	}
	return prize
}

// Rankings orders players by score, highest first, then by name.
func Rankings(room domain.Room) []domain.Ranking {
	out := make([]domain.Ranking, 0, len(room.Players))
	for id, p := range room.Players {
		out = append(out, domain.Ranking{
			PlayerID: id,
			Name:     p.Name,
			Score:    p.Score,
			Outcome:  outcome(room, id),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func outcome(room domain.Room, id string) domain.Outcome {
	switch {
	case slices.Contains(room.EliminatedPlayers, id):
		return domain.OutcomeEliminated
	case !room.HasPlayed(id):
		return domain.OutcomeWaiting
	case room.Players[id].Score >= domain.Prize(domain.TopTier()):
		return domain.OutcomeCompleted
	default:
		return domain.OutcomeWalkedAway
	}
}

// GameComplete reports whether every player is out or has had their turn.
func GameComplete(room domain.Room) bool {
	if room.Status != domain.StatusInGame {
		return false
	}
	for id, p := range room.Players {
		if p.IsActive && !room.HasPlayed(id) {
			return false
		}
	}
	return true
}

// Complete moves a finished game to final scores.
func Complete(room domain.Room) (domain.Patch, error) {
	if room.Status != domain.StatusInGame {
		return nil, domain.ErrNotInGame
	}
	if !GameComplete(room) {
		return nil, domain.ErrIllegalTransition
	}
	return domain.Patch{
		"status":                domain.StatusFinalScores,
		"currentTurnPlayerId":   nil,
		"currentQuestion":       nil,
		"isLoadingQuestion":     false,
		"activeLifelineRequest": nil,
	}, nil
}
