package game

import (
	"slices"

	"millionaire-service/internal/domain"
)

// NextContestant scans order circularly from just after current and returns the first
// id that is neither eliminated nor already in history. Nil means nobody is left.
func NextContestant(order, eliminated, history []string, current string) *string {
	if len(order) == 0 {
		return nil
	}
	start := slices.Index(order, current) + 1
	for i := 0; i < len(order); i++ {
		id := order[(start+i)%len(order)]
		if slices.Contains(eliminated, id) || slices.Contains(history, id) {
			continue
		}
		return domain.Ptr(id)
	}
	return nil
}

// endTurn retires the contestant and hands the turn to the successor. Question and
// lifeline state are cleared for whoever plays next.
func endTurn(room domain.Room, playerID string, eliminated bool) domain.Patch {
	history := slices.Clone(room.ContestantHistory)
	if !slices.Contains(history, playerID) {
		history = append(history, playerID)
	}
	out := slices.Clone(room.EliminatedPlayers)
	if eliminated && !slices.Contains(out, playerID) {
		out = append(out, playerID)
	}
	if history == nil {
		history = []string{}
	}
	if out == nil {
		out = []string{}
	}
	next := NextContestant(room.PlayerOrder, out, history, playerID)
	p := domain.Patch{
		"contestantHistory":    history,
		"eliminatedPlayers":    out,
		"currentQuestionIndex": 0,
	}
	if next == nil {
		p["currentTurnPlayerId"] = nil
	} else {
		p["currentTurnPlayerId"] = *next
	}
	return p.Merge(clearQuestion())
}

func clearQuestion() domain.Patch {
	return domain.Patch{
		"currentQuestion":       nil,
		"isLoadingQuestion":     false,
		"questionLifelineState": domain.LifelineState{},
		"activeLifelineRequest": nil,
	}
}
