package game

import (
	"fmt"
	"slices"

	"millionaire-service/internal/domain"
)

// AnswerResult describes what a submitted answer did.
type AnswerResult struct {
	Correct      bool    `json:"correct"`
	CorrectIndex int     `json:"correctIndex"`
	CorrectText  string  `json:"correctText"`
	Score        int     `json:"score"`
	TurnOver     bool    `json:"turnOver"`
	Next         *string `json:"nextContestant"`
}

// turnGate checks that playerID may act on the loaded question right now.
func turnGate(room domain.Room, playerID string) (domain.Player, error) {
	if room.Status != domain.StatusInGame {
		return domain.Player{}, domain.ErrNotInGame
	}
	player, ok := room.Players[playerID]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	if room.Contestant() != playerID || !player.IsActive {
		return domain.Player{}, domain.ErrNotYourTurn
	}
	if room.IsLoadingQuestion || !room.CurrentQuestion.For(room.CurrentQuestionIndex) {
		return domain.Player{}, domain.ErrNoQuestion
	}
	if room.ActiveLifelineRequest != nil {
		return domain.Player{}, domain.ErrLifelineInFlight
	}
	return player, nil
}

// Answer scores the contestant's choice for the current tier.
func Answer(room domain.Room, playerID string, option int) (AnswerResult, domain.Patch, error) {
	if _, err := turnGate(room, playerID); err != nil {
		return AnswerResult{}, nil, err
	}
	q := room.CurrentQuestion
	if option < 0 || option >= len(q.Options) {
		return AnswerResult{}, nil, domain.ErrInvalidOption
	}
	if slices.Contains(VisibleLifelines(room).DisabledOptions, option) {
		return AnswerResult{}, nil, fmt.Errorf("%w: option removed by 50:50", domain.ErrInvalidOption)
	}

	tier := room.CurrentQuestionIndex
	res := AnswerResult{
		Correct:      option == q.CorrectAnswerIndex,
		CorrectIndex: q.CorrectAnswerIndex,
	}
	if q.CorrectAnswerIndex >= 0 && q.CorrectAnswerIndex < len(q.Options) {
		res.CorrectText = q.Options[q.CorrectAnswerIndex]
	}
	scorePath := "players." + playerID + ".score"

	switch {
	case res.Correct && tier < domain.TopTier():
		res.Score = domain.Prize(tier)
		p := domain.Patch{
			scorePath:              res.Score,
			"currentQuestionIndex": tier + 1,
		}
		return res, p.Merge(clearQuestion()), nil
	case res.Correct:
		res.Score = domain.Prize(tier)
		res.TurnOver = true
		p := endTurn(room, playerID, false)
		p[scorePath] = res.Score
		res.Next = nextFrom(p)
		return res, p, nil
	default:
		res.Score = SafetyNetPrize(tier - 1)
		res.TurnOver = true
		p := endTurn(room, playerID, true)
		p[scorePath] = res.Score
		p["players."+playerID+".isActive"] = false
		res.Next = nextFrom(p)
		return res, p, nil
	}
}

// CanWalkAway reports whether the walk-away confirmation may be opened.
func CanWalkAway(room domain.Room, playerID string) error {
	_, err := turnGate(room, playerID)
	return err
}

// WalkAway banks the prize at the current, unanswered tier and ends the turn. The
// player is retired through the contestant history only and stays active.
func WalkAway(room domain.Room, playerID string) (int, domain.Patch, error) {
	if _, err := turnGate(room, playerID); err != nil {
		return 0, nil, err
	}
	prize := domain.Prize(room.CurrentQuestionIndex)
	p := endTurn(room, playerID, false)
	p["players."+playerID+".score"] = prize
	return prize, p, nil
}

// QuestionNeed identifies the question the room is waiting for.
type QuestionNeed struct {
	Contestant string
	Age        int
	Tier       int
	Prize      int
}

// NeedsQuestion reports whether the current turn lacks a question for its tier.
func NeedsQuestion(room domain.Room) (QuestionNeed, bool) {
	if room.Status != domain.StatusInGame {
		return QuestionNeed{}, false
	}
	id := room.Contestant()
	if id == "" || room.CurrentQuestion.For(room.CurrentQuestionIndex) {
		return QuestionNeed{}, false
	}
	return QuestionNeed{
		Contestant: id,
		Age:        room.Players[id].Age,
		Tier:       room.CurrentQuestionIndex,
		Prize:      domain.Prize(room.CurrentQuestionIndex),
	}, true
}

// BeginLoading marks generation as in progress for need.
func BeginLoading(room domain.Room, need QuestionNeed) (domain.Patch, error) {
	if err := stillNeeded(room, need); err != nil {
		return nil, err
	}
	return domain.Patch{"isLoadingQuestion": true}, nil
}

// SetQuestion stores q tagged with the tier it was generated for.
func SetQuestion(room domain.Room, need QuestionNeed, q domain.GameQuestion) (domain.Patch, error) {
	if err := stillNeeded(room, need); err != nil {
		return nil, err
	}
	q.QuestionIndex = domain.Ptr(need.Tier)
	return domain.Patch{
		"currentQuestion":       q,
		"isLoadingQuestion":     false,
		"questionLifelineState": domain.LifelineState{},
	}, nil
}

func stillNeeded(room domain.Room, need QuestionNeed) error {
	cur, ok := NeedsQuestion(room)
	if !ok || cur.Contestant != need.Contestant || cur.Tier != need.Tier {
		return fmt.Errorf("%w: question for tier %d no longer needed", domain.ErrInvalidState, need.Tier)
	}
	return nil
}

func nextFrom(p domain.Patch) *string {
	if id, ok := p["currentTurnPlayerId"].(string); ok {
		return domain.Ptr(id)
	}
	return nil
}
