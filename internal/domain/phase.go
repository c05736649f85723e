package domain

import (
	"fmt"
	"slices"
)

// Phase is the typed view of a room for its current status. Exactly one of
// LobbyRoom, FastestFingerRoom, InGameRoom or FinalScoresRoom.
type Phase interface {
	Status() Status
	Shared() Common
}

// Common holds the fields every phase carries.
type Common struct {
	GameCode          string
	HostID            string
	Players           map[string]Player
	PlayerOrder       []string
	EliminatedPlayers []string
	ContestantHistory []string
}

func (c Common) Shared() Common { return c }

type LobbyRoom struct {
	Common
}

func (LobbyRoom) Status() Status { return StatusLobby }

type FastestFingerRoom struct {
	Common
	QuestionIndex   int
	Answers         map[string]FFFAnswer
	TieParticipants []string
}

func (FastestFingerRoom) Status() Status { return StatusFastestFinger }

type InGameRoom struct {
	Common
	Contestant      *string
	QuestionIndex   int
	Question        *GameQuestion
	LoadingQuestion bool
	Lifelines       LifelineState
	ActiveRequest   *LifelineRequest
}

func (InGameRoom) Status() Status { return StatusInGame }

type FinalScoresRoom struct {
	Common
}

func (FinalScoresRoom) Status() Status { return StatusFinalScores }

// Phase validates the room and returns its phase view.
func (r Room) Phase() (Phase, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	common := Common{
		GameCode:          r.GameCode,
		HostID:            r.HostID,
		Players:           r.Players,
		PlayerOrder:       r.PlayerOrder,
		EliminatedPlayers: r.EliminatedPlayers,
		ContestantHistory: r.ContestantHistory,
	}
	switch r.Status {
	case StatusLobby:
		return LobbyRoom{Common: common}, nil
	case StatusFastestFinger:
		return FastestFingerRoom{
			Common:          common,
			QuestionIndex:   r.FFFQuestionIndex,
			Answers:         r.FFFAnswers,
			TieParticipants: r.FFFTieParticipants,
		}, nil
	case StatusInGame:
		return InGameRoom{
			Common:          common,
			Contestant:      r.CurrentTurnPlayerID,
			QuestionIndex:   r.CurrentQuestionIndex,
			Question:        r.CurrentQuestion,
			LoadingQuestion: r.IsLoadingQuestion,
			Lifelines:       r.QuestionLifelineState,
			ActiveRequest:   r.ActiveLifelineRequest,
		}, nil
	default:
		return FinalScoresRoom{Common: common}, nil
	}
}

// Transition checks that next is a consistent document and a legal successor of r,
// and returns its phase.
func (r Room) Transition(next Room) (Phase, error) {
	phase, err := next.Phase()
	if err != nil {
		return nil, err
	}
	if next.Status != r.Status && !r.Status.CanTransitionTo(next.Status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, r.Status, next.Status)
	}
	return phase, nil
}

// Validate rejects documents whose fields contradict their status.
func (r Room) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrIllegalRoom, r.Status)
	}
	if len(r.Players) > MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrIllegalRoom, len(r.Players))
	}
	if _, ok := r.Players[r.HostID]; !ok {
		return fmt.Errorf("%w: host %q is not a player", ErrIllegalRoom, r.HostID)
	}
	if r.CurrentQuestionIndex < 0 || r.CurrentQuestionIndex > TopTier() {
		return fmt.Errorf("%w: question index %d", ErrIllegalRoom, r.CurrentQuestionIndex)
	}
	for _, id := range r.PlayerOrder {
		if _, ok := r.Players[id]; !ok {
			return fmt.Errorf("%w: unknown player %q in turn order", ErrIllegalRoom, id)
		}
	}

	switch r.Status {
	case StatusLobby, StatusFastestFinger, StatusFinalScores:
		if r.CurrentTurnPlayerID != nil {
			return fmt.Errorf("%w: turn holder set while %s", ErrIllegalRoom, r.Status)
		}
		if r.CurrentQuestion != nil {
			return fmt.Errorf("%w: question set while %s", ErrIllegalRoom, r.Status)
		}
		if r.ActiveLifelineRequest != nil {
			return fmt.Errorf("%w: lifeline request while %s", ErrIllegalRoom, r.Status)
		}
	case StatusInGame:
		if id := r.Contestant(); id != "" {
			if !slices.Contains(r.PlayerOrder, id) || r.IsEliminated(id) || r.HasPlayed(id) {
				return fmt.Errorf("%w: %q cannot hold the turn", ErrIllegalRoom, id)
			}
		}
		if req := r.ActiveLifelineRequest; req != nil && req.InitiatorID != r.Contestant() {
			return fmt.Errorf("%w: lifeline request from %q outside their turn", ErrIllegalRoom, req.InitiatorID)
		}
	}
	return nil
}
