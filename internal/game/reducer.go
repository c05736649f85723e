package game

import (
	"errors"
	"fmt"

	"millionaire-service/internal/domain"
)

// EffectKind names a side effect requested by Reduce.
type EffectKind string

const (
	// EffectAnnounce shows a transient message.
	EffectAnnounce EffectKind = "announce"
	// EffectLeave drops the client back to the menu.
	EffectLeave EffectKind = "leave"

	// Host only.
	EffectEnactHeat         EffectKind = "enact-heat"
	EffectProvisionQuestion EffectKind = "provision-question"
	EffectAggregateLifeline EffectKind = "aggregate-lifeline"
	EffectClearStaleRequest EffectKind = "clear-stale-request"
	EffectCompleteGame      EffectKind = "complete-game"
	EffectArchiveResults    EffectKind = "archive-results"
)

// Effect is work for the caller to perform outside the reducer.
type Effect struct {
	Kind    EffectKind
	Message string
	Heat    *HeatResult
	Need    *QuestionNeed
	Err     error
}

// LocalState is what one client keeps between room snapshots.
type LocalState struct {
	PlayerID string
	Catalog  []domain.FFFQuestion

	Room *domain.Room
	Left bool

	WalkAwayPending  bool
	FriendPickerOpen bool

	// Dedup markers for host effects already requested.
	HeatSeen     int
	Provisioning string
	Aggregating  string
	Clearing     string
	Completing   bool
	Archived     bool
}

// NewLocalState returns the state of a client that has not seen the room yet.
func NewLocalState(playerID string, catalog []domain.FFFQuestion) LocalState {
	return LocalState{PlayerID: playerID, Catalog: catalog, HeatSeen: -1}
}

// IsHost reports whether this client holds the host role in the last snapshot.
func (s LocalState) IsHost() bool {
	return s.Room != nil && s.Room.IsHost(s.PlayerID)
}

// Reduce folds one room event into the local state and lists the effects to run.
// It never performs I/O.
func Reduce(local LocalState, ev domain.RoomEvent) (LocalState, []Effect) {
	if ev.Err != nil || ev.Room == nil {
		err := ev.Err
		if err == nil {
			err = domain.ErrRoomNotFound
		}
		next := NewLocalState(local.PlayerID, local.Catalog)
		next.Left = true
		return next, []Effect{{Kind: EffectLeave, Message: leaveMessage(err), Err: err}}
	}

	room := ev.Room.Clone()
	next := local
	next.Left = false
	prev := local.Room
	next.Room = &room

	if prev == nil || prev.Status != room.Status {
		next.HeatSeen = -1
		next.Provisioning = ""
		next.Aggregating = ""
		next.Clearing = ""
		next.Completing = false
		next.Archived = false
	}
	if prev == nil || prev.Status != room.Status || prev.Contestant() != room.Contestant() ||
		prev.CurrentQuestionIndex != room.CurrentQuestionIndex {
		next.WalkAwayPending = false
		next.FriendPickerOpen = false
	}
	if room.ActiveLifelineRequest != nil || room.Contestant() != local.PlayerID {
		next.FriendPickerOpen = false
	}

	var effects []Effect
	switch room.Status {
	case domain.StatusFastestFinger:
		effects = next.reduceHeat(room, effects)
	case domain.StatusInGame:
		if next.IsHost() {
			effects = next.reduceHostInGame(room, effects)
		}
	case domain.StatusFinalScores:
		if next.IsHost() && !next.Archived {
			next.Archived = true
			effects = append(effects, Effect{Kind: EffectArchiveResults})
		}
	}
	return next, effects
}

func (s *LocalState) reduceHeat(room domain.Room, effects []Effect) []Effect {
	if !HeatComplete(room) || s.HeatSeen == room.FFFQuestionIndex {
		return effects
	}
	res, err := ResolveHeat(room, s.Catalog)
	if err != nil {
		return effects
	}
	s.HeatSeen = room.FFFQuestionIndex
	effects = append(effects, Effect{Kind: EffectAnnounce, Message: res.Message})
	if s.IsHost() {
		effects = append(effects, Effect{Kind: EffectEnactHeat, Heat: &res})
	}
	return effects
}

func (s *LocalState) reduceHostInGame(room domain.Room, effects []Effect) []Effect {
	if GameComplete(room) {
		if !s.Completing {
			s.Completing = true
			effects = append(effects, Effect{Kind: EffectCompleteGame})
		}
		return effects
	}
	if RequestStale(room) {
		key := requestKey(room.ActiveLifelineRequest)
		if s.Clearing != key {
			s.Clearing = key
			effects = append(effects, Effect{Kind: EffectClearStaleRequest})
		}
	} else if RequestComplete(room) {
		key := requestKey(room.ActiveLifelineRequest)
		if s.Aggregating != key {
			s.Aggregating = key
			effects = append(effects, Effect{Kind: EffectAggregateLifeline})
		}
	}
	if need, ok := NeedsQuestion(room); ok {
		key := fmt.Sprintf("%s/%d", need.Contestant, need.Tier)
		if s.Provisioning != key {
			s.Provisioning = key
			effects = append(effects, Effect{Kind: EffectProvisionQuestion, Need: &need})
		}
	}
	return effects
}

// InitiateWalkAway opens the local walk-away confirmation.
func (s LocalState) InitiateWalkAway() (LocalState, error) {
	if s.Room == nil {
		return s, domain.ErrRoomNotFound
	}
	if s.WalkAwayPending {
		return s, domain.ErrWalkAwayPending
	}
	if err := CanWalkAway(*s.Room, s.PlayerID); err != nil {
		return s, err
	}
	s.WalkAwayPending = true
	s.FriendPickerOpen = false
	return s, nil
}

// CancelWalkAway closes the confirmation without acting.
func (s LocalState) CancelWalkAway() LocalState {
	s.WalkAwayPending = false
	return s
}

// OpenFriendPicker starts the local target selection for Phone a Friend.
func (s LocalState) OpenFriendPicker() (LocalState, []string, error) {
	if s.Room == nil {
		return s, nil, domain.ErrRoomNotFound
	}
	if s.WalkAwayPending {
		return s, nil, domain.ErrWalkAwayPending
	}
	friends, err := CanPhoneFriend(*s.Room, s.PlayerID)
	if err != nil {
		return s, nil, err
	}
	s.FriendPickerOpen = true
	return s, friends, nil
}

// CloseFriendPicker abandons the friend selection.
func (s LocalState) CloseFriendPicker() LocalState {
	s.FriendPickerOpen = false
	return s
}

func requestKey(req *domain.LifelineRequest) string {
	if req == nil {
		return ""
	}
	return fmt.Sprintf("%s/%s/%d", req.Type, req.InitiatorID, req.QuestionIndex)
}

func leaveMessage(err error) string {
	if errors.Is(err, domain.ErrConnectionLost) {
		return "Lost connection to the room."
	}
	return "The room no longer exists."
}
