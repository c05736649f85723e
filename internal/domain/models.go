package domain

import (
	"maps"
	"slices"
	"sort"
	"time"
)

// Status is the room phase discriminator.
type Status string

const (
	StatusLobby         Status = "lobby"
	StatusFastestFinger Status = "fastest-finger"
	StatusInGame        Status = "in-game"
	StatusFinalScores   Status = "final-scores"
)

var statusTransitions = map[Status][]Status{
	StatusLobby:         {StatusFastestFinger},
	StatusFastestFinger: {StatusInGame},
	StatusInGame:        {StatusFinalScores, StatusFastestFinger},
	StatusFinalScores:   {StatusFastestFinger},
}

// Valid reports whether s is one of the four known phases.
func (s Status) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether a room in status s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(statusTransitions[s], next)
}

// LifelineType names the multi-party lifelines.
type LifelineType string

const (
	LifelineAudience LifelineType = "audience"
	LifelineFriend   LifelineType = "friend"
)

// Player is an entry in Room.Players keyed by player id.
type Player struct {
	Name            string    `json:"name"`
	Age             int       `json:"age"`
	Score           int       `json:"score"`
	FiftyFiftyUsed  bool      `json:"fiftyFiftyUsed"`
	AskAudienceUsed bool      `json:"askAudienceUsed"`
	PhoneFriendUsed bool      `json:"phoneFriendUsed"`
	IsActive        bool      `json:"isActive"`
	JoinedAt        time.Time `json:"joinedAt"`
}

// GameQuestion is a main-game question. QuestionIndex tags the prize tier it was generated for.
type GameQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	QuestionIndex      *int     `json:"questionIndex"`
}

// For reports whether the question was provisioned for tier.
func (q *GameQuestion) For(tier int) bool {
	return q != nil && q.QuestionIndex != nil && *q.QuestionIndex == tier
}

// AudienceShare is one option's slice of an Ask the Audience poll.
type AudienceShare struct {
	Option  string `json:"option"`
	Percent int    `json:"percent"`
}

// LifelineState is the last resolved lifeline output shown to every player.
type LifelineState struct {
	DisabledOptions []int           `json:"disabledOptions"`
	AudienceVote    []AudienceShare `json:"audienceVote"`
	FriendAnswer    *string         `json:"friendAnswer"`
	UsedByPlayerID  *string         `json:"usedByPlayerId"`
	QuestionIndex   *int            `json:"questionIndex"`
}

// LifelineRequest is an in-flight audience poll or friend call.
type LifelineRequest struct {
	Type           LifelineType   `json:"type"`
	InitiatorID    string         `json:"initiatorId"`
	TargetPlayerID string         `json:"targetPlayerId,omitempty"`
	QuestionIndex  int            `json:"questionIndex"`
	Responses      map[string]int `json:"responses"`
}

// FFFAnswer is one fastest finger submission: an item ordering plus the client-observed elapsed time.
type FFFAnswer struct {
	Order []int `json:"order"`
	Time  int64 `json:"time"`
}

// FFFQuestion is a fastest finger ordering puzzle.
type FFFQuestion struct {
	Question            string   `json:"question"`
	Items               []string `json:"items"`
	CorrectOrderIndices []int    `json:"correctOrderIndices"`
}

// Room is the shared game document.
type Room struct {
	GameCode              string               `json:"gameCode"`
	Status                Status               `json:"status"`
	HostID                string               `json:"hostId"`
	Players               map[string]Player    `json:"players"`
	PlayerOrder           []string             `json:"playerOrder"`
	EliminatedPlayers     []string             `json:"eliminatedPlayers"`
	ContestantHistory     []string             `json:"contestantHistory"`
	CurrentQuestionIndex  int                  `json:"currentQuestionIndex"`
	CurrentTurnPlayerID   *string              `json:"currentTurnPlayerId"`
	CurrentQuestion       *GameQuestion        `json:"currentQuestion"`
	IsLoadingQuestion     bool                 `json:"isLoadingQuestion"`
	QuestionLifelineState LifelineState        `json:"questionLifelineState"`
	ActiveLifelineRequest *LifelineRequest     `json:"activeLifelineRequest"`
	FFFQuestionIndex      int                  `json:"fffQuestionIndex"`
	FFFAnswers            map[string]FFFAnswer `json:"fffAnswers"`
	FFFWinnerID           *string              `json:"fffWinnerId"`
	FFFTieParticipants    []string             `json:"fffTieParticipants"`
	CreatedAt             time.Time            `json:"createdAt"`
}

// RoomID returns the document key for a room code.
func RoomID(code string) string {
	return "room-" + code
}

// IsHost reports whether playerID created the room.
func (r Room) IsHost(playerID string) bool {
	return playerID != "" && r.HostID == playerID
}

// Contestant returns the current turn holder, or "" when nobody is playing.
func (r Room) Contestant() string {
	if r.CurrentTurnPlayerID == nil {
		return ""
	}
	return *r.CurrentTurnPlayerID
}

func (r Room) IsEliminated(playerID string) bool {
	return slices.Contains(r.EliminatedPlayers, playerID)
}

func (r Room) HasPlayed(playerID string) bool {
	return slices.Contains(r.ContestantHistory, playerID)
}

// ActivePlayerIDs lists active players in join order.
func (r Room) ActivePlayerIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for id, p := range r.Players {
		if p.IsActive {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := r.Players[ids[i]], r.Players[ids[j]]
		if !pi.JoinedAt.Equal(pj.JoinedAt) {
			return pi.JoinedAt.Before(pj.JoinedAt)
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a deep copy so callers can mutate freely.
func (r Room) Clone() Room {
	out := r
	out.Players = maps.Clone(r.Players)
	out.PlayerOrder = slices.Clone(r.PlayerOrder)
	out.EliminatedPlayers = slices.Clone(r.EliminatedPlayers)
	out.ContestantHistory = slices.Clone(r.ContestantHistory)
	out.CurrentTurnPlayerID = cloneString(r.CurrentTurnPlayerID)
	out.FFFWinnerID = cloneString(r.FFFWinnerID)
	out.FFFTieParticipants = slices.Clone(r.FFFTieParticipants)
	if r.FFFAnswers != nil {
		out.FFFAnswers = make(map[string]FFFAnswer, len(r.FFFAnswers))
		for id, a := range r.FFFAnswers {
			out.FFFAnswers[id] = FFFAnswer{Order: slices.Clone(a.Order), Time: a.Time}
		}
	}
	if r.CurrentQuestion != nil {
		q := *r.CurrentQuestion
		q.Options = slices.Clone(q.Options)
		q.QuestionIndex = cloneInt(q.QuestionIndex)
		out.CurrentQuestion = &q
	}
	ls := r.QuestionLifelineState
	ls.DisabledOptions = slices.Clone(ls.DisabledOptions)
	ls.AudienceVote = slices.Clone(ls.AudienceVote)
	ls.FriendAnswer = cloneString(ls.FriendAnswer)
	ls.UsedByPlayerID = cloneString(ls.UsedByPlayerID)
	ls.QuestionIndex = cloneInt(ls.QuestionIndex)
	out.QuestionLifelineState = ls
	if r.ActiveLifelineRequest != nil {
		req := *r.ActiveLifelineRequest
		req.Responses = maps.Clone(req.Responses)
		out.ActiveLifelineRequest = &req
	}
	return out
}

// Ptr returns a pointer to v; handy for the nullable document fields.
func Ptr[T any](v T) *T {
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	return Ptr(*s)
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	return Ptr(*i)
}

// Outcome is how a player's game ended.
type Outcome string

const (
	OutcomeWaiting    Outcome = "waiting"
	OutcomeEliminated Outcome = "eliminated"
	OutcomeWalkedAway Outcome = "walked-away"
	OutcomeCompleted  Outcome = "completed"
)

// Ranking is one row of the final scoreboard.
type Ranking struct {
	Rank     int     `json:"rank"`
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	Outcome  Outcome `json:"outcome"`
}

// RoomEvent is one push from a room subscription: a fresh snapshot, or Err set to
// ErrRoomNotFound or ErrConnectionLost.
type RoomEvent struct {
	Room *Room
	Err  error
}
