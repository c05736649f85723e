package game

import (
	"fmt"
	"math"
	"slices"

	"millionaire-service/internal/domain"
)

// VisibleLifelines returns the lifeline results that belong to the current question.
// Results tagged with an earlier question index are hidden.
func VisibleLifelines(room domain.Room) domain.LifelineState {
	ls := room.QuestionLifelineState
	if ls.QuestionIndex == nil || *ls.QuestionIndex != room.CurrentQuestionIndex {
		return domain.LifelineState{}
	}
	return ls
}

func lifelineGate(room domain.Room, playerID string, used func(domain.Player) bool) error {
	player, err := turnGate(room, playerID)
	if err != nil {
		return err
	}
	if used(player) {
		return domain.ErrLifelineUsed
	}
	return nil
}

// FiftyFifty removes two wrong answers, keeping one incorrect option at random.
func FiftyFifty(room domain.Room, playerID string, rng Rand) ([]int, domain.Patch, error) {
	err := lifelineGate(room, playerID, func(p domain.Player) bool { return p.FiftyFiftyUsed })
	if err != nil {
		return nil, nil, err
	}
	disabled := RemoveTwo(room.CurrentQuestion, rng)
	return disabled, domain.Patch{
		"players." + playerID + ".fiftyFiftyUsed": true,
		"questionLifelineState.disabledOptions": disabled,
		"questionLifelineState.usedByPlayerId":  playerID,
		"questionLifelineState.questionIndex":   room.CurrentQuestionIndex,
	}, nil
}

// RemoveTwo picks the wrong options a 50:50 disables: every wrong option except one
// kept at random.
func RemoveTwo(q *domain.GameQuestion, rng Rand) []int {
	var wrong []int
	for i := range q.Options {
		if i != q.CorrectAnswerIndex {
			wrong = append(wrong, i)
		}
	}
	keep := -1
	if len(wrong) > 0 {
		keep = wrong[rng.Intn(len(wrong))]
	}
	disabled := make([]int, 0, len(wrong))
	for _, i := range wrong {
		if i != keep {
			disabled = append(disabled, i)
		}
	}
	return disabled
}

// AudienceVoters are the players who may vote: every active player other than the
// initiator and the contestant.
func AudienceVoters(room domain.Room, initiatorID string) []string {
	var out []string
	for _, id := range room.PlayerOrder {
		if id == initiatorID || id == room.Contestant() || !room.Players[id].IsActive {
			continue
		}
		out = append(out, id)
	}
	return out
}

// CallableFriends are the players the contestant may phone.
func CallableFriends(room domain.Room, playerID string) []string {
	var out []string
	for _, id := range room.PlayerOrder {
		if id != playerID && room.Players[id].IsActive {
			out = append(out, id)
		}
	}
	return out
}

// AskAudience opens an audience poll for the current question.
func AskAudience(room domain.Room, playerID string) (domain.Patch, error) {
	err := lifelineGate(room, playerID, func(p domain.Player) bool { return p.AskAudienceUsed })
	if err != nil {
		return nil, err
	}
	if len(AudienceVoters(room, playerID)) == 0 {
		return nil, domain.ErrNoRespondents
	}
	return domain.Patch{
		"players." + playerID + ".askAudienceUsed": true,
		"activeLifelineRequest": domain.LifelineRequest{
			Type:          domain.LifelineAudience,
			InitiatorID:   playerID,
			QuestionIndex: room.CurrentQuestionIndex,
			Responses:     map[string]int{},
		},
	}, nil
}

// CanPhoneFriend checks the gate for opening the friend picker and returns who can be called.
func CanPhoneFriend(room domain.Room, playerID string) ([]string, error) {
	err := lifelineGate(room, playerID, func(p domain.Player) bool { return p.PhoneFriendUsed })
	if err != nil {
		return nil, err
	}
	friends := CallableFriends(room, playerID)
	if len(friends) == 0 {
		return nil, domain.ErrNoRespondents
	}
	return friends, nil
}

// PhoneFriend sends the question to one chosen player.
func PhoneFriend(room domain.Room, playerID, targetID string) (domain.Patch, error) {
	friends, err := CanPhoneFriend(room, playerID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(friends, targetID) {
		return nil, domain.ErrNotRespondent
	}
	return domain.Patch{
		"players." + playerID + ".phoneFriendUsed": true,
		"activeLifelineRequest": domain.LifelineRequest{
			Type:           domain.LifelineFriend,
			InitiatorID:    playerID,
			TargetPlayerID: targetID,
			QuestionIndex:  room.CurrentQuestionIndex,
			Responses:      map[string]int{},
		},
	}, nil
}

// Respond records a vote or a friend's suggestion on the active request.
func Respond(room domain.Room, playerID string, option int) (domain.Patch, error) {
	req := room.ActiveLifelineRequest
	if room.Status != domain.StatusInGame || req == nil {
		return nil, domain.ErrNoLifelineRequest
	}
	if RequestStale(room) {
		return nil, domain.ErrStaleRequest
	}
	switch req.Type {
	case domain.LifelineAudience:
		if !slices.Contains(AudienceVoters(room, req.InitiatorID), playerID) {
			return nil, domain.ErrNotRespondent
		}
	case domain.LifelineFriend:
		if playerID != req.TargetPlayerID {
			return nil, domain.ErrNotRespondent
		}
	default:
		return nil, domain.ErrNoLifelineRequest
	}
	if _, ok := req.Responses[playerID]; ok {
		return nil, domain.ErrAlreadyResponded
	}
	if room.CurrentQuestion == nil || option < 0 || option >= len(room.CurrentQuestion.Options) {
		return nil, domain.ErrInvalidOption
	}
	return domain.Patch{"activeLifelineRequest.responses." + playerID: option}, nil
}

// RequestStale reports whether the active request no longer matches the turn it was
// raised on.
func RequestStale(room domain.Room) bool {
	req := room.ActiveLifelineRequest
	if req == nil {
		return false
	}
	return room.Status != domain.StatusInGame ||
		req.QuestionIndex != room.CurrentQuestionIndex ||
		req.InitiatorID != room.Contestant() ||
		!room.CurrentQuestion.For(req.QuestionIndex)
}

// ClearStaleRequest drops a request left over from an earlier question.
func ClearStaleRequest(room domain.Room) (domain.Patch, error) {
	if !RequestStale(room) {
		return nil, fmt.Errorf("%w: lifeline request is current", domain.ErrInvalidState)
	}
	return domain.Patch{"activeLifelineRequest": nil}, nil
}

// RequestComplete reports whether every expected respondent has answered.
func RequestComplete(room domain.Room) bool {
	req := room.ActiveLifelineRequest
	if req == nil || RequestStale(room) {
		return false
	}
	switch req.Type {
	case domain.LifelineAudience:
		voters := AudienceVoters(room, req.InitiatorID)
		got := 0
		for _, id := range voters {
			if _, ok := req.Responses[id]; ok {
				got++
			}
		}
		return got >= len(voters)
	case domain.LifelineFriend:
		_, ok := req.Responses[req.TargetPlayerID]
		return ok
	}
	return false
}

// AudiencePercentages converts votes into whole percentages per option that sum to 100.
// Each share is rounded half up and any drift is added to the first option.
func AudiencePercentages(votes []int, options int) []int {
	pct := make([]int, options)
	if options == 0 {
		return pct
	}
	counts := make([]int, options)
	total := 0
	for _, v := range votes {
		if v >= 0 && v < options {
			counts[v]++
			total++
		}
	}
	if total == 0 {
		return pct
	}
	sum := 0
	for i, c := range counts {
		pct[i] = int(math.Floor(float64(c)*100/float64(total) + 0.5))
		sum += pct[i]
	}
	pct[0] += 100 - sum
	return pct
}

// Aggregate resolves a completed request into the displayed lifeline state and clears it.
func Aggregate(room domain.Room) (domain.Patch, error) {
	req := room.ActiveLifelineRequest
	if req == nil {
		return nil, domain.ErrNoLifelineRequest
	}
	if !RequestComplete(room) {
		return nil, fmt.Errorf("%w: lifeline still collecting responses", domain.ErrInvalidState)
	}
	q := room.CurrentQuestion
	p := domain.Patch{
		"activeLifelineRequest":                nil,
		"questionLifelineState.usedByPlayerId": req.InitiatorID,
		"questionLifelineState.questionIndex":  req.QuestionIndex,
	}
	switch req.Type {
	case domain.LifelineAudience:
		var votes []int
		for _, id := range AudienceVoters(room, req.InitiatorID) {
			if v, ok := req.Responses[id]; ok {
				votes = append(votes, v)
			}
		}
		pct := AudiencePercentages(votes, len(q.Options))
		shares := make([]domain.AudienceShare, len(q.Options))
		for i, opt := range q.Options {
			shares[i] = domain.AudienceShare{Option: opt, Percent: pct[i]}
		}
		p["questionLifelineState.audienceVote"] = shares
	case domain.LifelineFriend:
		p["questionLifelineState.friendAnswer"] = q.Options[req.Responses[req.TargetPlayerID]]
	}
	return p, nil
}
