package game

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"millionaire-service/internal/domain"
)

// HeatOutcome is how a completed fastest finger heat ended.
type HeatOutcome string

const (
	HeatNoWinner HeatOutcome = "no-winner"
	HeatWinner   HeatOutcome = "winner"
	HeatTie      HeatOutcome = "tie"
)

// HeatResult is the evaluated outcome of one heat, computed before the reveal delay
// and enacted after it.
type HeatResult struct {
	Outcome       HeatOutcome `json:"outcome"`
	QuestionIndex int         `json:"questionIndex"`
	WinnerID      string      `json:"winnerId,omitempty"`
	Tied          []string    `json:"tied,omitempty"`
	Message       string      `json:"message"`
}

// EligibleFFF lists the players who must submit in the current heat: active players in
// turn order, narrowed to the tie participants when a tie-break is running.
func EligibleFFF(room domain.Room) []string {
	out := make([]string, 0, len(room.PlayerOrder))
	for _, id := range room.PlayerOrder {
		if !room.Players[id].IsActive {
			continue
		}
		if len(room.FFFTieParticipants) > 0 && !slices.Contains(room.FFFTieParticipants, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SubmitFFF records a player's ordering. A second submission overwrites the first.
func SubmitFFF(room domain.Room, playerID string, order []int, elapsedMs int64) (domain.Patch, error) {
	if room.Status != domain.StatusFastestFinger {
		return nil, domain.ErrNotFastestFinger
	}
	if _, ok := room.Players[playerID]; !ok {
		return nil, domain.ErrPlayerNotFound
	}
	if !slices.Contains(EligibleFFF(room), playerID) {
		return nil, domain.ErrNotEligible
	}
	if !isPermutation(order) {
		return nil, domain.ErrInvalidOrder
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	return domain.Patch{
		"fffAnswers." + playerID: domain.FFFAnswer{Order: slices.Clone(order), Time: elapsedMs},
	}, nil
}

// HeatComplete reports whether every eligible player has submitted.
func HeatComplete(room domain.Room) bool {
	if room.Status != domain.StatusFastestFinger {
		return false
	}
	eligible := EligibleFFF(room)
	if len(eligible) == 0 {
		return false
	}
	for _, id := range eligible {
		if _, ok := room.FFFAnswers[id]; !ok {
			return false
		}
	}
	return true
}

// ResolveHeat evaluates a completed heat against the catalog question it was played with.
func ResolveHeat(room domain.Room, catalog []domain.FFFQuestion) (HeatResult, error) {
	if room.Status != domain.StatusFastestFinger {
		return HeatResult{}, domain.ErrNotFastestFinger
	}
	if !HeatComplete(room) {
		return HeatResult{}, fmt.Errorf("%w: heat still collecting answers", domain.ErrInvalidState)
	}
	question, ok := domain.HeatQuestion(catalog, room.FFFQuestionIndex)
	if !ok {
		return HeatResult{}, fmt.Errorf("%w: empty fastest finger catalog", domain.ErrInvalidState)
	}

	type correct struct {
		id   string
		time int64
		pos  int
	}
	var hits []correct
	for pos, id := range EligibleFFF(room) {
		ans := room.FFFAnswers[id]
		if slices.Equal(ans.Order, question.CorrectOrderIndices) {
			hits = append(hits, correct{id: id, time: ans.Time, pos: pos})
		}
	}
	res := HeatResult{QuestionIndex: room.FFFQuestionIndex}
	if len(hits) == 0 {
		res.Outcome = HeatNoWinner
		res.Message = "No one got the order right. Here comes another question."
		return res, nil
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].time != hits[j].time {
			return hits[i].time < hits[j].time
		}
		return hits[i].pos < hits[j].pos
	})
	if len(hits) == 1 || hits[0].time < hits[1].time {
		res.Outcome = HeatWinner
		res.WinnerID = hits[0].id
		res.Message = fmt.Sprintf("%s is fastest with %.2fs and takes the hot seat!",
			room.Players[hits[0].id].Name, float64(hits[0].time)/1000)
		return res, nil
	}
	var names []string
	for _, h := range hits {
		if h.time != hits[0].time {
			break
		}
		res.Tied = append(res.Tied, h.id)
		names = append(names, room.Players[h.id].Name)
	}
	res.Outcome = HeatTie
	res.Message = fmt.Sprintf("It's a tie between %s! Tie-breaker round.", strings.Join(names, " and "))
	return res, nil
}

// EnactHeat turns a resolved heat into the room write. It fails with ErrInvalidState
// when the room has moved on since the heat was resolved.
func EnactHeat(room domain.Room, res HeatResult, rng Rand) (domain.Patch, error) {
	if room.Status != domain.StatusFastestFinger {
		return nil, domain.ErrNotFastestFinger
	}
	if room.FFFQuestionIndex != res.QuestionIndex {
		return nil, fmt.Errorf("%w: heat %d already resolved", domain.ErrInvalidState, res.QuestionIndex)
	}
	next := room.FFFQuestionIndex + 1
	switch res.Outcome {
	case HeatNoWinner:
		return domain.Patch{
			"fffQuestionIndex": next,
			"fffAnswers":       map[string]domain.FFFAnswer{},
		}, nil
	case HeatTie:
		return domain.Patch{
			"fffQuestionIndex":   next,
			"fffAnswers":         map[string]domain.FFFAnswer{},
			"fffTieParticipants": res.Tied,
		}, nil
	case HeatWinner:
		if _, ok := room.Players[res.WinnerID]; !ok {
			return nil, domain.ErrPlayerNotFound
		}
		p := domain.Patch{
			"status":             domain.StatusInGame,
			"playerOrder":        shuffled(room.PlayerOrder, rng),
			"fffWinnerId":        res.WinnerID,
			"fffAnswers":         map[string]domain.FFFAnswer{},
			"fffTieParticipants": []string{},
		}
		p = p.Merge(resetMainGame())
		p["currentTurnPlayerId"] = res.WinnerID
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown heat outcome %q", domain.ErrInvalidState, res.Outcome)
	}
}

func isPermutation(order []int) bool {
	if len(order) != domain.OptionCount {
		return false
	}
	seen := make([]bool, domain.OptionCount)
	for _, v := range order {
		if v < 0 || v >= domain.OptionCount || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}
