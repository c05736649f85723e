package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoom() Room {
	joined := time.Date(2024, 11, 22, 18, 0, 0, 0, time.UTC)
	return Room{
		GameCode: "QX7K2P",
		Status:   StatusInGame,
		HostID:   "p1",
		Players: map[string]Player{
			"p1": {Name: "Ada", Age: 36, Score: 500, IsActive: true, JoinedAt: joined},
			"p2": {Name: "Grace", Age: 45, IsActive: true, JoinedAt: joined.Add(time.Second)},
			"p3": {Name: "Linus", Age: 12, IsActive: false, JoinedAt: joined.Add(2 * time.Second)},
		},
		PlayerOrder:         []string{"p2", "p1", "p3"},
		EliminatedPlayers:   []string{"p3"},
		ContestantHistory:   []string{"p3"},
		CurrentTurnPlayerID: Ptr("p1"),
		CurrentQuestion: &GameQuestion{
			Question:           "2 + 2?",
			Options:            []string{"3", "4", "5", "22"},
			CorrectAnswerIndex: 1,
			QuestionIndex:      Ptr(0),
		},
		FFFAnswers:         map[string]FFFAnswer{},
		FFFTieParticipants: []string{},
		CreatedAt:          joined,
	}
}

func TestRoomRoundTrip(t *testing.T) {
	room := sampleRoom()
	raw, err := json.Marshal(room)
	require.NoError(t, err)

	var back Room
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, room.Players, back.Players)
	assert.Equal(t, room.PlayerOrder, back.PlayerOrder)
	assert.ElementsMatch(t, room.ContestantHistory, back.ContestantHistory)
	assert.Equal(t, room, back)
}

func TestPatchApply(t *testing.T) {
	room := sampleRoom()
	next, err := Patch{
		"players.p1.score":                      1000,
		"players.p1.fiftyFiftyUsed":             true,
		"currentQuestionIndex":                  1,
		"questionLifelineState.disabledOptions": []int{0, 2},
		"currentQuestion":                       nil,
	}.Apply(room)
	require.NoError(t, err)

	assert.Equal(t, 1000, next.Players["p1"].Score)
	assert.True(t, next.Players["p1"].FiftyFiftyUsed)
	assert.Equal(t, "Ada", next.Players["p1"].Name, "sibling fields survive a nested write")
	assert.Equal(t, 1, next.CurrentQuestionIndex)
	assert.Nil(t, next.CurrentQuestion)
	assert.Equal(t, []int{0, 2}, next.QuestionLifelineState.DisabledOptions)

	assert.Equal(t, 500, room.Players["p1"].Score, "input room is untouched")
	assert.NotNil(t, room.CurrentQuestion)
}

func TestPatchApplyErrors(t *testing.T) {
	room := sampleRoom()

	_, err := Patch{"nope": 1}.Apply(room)
	require.ErrorIs(t, err, ErrInvalidPatch)

	_, err = Patch{"players..score": 1}.Apply(room)
	require.ErrorIs(t, err, ErrInvalidPatch)

	_, err = Patch{"activeLifelineRequest.responses.p2": 1}.Apply(room)
	require.ErrorIs(t, err, ErrMissingParent)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = Patch{"currentQuestionIndex": "three"}.Apply(room)
	require.ErrorIs(t, err, ErrInvalidPatch)
}

func TestPatchParentsBeforeChildren(t *testing.T) {
	room := sampleRoom()
	next, err := Patch{
		"activeLifelineRequest.responses.p2": 3,
		"activeLifelineRequest": LifelineRequest{
			Type:          LifelineAudience,
			InitiatorID:   "p1",
			QuestionIndex: 0,
			Responses:     map[string]int{},
		},
	}.Apply(room)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p2": 3}, next.ActiveLifelineRequest.Responses)
}

func TestValidateRejectsIllegalRooms(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *Room)
	}{
		{"unknown status", func(r *Room) { r.Status = "paused" }},
		{"question in lobby", func(r *Room) { r.Status = StatusLobby; r.CurrentTurnPlayerID = nil }},
		{"turn holder already played", func(r *Room) { r.ContestantHistory = append(r.ContestantHistory, "p1") }},
		{"eliminated turn holder", func(r *Room) { r.CurrentTurnPlayerID = Ptr("p3") }},
		{"turn holder during final scores", func(r *Room) { r.Status = StatusFinalScores }},
		{"missing host", func(r *Room) { r.HostID = "ghost" }},
		{"request from bystander", func(r *Room) {
			r.ActiveLifelineRequest = &LifelineRequest{Type: LifelineAudience, InitiatorID: "p2", Responses: map[string]int{}}
		}},
	}
	require.NoError(t, sampleRoom().Validate())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := sampleRoom()
			tc.mutate(&room)
			require.ErrorIs(t, room.Validate(), ErrIllegalRoom)
			_, err := room.Phase()
			require.Error(t, err)
		})
	}
}

func TestPhaseViews(t *testing.T) {
	room := sampleRoom()
	phase, err := room.Phase()
	require.NoError(t, err)
	game, ok := phase.(InGameRoom)
	require.True(t, ok)
	assert.Equal(t, "p1", *game.Contestant)
	assert.Equal(t, "QX7K2P", game.Shared().GameCode)

	room.Status = StatusFinalScores
	room.CurrentTurnPlayerID = nil
	room.CurrentQuestion = nil
	phase, err = room.Phase()
	require.NoError(t, err)
	assert.IsType(t, FinalScoresRoom{}, phase)
	assert.Equal(t, StatusFinalScores, phase.Status())
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusLobby.CanTransitionTo(StatusFastestFinger))
	assert.False(t, StatusLobby.CanTransitionTo(StatusInGame))
	assert.True(t, StatusInGame.CanTransitionTo(StatusFinalScores))
	assert.True(t, StatusFinalScores.CanTransitionTo(StatusFastestFinger))
	assert.False(t, StatusFinalScores.CanTransitionTo(StatusLobby))
}

func TestTransitionChecksStatusTable(t *testing.T) {
	inGame := sampleRoom()
	final := inGame.Clone()
	final.Status = StatusFinalScores
	final.CurrentTurnPlayerID = nil
	final.CurrentQuestion = nil

	phase, err := inGame.Transition(final)
	require.NoError(t, err)
	assert.IsType(t, FinalScoresRoom{}, phase)

	_, err = final.Transition(inGame)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	phase, err = inGame.Transition(inGame)
	require.NoError(t, err)
	assert.Equal(t, StatusInGame, phase.Status())

	broken := inGame.Clone()
	broken.HostID = "ghost"
	_, err = inGame.Transition(broken)
	assert.ErrorIs(t, err, ErrIllegalRoom)
}
