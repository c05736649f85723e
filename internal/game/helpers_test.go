package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

var epoch = time.Date(2024, 11, 22, 18, 0, 0, 0, time.UTC)

func apply(t *testing.T, room domain.Room, p domain.Patch) domain.Room {
	t.Helper()
	out, err := p.Apply(room)
	require.NoError(t, err)
	return out
}

func lobbyRoom(t *testing.T, ids ...string) domain.Room {
	t.Helper()
	room, err := NewRoom("ABC123", ids[0], "Player "+ids[0], 30, epoch)
	require.NoError(t, err)
	for i, id := range ids[1:] {
		p, err := Join(room, id, "Player "+id, 20+i, epoch.Add(time.Duration(i+1)*time.Second))
		require.NoError(t, err)
		room = apply(t, room, p)
	}
	return room
}

func fffRoom(t *testing.T, ids ...string) domain.Room {
	t.Helper()
	room := lobbyRoom(t, ids...)
	p, err := Start(room, ids[0])
	require.NoError(t, err)
	return apply(t, room, p)
}

// inGameRoom puts ids[0] in the hot seat at tier with a loaded question.
func inGameRoom(t *testing.T, tier int, ids ...string) domain.Room {
	t.Helper()
	room := fffRoom(t, ids...)
	room.Status = domain.StatusInGame
	room.CurrentTurnPlayerID = domain.Ptr(ids[0])
	room.CurrentQuestionIndex = tier
	room.CurrentQuestion = question(tier)
	require.NoError(t, room.Validate())
	return room
}

func question(tier int) *domain.GameQuestion {
	return &domain.GameQuestion{
		Question:           "Which planet is known as the Red Planet?",
		Options:            []string{"Venus", "Mars", "Jupiter", "Saturn"},
		CorrectAnswerIndex: 1,
		QuestionIndex:      domain.Ptr(tier),
	}
}

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(7))
}
