package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"millionaire-service/internal/domain"
)

func TestNewRoomValidatesProfile(t *testing.T) {
	cases := []struct {
		name    string
		player  string
		age     int
		code    string
		wantErr error
	}{
		{name: "valid", player: "Ada", age: 30, code: "abc123"},
		{name: "blank name", player: "   ", age: 30, code: "ABC123", wantErr: domain.ErrInvalidName},
		{name: "too young", player: "Ada", age: 4, code: "ABC123", wantErr: domain.ErrInvalidAge},
		{name: "too old", player: "Ada", age: 101, code: "ABC123", wantErr: domain.ErrInvalidAge},
		{name: "bad code", player: "Ada", age: 30, code: "AB-12", wantErr: domain.ErrInvalidCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room, err := NewRoom(tc.code, "host", tc.player, tc.age, epoch)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				require.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "ABC123", room.GameCode)
			assert.Equal(t, domain.StatusLobby, room.Status)
			assert.Equal(t, "host", room.HostID)
			assert.True(t, room.Players["host"].IsActive)
			require.NoError(t, room.Validate())
		})
	}
}

func TestNewRoomCodeShape(t *testing.T) {
	rng := seeded()
	for i := 0; i < 50; i++ {
		code := NewRoomCode(rng)
		got, err := NormalizeCode(code)
		require.NoError(t, err)
		require.Equal(t, code, got)
	}
}

func TestJoinGates(t *testing.T) {
	room := lobbyRoom(t, "a", "b", "c", "d")

	_, err := Join(room, "e", "Eve", 40, epoch)
	require.ErrorIs(t, err, domain.ErrRoomFull)
	require.ErrorIs(t, err, domain.ErrCapacity)

	p, err := Join(room, "b", "Bob again", 40, epoch)
	require.NoError(t, err)
	assert.Empty(t, p, "rejoin must not duplicate the player")

	started := fffRoom(t, "a", "b")
	_, err = Join(started, "z", "Zed", 40, epoch)
	require.ErrorIs(t, err, domain.ErrNotInLobby)

	p, err = Join(started, "b", "Bob", 40, epoch)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestStartGates(t *testing.T) {
	solo := lobbyRoom(t, "a")
	_, err := Start(solo, "a")
	require.ErrorIs(t, err, domain.ErrNotEnoughPlayers)

	room := lobbyRoom(t, "a", "b", "c")
	_, err = Start(room, "b")
	require.ErrorIs(t, err, domain.ErrNotHost)

	p, err := Start(room, "a")
	require.NoError(t, err)
	room = apply(t, room, p)
	assert.Equal(t, domain.StatusFastestFinger, room.Status)
	assert.Equal(t, []string{"a", "b", "c"}, room.PlayerOrder)
	assert.Equal(t, 0, room.FFFQuestionIndex)
	assert.Empty(t, room.FFFAnswers)

	_, err = Start(room, "a")
	require.ErrorIs(t, err, domain.ErrNotInLobby)
}

func TestRestartResetsPlayers(t *testing.T) {
	room := inGameRoom(t, 3, "a", "b", "c")
	room.FFFQuestionIndex = 2
	room.Players["b"] = domain.Player{Name: "Player b", Age: 20, Score: 1000, FiftyFiftyUsed: true, JoinedAt: epoch}
	room.EliminatedPlayers = []string{"b"}
	room.ContestantHistory = []string{"b"}

	_, err := Restart(room, "b", seeded())
	require.ErrorIs(t, err, domain.ErrNotHost)

	p, err := Restart(room, "a", seeded())
	require.NoError(t, err)
	room = apply(t, room, p)

	assert.Equal(t, domain.StatusFastestFinger, room.Status)
	assert.Equal(t, 3, room.FFFQuestionIndex)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, room.PlayerOrder)
	assert.Empty(t, room.EliminatedPlayers)
	assert.Empty(t, room.ContestantHistory)
	assert.Nil(t, room.CurrentTurnPlayerID)
	assert.Nil(t, room.CurrentQuestion)
	b := room.Players["b"]
	assert.True(t, b.IsActive)
	assert.Zero(t, b.Score)
	assert.False(t, b.FiftyFiftyUsed)
	require.NoError(t, room.Validate())

	_, err = Restart(lobbyRoom(t, "a", "b"), "a", seeded())
	require.ErrorIs(t, err, domain.ErrNotRestartable)
}

func TestValidatePlayerID(t *testing.T) {
	cases := []struct {
		id      string
		wantErr bool
	}{
		{id: "alice"},
		{id: "bob_jones-2"},
		{id: "0b7e3c4a-8f1d-4c2e-9a6b-5d3f2e1c0b9a"},
		{id: "", wantErr: true},
		{id: "alice.smith", wantErr: true},
		{id: "bob jones", wantErr: true},
		{id: "café", wantErr: true},
		{id: strings.Repeat("x", domain.MaxPlayerIDLength+1), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			err := ValidatePlayerID(tc.id)
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidPlayerID)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDottedIDsCannotEnterRoom(t *testing.T) {
	_, err := NewRoom("ABC123", "alice.smith", "Alice", 30, epoch)
	require.ErrorIs(t, err, domain.ErrInvalidPlayerID)

	room := lobbyRoom(t, "alice")
	_, err = Join(room, "bob.jones", "Bob", 25, epoch)
	require.ErrorIs(t, err, domain.ErrInvalidPlayerID)
}
