package game

import (
	"strings"
	"time"

	"millionaire-service/internal/domain"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRoomCode returns a random 6 character join code.
func NewRoomCode(rng Rand) string {
	var b strings.Builder
	b.Grow(domain.RoomCodeLength)
	for i := 0; i < domain.RoomCodeLength; i++ {
		b.WriteByte(codeAlphabet[rng.Intn(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode upper-cases a typed code and checks its shape.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != domain.RoomCodeLength {
		return "", domain.ErrInvalidCode
	}
	for _, c := range code {
		if !strings.ContainsRune(codeAlphabet, c) {
			return "", domain.ErrInvalidCode
		}
	}
	return code, nil
}

// ValidateProfile trims the name and checks both fields.
func ValidateProfile(name string, age int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrInvalidName
	}
	if age < domain.MinAge || age > domain.MaxAge {
		return "", domain.ErrInvalidAge
	}
	return name, nil
}

// ValidatePlayerID checks that id is safe to use as a key in dotted document paths.
func ValidatePlayerID(id string) error {
	if id == "" || len(id) > domain.MaxPlayerIDLength {
		return domain.ErrInvalidPlayerID
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return domain.ErrInvalidPlayerID
		}
	}
	return nil
}

// NewRoom builds a lobby with the creator as its only player and host.
func NewRoom(code, hostID, name string, age int, now time.Time) (domain.Room, error) {
	name, err := ValidateProfile(name, age)
	if err != nil {
		return domain.Room{}, err
	}
	if err := ValidatePlayerID(hostID); err != nil {
		return domain.Room{}, err
	}
	if code, err = NormalizeCode(code); err != nil {
		return domain.Room{}, err
	}
	return domain.Room{
		GameCode: code,
		Status:   domain.StatusLobby,
		HostID:   hostID,
		Players: map[string]domain.Player{
			hostID: newPlayer(name, age, now),
		},
		PlayerOrder:        []string{},
		EliminatedPlayers:  []string{},
		ContestantHistory:  []string{},
		FFFAnswers:         map[string]domain.FFFAnswer{},
		FFFTieParticipants: []string{},
		CreatedAt:          now,
	}, nil
}

// Join enrolls a player. Rejoining with an id already in the room re-attaches and
// returns an empty patch.
func Join(room domain.Room, playerID, name string, age int, now time.Time) (domain.Patch, error) {
	name, err := ValidateProfile(name, age)
	if err != nil {
		return nil, err
	}
	if err := ValidatePlayerID(playerID); err != nil {
		return nil, err
	}
	if _, ok := room.Players[playerID]; ok {
		return domain.Patch{}, nil
	}
	if room.Status != domain.StatusLobby {
		return nil, domain.ErrNotInLobby
	}
	if len(room.Players) >= domain.MaxPlayers {
		return nil, domain.ErrRoomFull
	}
	return domain.Patch{
		"players." + playerID: newPlayer(name, age, now),
	}, nil
}

// Start moves a lobby into the first fastest finger heat.
func Start(room domain.Room, playerID string) (domain.Patch, error) {
	if !room.IsHost(playerID) {
		return nil, domain.ErrNotHost
	}
	if room.Status != domain.StatusLobby {
		return nil, domain.ErrNotInLobby
	}
	active := room.ActivePlayerIDs()
	if len(active) < domain.MinPlayers {
		return nil, domain.ErrNotEnoughPlayers
	}
	p := domain.Patch{
		"status":      domain.StatusFastestFinger,
		"playerOrder": active,
	}
	return p.Merge(resetMainGame()).Merge(resetHeats(0)), nil
}

// Restart sends a running or finished game back to fastest finger with every
// player reset. The next heat uses the following catalog question.
func Restart(room domain.Room, playerID string, rng Rand) (domain.Patch, error) {
	if !room.IsHost(playerID) {
		return nil, domain.ErrNotHost
	}
	if room.Status != domain.StatusInGame && room.Status != domain.StatusFinalScores {
		return nil, domain.ErrNotRestartable
	}
	players := make(map[string]domain.Player, len(room.Players))
	for id, pl := range room.Players {
		players[id] = newPlayer(pl.Name, pl.Age, pl.JoinedAt)
	}
	reset := room.Clone()
	reset.Players = players
	order := shuffled(reset.ActivePlayerIDs(), rng)

	p := domain.Patch{
		"status":      domain.StatusFastestFinger,
		"players":     players,
		"playerOrder": order,
	}
	return p.Merge(resetMainGame()).Merge(resetHeats(room.FFFQuestionIndex + 1)), nil
}

func newPlayer(name string, age int, joined time.Time) domain.Player {
	return domain.Player{Name: name, Age: age, IsActive: true, JoinedAt: joined}
}

// resetMainGame clears every in-game field.
func resetMainGame() domain.Patch {
	return domain.Patch{
		"eliminatedPlayers":     []string{},
		"contestantHistory":     []string{},
		"currentQuestionIndex":  0,
		"currentTurnPlayerId":   nil,
		"currentQuestion":       nil,
		"isLoadingQuestion":     false,
		"questionLifelineState": domain.LifelineState{},
		"activeLifelineRequest": nil,
	}
}

func resetHeats(index int) domain.Patch {
	return domain.Patch{
		"fffQuestionIndex":   index,
		"fffAnswers":         map[string]domain.FFFAnswer{},
		"fffWinnerId":        nil,
		"fffTieParticipants": []string{},
	}
}
