package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

const createAttempts = 5

// CreateRoom opens a lobby with the caller as host. An empty playerID is replaced
// by a fresh one; the id in use is returned.
func (s *Service) CreateRoom(ctx context.Context, playerID, name string, age int) (domain.Room, string, error) {
	if _, err := game.ValidateProfile(name, age); err != nil {
		return domain.Room{}, "", err
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}
	if err := game.ValidatePlayerID(playerID); err != nil {
		return domain.Room{}, "", err
	}
	for attempt := 0; attempt < createAttempts; attempt++ {
		code := game.NewRoomCode(s.rng)
		room, err := game.NewRoom(code, playerID, name, age, s.now())
		if err != nil {
			return domain.Room{}, "", err
		}
		err = s.rooms.Create(ctx, domain.RoomID(code), room)
		if errors.Is(err, domain.ErrRoomExists) {
			continue
		}
		if err != nil {
			return domain.Room{}, "", err
		}
		s.log.Info("room created", zap.String("code", code), zap.String("host", playerID))
		return room, playerID, nil
	}
	return domain.Room{}, "", fmt.Errorf("allocate room code: %w", domain.ErrRoomExists)
}

// JoinRoom enrolls a player in a lobby, or re-attaches one already in the room.
func (s *Service) JoinRoom(ctx context.Context, code, playerID, name string, age int) (domain.Room, string, error) {
	if _, err := game.ValidateProfile(name, age); err != nil {
		return domain.Room{}, "", err
	}
	if playerID == "" {
		playerID = uuid.NewString()
	}
	if err := game.ValidatePlayerID(playerID); err != nil {
		return domain.Room{}, "", err
	}
	room, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.Join(room, playerID, name, age, s.now())
	})
	if err != nil {
		return domain.Room{}, "", err
	}
	s.log.Info("player joined", zap.String("code", room.GameCode), zap.String("player", playerID))
	return room, playerID, nil
}

// StartGame moves the lobby into the fastest finger round.
func (s *Service) StartGame(ctx context.Context, code, playerID string) error {
	room, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.Start(room, playerID)
	})
	if err != nil {
		return err
	}
	s.log.Info("game started", zap.String("code", room.GameCode), zap.Strings("players", room.PlayerOrder))
	return nil
}

// RestartGame resets every player and returns to fastest finger.
func (s *Service) RestartGame(ctx context.Context, code, playerID string) error {
	room, err := s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		return game.Restart(room, playerID, s.rng)
	})
	if err != nil {
		return err
	}
	s.log.Info("game restarted", zap.String("code", room.GameCode))
	return nil
}
