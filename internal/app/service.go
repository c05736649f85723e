package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
)

// DefaultRevealDelay is how long a fastest finger outcome is shown before it is applied.
const DefaultRevealDelay = domain.RevealDelay

// Service contains the multiplayer use cases. Every operation reads the room, runs the
// pure game rule and writes the resulting patch.
type Service struct {
	rooms     RoomStore
	catalog   CatalogRepository
	archive   ResultArchive
	questions QuestionProvider
	log       *zap.Logger

	revealDelay time.Duration
	now         func() time.Time
	rng         game.Rand
}

// Option tweaks a Service.
type Option func(*Service)

func WithRevealDelay(d time.Duration) Option {
	return func(s *Service) { s.revealDelay = d }
}

// WithClock is for deterministic timestamps in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRand(rng game.Rand) Option {
	return func(s *Service) { s.rng = game.NewLockedRand(rng) }
}

func NewService(rooms RoomStore, catalog CatalogRepository, archive ResultArchive, questions QuestionProvider, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		rooms:       rooms,
		catalog:     catalog,
		archive:     archive,
		questions:   questions,
		log:         log,
		revealDelay: DefaultRevealDelay,
		now:         time.Now,
		rng:         game.NewRand(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRoom returns the current room document.
func (s *Service) GetRoom(ctx context.Context, code string) (domain.Room, error) {
	id, err := roomID(code)
	if err != nil {
		return domain.Room{}, err
	}
	return s.rooms.Get(ctx, id)
}

// Results returns the ranking of a room, falling back to the archive once the room is gone.
func (s *Service) Results(ctx context.Context, code string) ([]domain.Ranking, error) {
	room, err := s.GetRoom(ctx, code)
	if err == nil {
		return game.Rankings(room), nil
	}
	if errors.Is(err, domain.ErrRoomNotFound) && s.archive != nil {
		code, _ = game.NormalizeCode(code)
		return s.archive.Results(ctx, code)
	}
	return nil, err
}

// mutate reads the room, derives a patch and writes it. It returns the room as patched.
func (s *Service) mutate(ctx context.Context, code string, fn func(domain.Room) (domain.Patch, error)) (domain.Room, error) {
	id, err := roomID(code)
	if err != nil {
		return domain.Room{}, err
	}
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	patch, err := fn(room)
	if err != nil {
		return room, err
	}
	if len(patch) == 0 {
		return room, nil
	}
	if err := s.rooms.Patch(ctx, id, patch); err != nil {
		return room, err
	}
	next, err := patch.Apply(room)
	if err != nil {
		// Written already; the caller only loses the local echo.
		s.log.Debug("apply patch locally", zap.String("room", id), zap.Error(err))
		return room, nil
	}
	return next, nil
}

// hostMutate is mutate restricted to the room's host.
func (s *Service) hostMutate(ctx context.Context, code, actorID string, fn func(domain.Room) (domain.Patch, error)) (domain.Room, error) {
	return s.mutate(ctx, code, func(room domain.Room) (domain.Patch, error) {
		if !room.IsHost(actorID) {
			return nil, domain.ErrNotHost
		}
		return fn(room)
	})
}

func roomID(code string) (string, error) {
	code, err := game.NormalizeCode(code)
	if err != nil {
		return "", err
	}
	return domain.RoomID(code), nil
}
