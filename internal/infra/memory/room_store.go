package memory

import (
	"context"
	"sync"

	"millionaire-service/internal/domain"
)

const subscriberBuffer = 8

// RoomStore is an in-process implementation of app.RoomStore. Writes are serialized
// per store and fanned out to every subscriber of the room.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
}

type roomEntry struct {
	room        domain.Room
	subscribers map[chan domain.RoomEvent]struct{}
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*roomEntry)}
}

func (s *RoomStore) Get(_ context.Context, roomID string) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return entry.room.Clone(), nil
}

func (s *RoomStore) Create(_ context.Context, roomID string, room domain.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[roomID]; ok {
		return domain.ErrRoomExists
	}
	s.rooms[roomID] = &roomEntry{
		room:        room.Clone(),
		subscribers: make(map[chan domain.RoomEvent]struct{}),
	}
	return nil
}

func (s *RoomStore) Patch(_ context.Context, roomID string, patch domain.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	next, err := patch.Apply(entry.room)
	if err != nil {
		return err
	}
	if _, err := entry.room.Transition(next); err != nil {
		return err
	}
	entry.room = next
	entry.broadcastLocked()
	return nil
}

func (s *RoomStore) Subscribe(ctx context.Context, roomID string) (<-chan domain.RoomEvent, func(), error) {
	ch := make(chan domain.RoomEvent, subscriberBuffer)

	s.mu.Lock()
	entry, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return nil, nil, domain.ErrRoomNotFound
	}
	entry.subscribers[ch] = struct{}{}
	initial := entry.room.Clone()
	// Queued under the lock so no broadcast can overtake it.
	ch <- domain.RoomEvent{Room: &initial}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := entry.subscribers[ch]; ok {
				delete(entry.subscribers, ch)
				close(ch)
			}
		})
	}
	stop := context.AfterFunc(ctx, cancel)
	return ch, func() {
		stop()
		cancel()
	}, nil
}

func (e *roomEntry) broadcastLocked() {
	for ch := range e.subscribers {
		room := e.room.Clone()
		send(ch, domain.RoomEvent{Room: &room})
	}
}

// send never blocks: a full buffer loses its oldest snapshot, which the new one supersedes.
func send(ch chan domain.RoomEvent, ev domain.RoomEvent) {
	select {
	case ch <- ev:
	default:
		select {
		case <-ch:
		default:
		}
		ch <- ev
	}
}
