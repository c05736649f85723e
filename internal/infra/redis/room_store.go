package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/domain"
)

const (
	patchRetries     = 5
	subscriberBuffer = 8
)

// RoomStore keeps each room as one JSON document in Redis:
//
//	SET room-{code} <json> EX ttl
//	PUBLISH room-{code}:events <json>
//
// Patches run inside WATCH/MULTI so concurrent writers never lose updates.
// The key TTL is refreshed on every write and doubles as the retention policy.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{client: client, ttl: ttl}
}

func (s *RoomStore) Get(ctx context.Context, roomID string) (domain.Room, error) {
	raw, err := s.client.Get(ctx, s.key(roomID)).Bytes()
	if err != nil {
		return domain.Room{}, mapErr(err)
	}
	return decodeRoom(raw)
}

func (s *RoomStore) Create(ctx context.Context, roomID string, room domain.Room) error {
	if err := room.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(roomID), raw, s.ttl).Result()
	if err != nil {
		return mapErr(err)
	}
	if !ok {
		return domain.ErrRoomExists
	}
	return nil
}

func (s *RoomStore) Patch(ctx context.Context, roomID string, patch domain.Patch) error {
	key := s.key(roomID)
	for attempt := 0; attempt < patchRetries; attempt++ {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return mapErr(err)
			}
			var prev domain.Room
			if err := json.Unmarshal(raw, &prev); err != nil {
				return fmt.Errorf("decode room: %w", err)
			}
			doc := map[string]any{}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("decode room document: %w", err)
			}
			if err := patch.ApplyDocument(doc); err != nil {
				return err
			}
			room, err := domain.FromDocument(doc)
			if err != nil {
				return err
			}
			if _, err := prev.Transition(room); err != nil {
				return err
			}
			out, err := json.Marshal(room)
			if err != nil {
				return fmt.Errorf("encode room: %w", err)
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, out, s.ttl)
				pipe.Publish(ctx, s.channel(roomID), out)
				return nil
			})
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return mapErr(err)
	}
	return domain.ErrConcurrentUpdate
}

// Subscribe listens on the room channel before reading the current document, so no
// write between the two is missed.
func (s *RoomStore) Subscribe(ctx context.Context, roomID string) (<-chan domain.RoomEvent, func(), error) {
	pubsub := s.client.Subscribe(ctx, s.channel(roomID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrSubscriptionDropped, err)
	}
	initial, err := s.Get(ctx, roomID)
	if err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan domain.RoomEvent, subscriberBuffer)
	out <- domain.RoomEvent{Room: &initial}

	sctx, stop := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-sctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					if sctx.Err() == nil {
						send(out, domain.RoomEvent{Err: domain.ErrSubscriptionDropped})
					}
					return
				}
				room, err := decodeRoom([]byte(msg.Payload))
				if err != nil {
					continue
				}
				send(out, domain.RoomEvent{Room: &room})
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
			<-done
		})
	}
	return out, cancel, nil
}

func (s *RoomStore) key(roomID string) string {
	return roomID
}

func (s *RoomStore) channel(roomID string) string {
	return roomID + ":events"
}

func decodeRoom(raw []byte) (domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal(raw, &room); err != nil {
		return domain.Room{}, fmt.Errorf("decode room: %w", err)
	}
	return room, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.Nil):
		return domain.ErrRoomNotFound
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrCapacity):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrConnectionLost, err)
	}
}

// send drops the oldest queued snapshot rather than block the reader goroutine.
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
