package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"millionaire-service/internal/domain"
	"millionaire-service/internal/game"
	"millionaire-service/internal/infra/memory"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newRoom(t *testing.T) domain.Room {
	t.Helper()
	room, err := game.NewRoom("ABC123", "host", "Ann", 30, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	return room
}

func TestRoomStoreCreateSetsTTL(t *testing.T) {
	mr, client := newClient(t)
	store := NewRoomStore(client, time.Hour)
	ctx := context.Background()
	id := domain.RoomID("ABC123")

	if err := store.Create(ctx, id, newRoom(t)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists(id) {
		t.Fatalf("expected redis key %s", id)
	}
	if ttl := mr.TTL(id); ttl != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", ttl)
	}
	if err := store.Create(ctx, id, newRoom(t)); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("expected room exists, got %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Players["host"].Name != "Ann" {
		t.Fatalf("unexpected room %+v", got)
	}
	if _, err := store.Get(ctx, domain.RoomID("ZZZ999")); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRoomStorePatchAppliesAndValidates(t *testing.T) {
	_, client := newClient(t)
	store := NewRoomStore(client, time.Hour)
	ctx := context.Background()
	id := domain.RoomID("ABC123")
	room := newRoom(t)
	if err := store.Create(ctx, id, room); err != nil {
		t.Fatalf("create: %v", err)
	}

	patch, err := game.Join(room, "p2", "Bob", 40, time.Now())
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := store.Patch(ctx, id, patch); err != nil {
		t.Fatalf("patch: %v", err)
	}
	got, _ := store.Get(ctx, id)
	if _, ok := got.Players["p2"]; !ok {
		t.Fatalf("expected p2 after patch, got %+v", got.Players)
	}

	if err := store.Patch(ctx, id, domain.Patch{"activeLifelineRequest.responses.p2": 0}); !errors.Is(err, domain.ErrMissingParent) {
		t.Fatalf("expected missing parent, got %v", err)
	}
	if err := store.Patch(ctx, id, domain.Patch{"hostId": "ghost"}); !errors.Is(err, domain.ErrIllegalRoom) {
		t.Fatalf("expected illegal room, got %v", err)
	}
	if err := store.Patch(ctx, id, domain.Patch{"status": domain.StatusInGame}); !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	if got, _ := store.Get(ctx, id); got.Status != domain.StatusLobby {
		t.Fatalf("rejected transition was stored: %s", got.Status)
	}
	if err := store.Patch(ctx, domain.RoomID("ZZZ999"), domain.Patch{"status": "lobby"}); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRoomStoreSubscribeReceivesPatches(t *testing.T) {
	_, client := newClient(t)
	store := NewRoomStore(client, time.Hour)
	ctx := context.Background()
	id := domain.RoomID("ABC123")
	room := newRoom(t)
	if err := store.Create(ctx, id, room); err != nil {
		t.Fatalf("create: %v", err)
	}

	events, cancel, err := store.Subscribe(ctx, id)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	first := receive(t, events)
	if first.Room.GameCode != "ABC123" {
		t.Fatalf("unexpected initial snapshot %+v", first.Room)
	}

	patch, _ := game.Join(room, "p2", "Bob", 40, time.Now())
	if err := store.Patch(ctx, id, patch); err != nil {
		t.Fatalf("patch: %v", err)
	}
	next := receive(t, events)
	if _, ok := next.Room.Players["p2"]; !ok {
		t.Fatalf("expected p2 in published room, got %+v", next.Room.Players)
	}

	cancel()
	if _, ok := <-events; ok {
		t.Fatalf("expected channel closed after cancel")
	}
}

func TestRoomStoreSubscribeUnknownRoom(t *testing.T) {
	_, client := newClient(t)
	store := NewRoomStore(client, time.Hour)
	if _, _, err := store.Subscribe(context.Background(), domain.RoomID("ZZZ999")); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, client := newClient(t)
	loader := &countingLoader{CatalogLoader: memory.NewStaticCatalogLoader(domain.DefaultFFFCatalog)}
	repo := NewCatalogRepository(client, loader, time.Minute)

	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(catalogKey) {
		t.Fatalf("expected %s cached", catalogKey)
	}

	got, err := repo.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if got[0].Question != domain.DefaultFFFCatalog[0].Question {
		t.Fatalf("cached catalog differs: %+v", got[0])
	}
}

type countingLoader struct {
	memory.CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.FFFQuestion, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func receive(t *testing.T, events <-chan domain.RoomEvent) domain.RoomEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		if !ok {
			t.Fatalf("channel closed")
		}
		if ev.Room == nil {
			t.Fatalf("expected room in event, got err %v", ev.Err)
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for room event")
	}
	return domain.RoomEvent{}
}
