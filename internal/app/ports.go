package app

import (
	"context"
	"time"

	"millionaire-service/internal/domain"
)

// RoomStore is the shared room document store.
type RoomStore interface {
	Get(ctx context.Context, roomID string) (domain.Room, error)
	// Create fails with domain.ErrRoomExists when the id is taken.
	Create(ctx context.Context, roomID string, room domain.Room) error
	// Patch applies every field write atomically.
	Patch(ctx context.Context, roomID string, patch domain.Patch) error
	// Subscribe pushes the current room immediately, then every write. The caller must
	// invoke the returned cancel function.
	Subscribe(ctx context.Context, roomID string) (<-chan domain.RoomEvent, func(), error)
}

// CatalogRepository serves the fastest finger questions.
type CatalogRepository interface {
	Catalog(ctx context.Context) ([]domain.FFFQuestion, error)
}

// ResultArchive keeps final scoreboards after rooms expire.
type ResultArchive interface {
	SaveResults(ctx context.Context, code string, rankings []domain.Ranking, finishedAt time.Time) error
	Results(ctx context.Context, code string) ([]domain.Ranking, error)
}

// QuestionProvider never fails; it reports whether the fallback was used.
type QuestionProvider interface {
	Provide(ctx context.Context, key string, age, prize, tier int) (domain.GameQuestion, bool)
}
