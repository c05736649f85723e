package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"millionaire-service/internal/domain"
)

func TestCatalogRepositoryCaches(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.DefaultFFFCatalog)}
	repo := NewCatalogRepository(loader, time.Minute)

	got, err := repo.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if len(got) != len(domain.DefaultFFFCatalog) {
		t.Fatalf("expected %d questions, got %d", len(domain.DefaultFFFCatalog), len(got))
	}
	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(domain.DefaultFFFCatalog)}
	repo := NewCatalogRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := repo.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog after expiry: %v", err)
	}
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestCatalogRepositoryRejectsEmptyCatalog(t *testing.T) {
	repo := NewCatalogRepository(NewStaticCatalogLoader(nil), time.Minute)
	if _, err := repo.Catalog(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.FFFQuestion, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.CatalogLoader.LoadCatalog(ctx)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}
