package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"millionaire-service/internal/domain"
)

// ResultArchive keeps final rankings in process.
type ResultArchive struct {
	mu      sync.RWMutex
	results map[string]archived
}

type archived struct {
	rankings   []domain.Ranking
	finishedAt time.Time
}

func NewResultArchive() *ResultArchive {
	return &ResultArchive{results: make(map[string]archived)}
}

func (a *ResultArchive) SaveResults(_ context.Context, code string, rankings []domain.Ranking, finishedAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.results[code] = archived{rankings: slices.Clone(rankings), finishedAt: finishedAt}
	return nil
}

func (a *ResultArchive) Results(_ context.Context, code string) ([]domain.Ranking, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	res, ok := a.results[code]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return slices.Clone(res.rankings), nil
}
