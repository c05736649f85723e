package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
)

// CatalogLoader fetches the fastest finger catalog from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.FFFQuestion, error)
}

// CatalogRepository caches the catalog with a TTL so sessions do not hit the database on connect.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	catalog   []domain.FFFQuestion
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Catalog(ctx context.Context) ([]domain.FFFQuestion, error) {
	if cached, ok := r.cached(r.clock()); ok {
		return cached, nil
	}

	result, err, _ := r.sf.Do("catalog", func() (interface{}, error) {
		now := r.clock()
		if cached, ok := r.cached(now); ok {
			return cached, nil
		}
		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if len(catalog) == 0 {
			return nil, domain.ErrGameNotFound
		}

		expiresAt := now.Add(r.ttlWithJitter())
		r.mu.Lock()
		r.catalog = catalog
		r.expiresAt = expiresAt
		r.mu.Unlock()
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FFFQuestion), nil
}

func (r *CatalogRepository) cached(now time.Time) ([]domain.FFFQuestion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.catalog != nil && r.expiresAt.After(now) {
		return r.catalog, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves a fixed catalog (demos, tests, no database configured).
type StaticCatalogLoader struct {
	catalog []domain.FFFQuestion
}

func NewStaticCatalogLoader(catalog []domain.FFFQuestion) *StaticCatalogLoader {
	return &StaticCatalogLoader{catalog: catalog}
}

func (l *StaticCatalogLoader) LoadCatalog(context.Context) ([]domain.FFFQuestion, error) {
	return l.catalog, nil
}
