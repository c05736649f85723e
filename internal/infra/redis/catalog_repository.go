package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"millionaire-service/internal/domain"
)

const catalogKey = "fff:catalog"

// CatalogLoader fetches the fastest finger catalog from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.FFFQuestion, error)
}

// CatalogRepository caches the catalog in Redis as a JSON string and falls back to
// the loader on a miss. Every instance of the service shares the cached copy.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) Catalog(ctx context.Context) ([]domain.FFFQuestion, error) {
	if catalog, ok := r.cached(ctx); ok {
		return catalog, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check in case another instance filled it.
		if catalog, ok := r.cached(ctx); ok {
			return catalog, nil
		}
		catalog, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if len(catalog) == 0 {
			return nil, domain.ErrGameNotFound
		}
		if raw, err := json.Marshal(catalog); err == nil {
			_ = r.client.Set(ctx, catalogKey, raw, r.ttlWithJitter()).Err()
		}
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.FFFQuestion), nil
}

func (r *CatalogRepository) cached(ctx context.Context) ([]domain.FFFQuestion, bool) {
	raw, err := r.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return nil, false
	}
	var catalog []domain.FFFQuestion
	if err := json.Unmarshal(raw, &catalog); err != nil || len(catalog) == 0 {
		return nil, false
	}
	return catalog, true
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
