package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"millionaire-service/internal/domain"
)

// ResultArchive stores final rankings as JSONB keyed by room code. Saving twice overwrites.
type ResultArchive struct {
	pool *pgxpool.Pool
}

func NewResultArchive(pool *pgxpool.Pool) *ResultArchive {
	return &ResultArchive{pool: pool}
}

func (a *ResultArchive) SaveResults(ctx context.Context, code string, rankings []domain.Ranking, finishedAt time.Time) error {
	raw, err := json.Marshal(rankings)
	if err != nil {
		return fmt.Errorf("marshal rankings: %w", err)
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO game_results (code, rankings, finished_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (code) DO UPDATE SET rankings = EXCLUDED.rankings, finished_at = EXCLUDED.finished_at`,
		code, string(raw), finishedAt)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}

func (a *ResultArchive) Results(ctx context.Context, code string) ([]domain.Ranking, error) {
	var raw []byte
	err := a.pool.QueryRow(ctx, `SELECT rankings FROM game_results WHERE code=$1`, code).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	var rankings []domain.Ranking
	if err := json.Unmarshal(raw, &rankings); err != nil {
		return nil, fmt.Errorf("unmarshal rankings: %w", err)
	}
	return rankings, nil
}
