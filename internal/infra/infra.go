package infra

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"maqayees/internal/config"
	"maqayees/internal/db"
	redisclient "maqayees/internal/redis"
)

type Infra struct {
	PG    *pgxpool.Pool
	Redis *redis.Client
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Infra, error) {
	pool, err := db.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}

	// Self-bootstrap schema: ensure `shifts` exists before serving requests.
	if err := EnsureShiftsTable(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("infra ready")
	return &Infra{PG: pool, Redis: rdb}, nil
}

func (i *Infra) Close() {
	if i == nil {
		return
	}
	if i.PG != nil {
		i.PG.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
}
