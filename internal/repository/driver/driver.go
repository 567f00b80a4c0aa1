// Package driver opens the store selected by database.driver.
package driver

import (
	"context"
	"fmt"
	"time"

	"cfq/wod-board/internal/config"
	"cfq/wod-board/internal/repository"
	"cfq/wod-board/internal/repository/memory"
	"cfq/wod-board/internal/repository/mongo"
	"cfq/wod-board/internal/repository/postgres"

	log "github.com/sirupsen/logrus"
)

const setupTimeout = time.Minute

// Open connects to the configured store and prepares it (indexes or schema).
// The returned close func releases the connection.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*repository.Store, func() error, error) {
	switch cfg.Driver {
	case "memory":
		log.Warn("using the in-memory store, data is lost on exit")
		return memory.NewStore(), func() error { return nil }, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		setupCtx, cancel := context.WithTimeout(ctx, setupTimeout)
		defer cancel()
		if err := postgres.Migrate(setupCtx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Info("postgres store ready")
		return postgres.NewStore(pool), func() error { pool.Close(); return nil }, nil

	case "mongo", "":
		client, err := mongo.ConnectDB(cfg.URI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		db := client.Database(cfg.Name)
		setupCtx, cancel := context.WithTimeout(ctx, setupTimeout)
		defer cancel()
		if err := mongo.EnsureIndexes(setupCtx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		log.Infof("mongo store ready, database %s", cfg.Name)
		return mongo.NewStore(db), func() error { return mongo.DisconnectDB(client) }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
