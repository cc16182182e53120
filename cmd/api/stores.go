package main

import (
	"context"
	"fmt"

	"github.com/georgemunganga/shelf-api/internal/modules/note"
	"github.com/georgemunganga/shelf-api/internal/modules/product"
	"github.com/georgemunganga/shelf-api/internal/platform/cache"
	"github.com/georgemunganga/shelf-api/internal/platform/config"
	"github.com/georgemunganga/shelf-api/internal/platform/database"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// repositories bundles the resource repositories of the selected store driver.
type repositories struct {
	notes    note.Repository
	products product.Repository
	ping     func(ctx context.Context) error
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := note.EnsureMongoIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("note indexes: %w", err)
		}
		if err := product.EnsureMongoIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("product indexes: %w", err)
		}
		return &repositories{
			notes:    note.NewMongoRepository(db),
			products: product.NewMongoRepository(db),
			ping:     func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close:    func() { client.Disconnect(context.Background()) },
		}, nil

	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db, note.PostgresSchema, product.PostgresSchema); err != nil {
			db.Close()
			return nil, err
		}
		return &repositories{
			notes:    note.NewPostgresRepository(db),
			products: product.NewPostgresRepository(db),
			ping:     db.PingContext,
			close:    func() { db.Close() },
		}, nil

	case config.DriverMemory:
		return &repositories{
			notes:    note.NewMemoryRepository(),
			products: product.NewMemoryRepository(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openCache(cfg *config.Config) (cache.Store, error) {
	switch cfg.CacheDriver {
	case config.DriverRedis:
		store, err := cache.NewRedisStoreFromURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return cache.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
}
