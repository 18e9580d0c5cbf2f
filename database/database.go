package database

import (
	"context"
	"fmt"
	"time"

	"kashpages/config"
	"kashpages/internal/platform/logger"
	"kashpages/internal/store"
	"kashpages/internal/store/gormstore"
	"kashpages/internal/store/mongostore"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB is an opened and migrated record store.
type DB struct {
	Driver      string
	Collections store.Collections
	ping        func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// Ping checks that the store still answers.
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.ping == nil {
		return nil
	}
	return d.ping(ctx)
}

func (d *DB) Close(ctx context.Context) error {
	if d == nil || d.close == nil {
		return nil
	}
	return d.close(ctx)
}

// Open connects to the configured driver and migrates its schema.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, log)
	case config.DriverSQLite:
		return openGorm(sqlite.Open(cfg.SQLitePath), cfg, log)
	default:
		return openGorm(postgres.Open(cfg.DBURL), cfg, log)
	}
}

func openGorm(dialector gorm.Dialector, cfg *config.Config, log *logger.Logger) (*DB, error) {
	level := gormlogger.Warn
	if cfg.Production() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.StoreDriver, err)
	}
	if err := db.AutoMigrate(gormstore.Models()...); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == config.DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}
	log.Info("Connected and migrated", "driver", cfg.StoreDriver)

	return &DB{
		Driver:      cfg.StoreDriver,
		Collections: gormstore.Open(db),
		ping:        sqlDB.PingContext,
		close:       func(context.Context) error { return sqlDB.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log *logger.Logger) (*DB, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoURI).SetServerSelectionTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("Connected and indexed", "driver", cfg.StoreDriver, "database", cfg.MongoDB)

	return &DB{
		Driver:      cfg.StoreDriver,
		Collections: mongostore.Open(db),
		ping:        func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:       client.Disconnect,
	}, nil
}
