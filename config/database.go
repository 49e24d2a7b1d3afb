package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/farellandr/eventhub/internal/store"
)

const connectTimeout = 10 * time.Second

// InitStore connects the backend named by DB_DRIVER and prepares its schema
// or indexes.
func InitStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.DBDriver {
	case DriverMongo:
		s, err := InitMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		db, err := InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	}
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if cfg.DBDriver == DriverSQLite {
		// sqlite allows one writer; serialise instead of failing with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := store.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func InitMongo(ctx context.Context, cfg *Config) (*store.MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	s, err := store.NewMongoStore(ctx, client, cfg.MongoDB)
	if err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}
