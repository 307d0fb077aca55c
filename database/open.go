package database

import (
	"context"
	"fmt"

	"github.com/yeremiapane/wastezero-realtime/config"
	"github.com/yeremiapane/wastezero-realtime/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects the backend selected by cfg.DBDriver and prepares its schema.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case config.DriverMongo:
		store, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		utils.InfoLogger.Printf("Connected to MongoDB database %s", cfg.MongoDatabase)
		return store, nil

	case config.DriverSQLite, config.DriverMySQL:
		db, err := OpenGorm(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		store := NewGormStore(db)
		if err := store.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		utils.InfoLogger.Println("AutoMigrate completed.")
		return store, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.DBDriver)
}

func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("driver %q is not a gorm driver", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return db, nil
}
