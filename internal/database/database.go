package database

import (
	"context"
	"fmt"
	"time"

	"imdb-catalog/internal/config"
	"imdb-catalog/internal/models"
	"imdb-catalog/internal/tracing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
	config config.DatabaseConfig
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB, cfg config.DatabaseConfig) *Database {
	return &Database{DB: db, config: cfg}
}

func Connect(cfg config.DatabaseConfig, tracingCfg config.TracingConfig, log *logrus.Logger) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), newGormConfig())
	if err != nil {
		log.WithError(err).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if tracingCfg.Enabled {
		if err := db.Use(tracing.NewPlugin(log, tracingCfg.SlowThreshold)); err != nil {
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Error("Failed to get underlying sql.DB")
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		log.WithError(err).Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	log.Info("Database connection established successfully")

	if cfg.AutoMigrate {
		if err := autoMigrate(db, log); err != nil {
			log.WithError(err).Error("Failed to run auto migration")
			return nil, fmt.Errorf("failed to run auto migration: %w", err)
		}
	}

	return New(db, cfg), nil
}

// newGormConfig leaves statement preparation off: request queries run on a
// raw pooled connection checked out by WithConnection.
func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func (d *Database) WithContext(ctx context.Context) *gorm.DB {
	return d.DB.WithContext(ctx)
}

func (d *Database) GetQueryTimeout() time.Duration {
	return d.config.QueryTimeout
}

// WithConnection checks out a single pooled connection and hands fn a Database
// bound to it. The connection is returned to the pool when fn returns,
// whether it failed or not. No transaction is opened, so a failed statement
// leaves the connection usable for the next one.
func (d *Database) WithConnection(ctx context.Context, fn func(*Database) error) error {
	return d.DB.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		return fn(New(conn, d.config))
	})
}

func (d *Database) HealthCheck() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func autoMigrate(db *gorm.DB, log *logrus.Logger) error {
	log.Info("Running auto migration...")

	err := db.AutoMigrate(
		&models.TitleRecord{},
		&models.EpisodeInfo{},
		&models.Rating{},
		&models.Name{},
	)

	if err != nil {
		return err
	}

	log.Info("Auto migration completed successfully")
	return nil
}
