package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/logger"
)

// New opens a gorm connection to Postgres and configures the pool.
func New(cfg *config.Config) (*gorm.DB, error) {
	dsn := DSN(cfg)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	logger.Info("connected to database",
		zap.String("host", cfg.DBHost), zap.String("name", cfg.DBName))
	return db, nil
}

// DSN builds the Postgres connection string from config.
func DSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)
}

// WaitForDatabase pings Postgres over database/sql until it answers or the
// attempt budget runs out. Used at startup so the API does not race the
// database container.
func WaitForDatabase(cfg *config.Config, attempts int, delay time.Duration) error {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	for i := 1; i <= attempts; i++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		logger.Warn("database not ready",
			zap.Int("attempt", i), zap.Error(err))
		time.Sleep(delay)
	}
	return fmt.Errorf("database did not become ready: %w", err)
}
