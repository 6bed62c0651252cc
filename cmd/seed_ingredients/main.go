package main

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/logger"
	"github.com/platefeed/backend/internal/models"
)

const batchSize = 500

type catalogEntry struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func main() {
	logger.Init()
	defer logger.Sync()

	path := flag.String("file", "data/ingredients.json", "path to the ingredient catalog JSON")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := database.WaitForDatabase(cfg, 10, 2*time.Second); err != nil {
		logger.Fatal("database unreachable", zap.Error(err))
	}

	db, err := database.New(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		logger.Fatal("failed to read catalog file", zap.String("path", *path), zap.Error(err))
	}

	var entries []catalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		logger.Fatal("failed to parse catalog file", zap.Error(err))
	}

	rows := make([]models.Ingredient, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.MeasurementUnit == "" {
			continue
		}
		rows = append(rows, models.Ingredient{
			Name:            e.Name,
			MeasurementUnit: e.MeasurementUnit,
		})
	}

	// Existing names keep their rows; re-running the seed is harmless.
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).CreateInBatches(rows, batchSize)
	if result.Error != nil {
		logger.Fatal("seeding failed", zap.Error(result.Error))
	}

	logger.Info("ingredient catalog seeded",
		zap.Int("entries", len(rows)), zap.Int64("inserted", result.RowsAffected))
}
