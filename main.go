package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/krshsl/mulakat/backend/repository"
	"github.com/krshsl/mulakat/backend/services"
)

func main() {
	// Setup structured logging with JSON format
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// Load configuration
	config := services.LoadConfig()

	server := services.NewServer(config)

	// Initialize database connection
	if config.Database.URL != "" {
		db, err := gorm.Open(postgres.Open(config.Database.URL), &gorm.Config{
			Logger:         logger.Default.LogMode(gormLogLevel(config.Database.LogLevel)),
			TranslateError: true,
		})
		if err != nil {
			slog.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}

		sqlDB, err := db.DB()
		if err != nil {
			slog.Error("Failed to get database handle", "error", err)
			os.Exit(1)
		}
		defer sqlDB.Close()
		sqlDB.SetMaxIdleConns(config.Database.MaxIdleConns)
		sqlDB.SetMaxOpenConns(config.Database.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Hour)

		repo := repository.NewGORMRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			slog.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		slog.Info("Connected to database")

		server.SetStores(repo, repo, db)
	} else {
		slog.Warn("Database URL not configured, using in-memory store")
		store := repository.NewMemoryStore()
		server.SetStores(store, store, nil)
	}

	if err := server.InitializeServices(); err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	if config.Database.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := server.Seed(ctx); err != nil {
			slog.Error("Failed to seed database", "error", err)
		}
		cancel()
	}

	server.Start()
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}
