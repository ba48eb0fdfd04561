package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/config"
	"github.com/cinesage/cinesage-engine/pkg/database"
	"github.com/cinesage/cinesage-engine/pkg/handlers"
	"github.com/cinesage/cinesage-engine/pkg/llm"
	"github.com/cinesage/cinesage-engine/pkg/logging"
	"github.com/cinesage/cinesage-engine/pkg/middleware"
	"github.com/cinesage/cinesage-engine/pkg/repositories"
	"github.com/cinesage/cinesage-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load("config.yaml", Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env, "")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("oracle_provider", cfg.Oracle.Provider),
		zap.String("oracle_model", cfg.Oracle.Model),
		zap.Int("enrichment_default_movie_count", cfg.Enrichment.DefaultMovieCount))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// golang-migrate needs a database/sql handle.
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection",
			zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	sqlDB.Close()

	oracle, err := llm.NewFromConfig(&llm.Config{
		Provider: cfg.Oracle.Provider,
		Endpoint: cfg.Oracle.Endpoint,
		Model:    cfg.Oracle.Model,
		APIKey:   cfg.Oracle.APIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create oracle client", zap.Error(err))
	}

	movieRepo := repositories.NewMovieRepository(db)
	ratingRepo := repositories.NewRatingRepository(db)
	enrichmentRepo := repositories.NewEnrichmentRepository(db)

	enrichmentService := services.NewEnrichmentService(
		movieRepo, ratingRepo, enrichmentRepo, oracle,
		time.Duration(cfg.Enrichment.DelayMs)*time.Millisecond,
		cfg.Oracle.MaxTokens, logger)
	recommendationService := services.NewRecommendationService(
		movieRepo, ratingRepo, enrichmentRepo, oracle,
		cfg.Oracle.Temperature, cfg.Oracle.MaxTokens, logger)
	insightService := services.NewInsightService(
		movieRepo, enrichmentRepo, recommendationService, oracle,
		cfg.Oracle.Temperature, cfg.Oracle.MaxTokens, logger)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewEnrichmentHandler(enrichmentService, movieRepo, enrichmentRepo,
		cfg.Enrichment.DefaultMovieCount, logger).RegisterRoutes(mux)
	handlers.NewUserHandler(ratingRepo, recommendationService, logger).RegisterRoutes(mux)
	handlers.NewInsightHandler(insightService, logger).RegisterRoutes(mux)

	handler := middleware.Recover(logger)(middleware.RequestLogger(logger)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting cinesage-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
