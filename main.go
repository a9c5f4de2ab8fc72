package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"claimsight/adapters/postgres"
	"claimsight/ai"
	"claimsight/app"
	"claimsight/internal"
	"claimsight/internal/config"
	"claimsight/internal/errors"
	"claimsight/internal/migration"
	"claimsight/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	if appConfig.Database.Migrate {
		migrator := migration.NewRunner()
		if err := migrator.Run(context.Background(), db); err != nil {
			return nil, errors.Wrap(err, "database migration failed")
		}
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger := internal.NewDefaultLogger()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	store := postgres.NewClaimStoreWithRetries(db, appConfig.Database.QueryRetries)
	dashboards := app.NewDashboardService(store)

	var chat *app.ChatService
	if appConfig.AI.APIKey != "" {
		client, err := ai.NewChatClient(ai.Config{
			APIKey:    appConfig.AI.APIKey,
			BaseURL:   appConfig.AI.BaseURL,
			Model:     appConfig.AI.Model,
			MaxTokens: appConfig.AI.MaxTokens,
			Timeout:   appConfig.AI.Timeout,
		})
		if err != nil {
			log.Fatalf("Failed to create chat client: %v", err)
		}
		chat = app.NewChatService(client, store)
		logger.Info("Chat assistant enabled (model %s)", appConfig.AI.Model)
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, chat endpoint disabled")
	}

	httpApp := ui.NewApp(appConfig.Server, ui.Services{
		Dashboards: dashboards,
		Anomalies:  app.NewAnomalyService(store),
		Filters:    app.NewFilterService(store),
		Insights:   app.NewInsightService(dashboards),
		Exports:    app.NewExportService(dashboards, store),
		Chat:       chat,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() { serverErr <- httpApp.Start() }()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining requests")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := httpApp.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error: %v", err)
		}
	}
}
