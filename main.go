package main

import (
	"context"
	"log"

	"postlift/adapters/instagram"
	"postlift/adapters/postgres"
	"postlift/adapters/shopify"
	"postlift/app"
	"postlift/domain/attribution"
	"postlift/internal"
	"postlift/internal/config"
	"postlift/internal/engine"
	"postlift/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	logger := internal.NewDefaultLogger()

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	eng, err := engine.New(attribution.DefaultWeights())
	if err != nil {
		log.Fatalf("Failed to initialize attribution engine: %v", err)
	}

	campaigns := postgres.NewCampaignRepository(db)
	orders := shopify.NewOrderClient(appConfig.Shopify)
	posts := instagram.NewPostClient(appConfig.Instagram, instagram.NewMentionClassifier(nil))

	service := app.NewAttributionService(
		orders, posts, campaigns, eng,
		appConfig.Attribution.LookbackDays,
		appConfig.Attribution.Workers,
		logger,
	)

	server := ui.NewServer(service, campaigns, logger)
	if err := server.Run(appConfig.Server.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// initDatabase connects to PostgreSQL and ensures the schema exists
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
