package main

import (
	"context"
	"log"

	"github.com/Insightsparklabs/english-coach-app/internal/config"
	"github.com/Insightsparklabs/english-coach-app/internal/database"
	"github.com/Insightsparklabs/english-coach-app/internal/llm"
	"github.com/Insightsparklabs/english-coach-app/internal/routes"
	"github.com/Insightsparklabs/english-coach-app/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Connect to Database (optional capability)
	var pool *pgxpool.Pool
	if cfg.DBUrl == "" {
		log.Println("Warning: DB_URL not set, running without datastore")
	} else {
		pool, err = database.Connect(cfg.DBUrl)
		switch {
		case err != nil && pool == nil:
			// Credentials were provided but unusable, which is not the same
			// as running without a datastore on purpose.
			log.Printf("Warning: datastore misconfigured, running without it: %v", err)
		case err != nil:
			log.Printf("Warning: database not reachable at startup: %v", err)
		}
		if pool != nil {
			defer pool.Close()
		}
	}

	// 3. Initialize Gemini (optional capability)
	var model services.ReplyGenerator = llm.Disabled{}
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GOOGLE_API_KEY not set, chat endpoint disabled")
	} else {
		client, err := llm.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.ModelName)
		if err != nil {
			log.Printf("Warning: failed to initialize Gemini: %v", err)
		} else {
			model = client
			log.Printf("Gemini (%s) initialized", cfg.ModelName)
		}
	}

	// 4. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Routes
	routes.RegisterRoutes(app, cfg, pool, model)

	// 5. Start Server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
