package routes

import (
	"github.com/Insightsparklabs/english-coach-app/internal/config"
	"github.com/Insightsparklabs/english-coach-app/internal/handlers"
	"github.com/Insightsparklabs/english-coach-app/internal/repository"
	"github.com/Insightsparklabs/english-coach-app/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes wires repositories, services, and handlers. The db pool and
// the model may each be absent; the unconfigured variants keep every call
// site uniform. Route paths match the client contract: /chat, /history/:user_id.
func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool, model services.ReplyGenerator) {
	var turnStore services.TurnStore
	if db != nil {
		turnStore = repository.NewChatTurnRepository(db)
	} else {
		turnStore = repository.UnconfiguredTurnStore{}
	}

	quotaGuard := services.NewQuotaGuard(turnStore, cfg.AdminUserID, cfg.DailyLimit)
	chatService := services.NewChatService(turnStore, model, quotaGuard, cfg.HistoryWindow)
	chatHandler := handlers.NewChatHandler(chatService, db)

	app.Get("/", chatHandler.Health)
	app.Get("/health", chatHandler.Health)
	app.Post("/chat", chatHandler.Chat)
	app.Get("/history/:user_id", chatHandler.GetHistory)
}
