package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/Insightsparklabs/english-coach-app/internal/llm"
	"github.com/Insightsparklabs/english-coach-app/internal/models"
	"github.com/Insightsparklabs/english-coach-app/internal/repository"
	"github.com/Insightsparklabs/english-coach-app/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type chatApplicationService interface {
	HandleTurn(ctx context.Context, req services.ChatTurnRequest) (*services.ChatTurnResult, error)
	History(ctx context.Context, userID string) ([]models.ChatTurn, error)
}

type ChatHandler struct {
	service chatApplicationService
	db      *pgxpool.Pool
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Level   string `json:"level"`
	Mode    string `json:"mode"`
}

func NewChatHandler(service chatApplicationService, db *pgxpool.Pool) *ChatHandler {
	return &ChatHandler{
		service: service,
		db:      db,
	}
}

func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"detail": "Invalid request body"})
	}

	result, err := h.service.HandleTurn(c.Context(), services.ChatTurnRequest{
		UserID:  req.UserID,
		Message: req.Message,
		Level:   req.Level,
		Mode:    req.Mode,
	})
	if err != nil {
		return mapChatError(c, err)
	}

	return c.JSON(result)
}

func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Params("user_id")

	turns, err := h.service.History(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUnconfigured) {
			return c.Status(fiber.StatusInternalServerError).
				JSON(fiber.Map{"detail": "Datastore is not configured"})
		}
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"detail": "Failed to load history"})
	}

	return c.JSON(turns)
}

func (h *ChatHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "ok",
		"message":  "English Coach Backend is running",
		"database": h.databaseUp(c.Context()),
	})
}

func (h *ChatHandler) databaseUp(ctx context.Context) bool {
	if h.db == nil {
		return false
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return h.db.Ping(pingCtx) == nil
}

// mapChatError keeps the wire detail sanitized and cause-specific; the raw
// provider error is already logged by the service.
func mapChatError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"detail": "message and user_id are required"})
	case errors.Is(err, llm.ErrDisabled):
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"detail": "AI model is not configured"})
	case errors.Is(err, llm.ErrRateLimited):
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"detail": "The AI service is temporarily rate limited. Please try again in a moment."})
	case errors.Is(err, llm.ErrModelNotFound):
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"detail": "The configured AI model identifier is invalid"})
	default:
		return c.Status(fiber.StatusInternalServerError).
			JSON(fiber.Map{"detail": "Failed to generate a response"})
	}
}
