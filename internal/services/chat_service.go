package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Insightsparklabs/english-coach-app/internal/llm"
	"github.com/Insightsparklabs/english-coach-app/internal/models"
	"github.com/Insightsparklabs/english-coach-app/internal/observability"
	"github.com/Insightsparklabs/english-coach-app/internal/repository"
)

var ErrInvalidInput = errors.New("invalid input")

// Store calls and the model call are the only operations that can stall;
// both run under their own deadline so an upstream outage cannot hang a
// request past these bounds.
const (
	storeTimeout = 5 * time.Second
	modelTimeout = 60 * time.Second
)

// TurnStore is the History Store surface the chat flow needs. Both the pgx
// repository and the unconfigured variant satisfy it.
type TurnStore interface {
	Create(ctx context.Context, userID, userMessage, aiResponse string) (*models.ChatTurn, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]models.ChatTurn, error)
	ListByUser(ctx context.Context, userID string) ([]models.ChatTurn, error)
}

// ReplyGenerator is the model invoker seam; llm.GeminiClient in production,
// llm.Disabled when no API key is configured.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, instruction string, history []llm.Message, userMessage string) (string, error)
}

type ChatTurnRequest struct {
	UserID  string
	Message string
	Level   string
	Mode    string
}

type ChatTurnResult struct {
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

type ChatService struct {
	turns         TurnStore
	model         ReplyGenerator
	quota         *QuotaGuard
	historyWindow int
	logger        *slog.Logger
}

func NewChatService(
	turns TurnStore,
	model ReplyGenerator,
	quota *QuotaGuard,
	historyWindow int,
) *ChatService {
	return &ChatService{
		turns:         turns,
		model:         model,
		quota:         quota,
		historyWindow: historyWindow,
		logger:        observability.WithFields("component", "chat_service"),
	}
}

// HandleTurn runs one chat turn: quota check, context load, instruction
// build, model call, best-effort persist. A quota denial is a successful
// response carrying the denial message; it is never persisted. Only a model
// failure surfaces as an error, the store paths degrade to "no memory".
func (s *ChatService) HandleTurn(ctx context.Context, req ChatTurnRequest) (*ChatTurnResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" || strings.TrimSpace(req.UserID) == "" {
		return nil, ErrInvalidInput
	}

	mode := req.Mode
	if mode == "" {
		mode = llm.ModeAssessment
	}

	decision := s.quota.Allow(ctx, req.UserID)
	if !decision.Allowed {
		return &ChatTurnResult{
			UserMessage: message,
			AIResponse:  decision.Message,
		}, nil
	}

	history := s.loadContext(ctx, req.UserID)
	instruction := llm.BuildInstruction(req.Level, mode)

	modelCtx, cancel := context.WithTimeout(ctx, modelTimeout)
	defer cancel()

	reply, err := s.model.GenerateReply(modelCtx, instruction, history, message)
	if err != nil {
		s.logger.Error("model invocation failed",
			"user_id", req.UserID,
			"mode", mode,
			"error", err.Error(),
		)
		return nil, err
	}

	writeCtx, cancelWrite := context.WithTimeout(ctx, storeTimeout)
	defer cancelWrite()

	if _, err := s.turns.Create(writeCtx, req.UserID, message, reply); err != nil {
		s.logger.Warn("turn not persisted, returning reply anyway",
			"user_id", req.UserID,
			"error", err.Error(),
		)
	}

	return &ChatTurnResult{
		UserMessage: message,
		AIResponse:  reply,
	}, nil
}

// loadContext fetches the recency window and expands each stored turn into
// a user entry followed by a model entry. Any fetch failure degrades to an
// empty context.
func (s *ChatService) loadContext(ctx context.Context, userID string) []llm.Message {
	readCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	turns, err := s.turns.ListRecent(readCtx, userID, s.historyWindow)
	if err != nil {
		s.logger.Warn("context fetch failed, proceeding without memory",
			"user_id", userID,
			"error", err.Error(),
		)
		return nil
	}

	messages := make([]llm.Message, 0, len(turns)*2)
	for _, turn := range turns {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Text: turn.UserMessage},
			llm.Message{Role: llm.RoleModel, Text: turn.AIResponse},
		)
	}

	return messages
}

// History returns the full transcript for a user, oldest first. A reachable
// store that fails mid-query degrades to an empty transcript; only the
// never-configured store reports repository.ErrUnconfigured to the handler.
func (s *ChatService) History(ctx context.Context, userID string) ([]models.ChatTurn, error) {
	readCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	turns, err := s.turns.ListByUser(readCtx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUnconfigured) {
			return nil, err
		}
		s.logger.Warn("history fetch failed, returning empty transcript",
			"user_id", userID,
			"error", err.Error(),
		)
		return []models.ChatTurn{}, nil
	}

	return turns, nil
}
