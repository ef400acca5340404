package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Typed upstream failures. Handlers map these to sanitized detail strings;
// the raw provider error stays in server-side logs only.
var (
	ErrDisabled      = errors.New("gemini client is not configured")
	ErrRateLimited   = errors.New("gemini rate limit exceeded")
	ErrModelNotFound = errors.New("gemini model not found")
)

// Message is one role-tagged entry of conversational context.
type Message struct {
	Role string // "user" or "model"
	Text string
}

const (
	RoleUser  = "user"
	RoleModel = "model"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient builds a client for the hosted Gemini API using an API key.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply submits the user message with the prior turns as conversation
// context and the built instruction as the system prompt.
func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	instruction string,
	history []Message,
	userMessage string,
) (string, error) {
	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(userMessage, genai.RoleUser))

	temp := float32(0.7)
	outputTokens := int32(4096)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instruction, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", classifyError(err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}

// classifyError folds provider errors into the typed sentinels where the
// cause is recognizable, wrapping so the original detail survives for logs.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case 404:
			return fmt.Errorf("%w: %v", ErrModelNotFound, err)
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	case strings.Contains(msg, "NOT_FOUND"):
		return fmt.Errorf("%w: %v", ErrModelNotFound, err)
	}

	return fmt.Errorf("gemini generate content: %w", err)
}

// Disabled is the unconfigured model variant wired when GOOGLE_API_KEY is
// absent, so call sites handle the missing capability through the same
// interface instead of checking a nil client.
type Disabled struct{}

func (Disabled) GenerateReply(context.Context, string, []Message, string) (string, error) {
	return "", ErrDisabled
}
