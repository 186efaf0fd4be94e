package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/google/uuid"
)

const (
	defaultAIModel   = "glm-4.5"
	aiMaxTokens      = 2048
	aiTemperature    = 0.7
	defaultAITimeout = 30 * time.Second

	aiUnavailableReply = "Sorry, the AI assistant is temporarily unavailable. Please try again later."
	aiFailureReply     = "Sorry, the AI assistant ran into an error. Please try again later."
	aiEmptyReply       = "Sorry, I could not understand your question. Could you rephrase it?"
)

const studyAssistantPrompt = `You are a professional study assistant who helps university students with questions about their studies.
Your answers should be accurate and well organized, give practical advice for the student's problem,
and encourage good study habits. Keep answers concise and focused.
If a question is inappropriate, politely steer the conversation back to studying.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type aiService struct {
	cfg    config.AIConfig
	client *http.Client
	logger *slog.Logger
}

func NewAIService(cfg config.AIConfig, logger *slog.Logger) AIService {
	if cfg.Model == "" {
		cfg.Model = defaultAIModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAITimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &aiService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (s *aiService) available() bool {
	return s.cfg.APIKey != "" && s.cfg.BaseURL != ""
}

// Chat forwards one message to the completion endpoint. Upstream failures
// are reported to the caller as an apology text, never as an error.
func (s *aiService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyChatMessage
	}

	sessionID := stringValue(trimmedPtr(req.SessionID))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	return &ChatResponse{Response: s.reply(ctx, message), SessionID: sessionID}, nil
}

func (s *aiService) reply(ctx context.Context, message string) string {
	if !s.available() {
		return aiUnavailableReply
	}

	content, err := s.complete(ctx, message)
	if err != nil {
		s.logger.Error("AI completion failed", "error", err)
		return aiFailureReply
	}
	if content == "" {
		return aiEmptyReply
	}
	return content
}

func (s *aiService) complete(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: studyAssistantPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   aiMaxTokens,
		Temperature: aiTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func (s *aiService) Health(ctx context.Context) *AIHealthResponse {
	status := "unavailable"
	if s.available() {
		status = "healthy"
	}
	return &AIHealthResponse{
		Status:    status,
		AIService: s.cfg.Model,
		Available: s.available(),
	}
}
