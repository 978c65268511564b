package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// DefaultMaxOutputTokens bounds the length of a generated reply.
const DefaultMaxOutputTokens = 500

// ChatRequest is one turn submitted by a user.
type ChatRequest struct {
	Message string
	History []domain.ChatTurn
	APIKey  string
}

// ChatRecorder observes chat outcomes.
type ChatRecorder interface {
	ObserveChat(outcome string, contextDocs bool)
}

// ChatDeps wires the collaborators of ChatService.
type ChatDeps struct {
	Model           ports.ChatModel
	Documents       ports.DocumentRepository
	Settings        ports.SettingsRepository
	SettingKey      string
	FallbackAPIKey  string
	MaxOutputTokens int
	Recorder        ChatRecorder
	Logger          *slog.Logger
}

// ChatService answers questions with the knowledge base prepended to the message.
type ChatService struct {
	model           ports.ChatModel
	retriever       *Retriever
	settings        ports.SettingsRepository
	settingKey      string
	fallbackAPIKey  string
	maxOutputTokens int
	recorder        ChatRecorder
	logger          *slog.Logger
}

// NewChatService constructs the orchestrator.
func NewChatService(deps ChatDeps) *ChatService {
	if deps.MaxOutputTokens <= 0 {
		deps.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if deps.SettingKey == "" {
		deps.SettingKey = domain.SettingGeminiAPIKey
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ChatService{
		model:           deps.Model,
		retriever:       NewRetriever(deps.Documents),
		settings:        deps.Settings,
		settingKey:      deps.SettingKey,
		fallbackAPIKey:  deps.FallbackAPIKey,
		maxOutputTokens: deps.MaxOutputTokens,
		recorder:        deps.Recorder,
		logger:          deps.Logger,
	}
}

// Reply resolves an API key, augments the message with retrieval context and
// forwards the conversation to the model. There is no retry.
func (s *ChatService) Reply(ctx context.Context, req ChatRequest) (string, error) {
	if strings.TrimSpace(req.Message) == "" {
		return "", fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if s.model == nil {
		return "", fmt.Errorf("chat model is not configured")
	}

	apiKey, err := s.resolveAPIKey(ctx, req.APIKey)
	if err != nil {
		s.observe("no_key", false)
		return "", err
	}

	kb, err := s.retriever.Context(ctx)
	if err != nil {
		s.observe("error", false)
		return "", err
	}

	message := req.Message
	if kb != "" {
		message = kb + "\n\nUser Question: " + req.Message
	}

	text, err := s.model.Generate(ctx, ports.ChatPrompt{
		APIKey:          apiKey,
		History:         req.History,
		Message:         message,
		MaxOutputTokens: s.maxOutputTokens,
	})
	if err != nil {
		s.observe("error", kb != "")
		s.logger.Error("chat generation failed", "error", err)
		return "", fmt.Errorf("generate reply: %w", err)
	}

	s.observe("ok", kb != "")
	s.logger.Debug("chat reply generated", "history", len(req.History), "with_context", kb != "", "chars", len(text))
	return text, nil
}

func (s *ChatService) resolveAPIKey(ctx context.Context, explicit string) (string, error) {
	if key := strings.TrimSpace(explicit); key != "" {
		return key, nil
	}
	if s.settings != nil {
		key, ok, err := s.settings.Get(ctx, s.settingKey)
		if err != nil {
			return "", fmt.Errorf("load api key: %w", err)
		}
		if ok && strings.TrimSpace(key) != "" {
			return key, nil
		}
	}
	if s.fallbackAPIKey != "" {
		return s.fallbackAPIKey, nil
	}
	return "", domain.ErrAPIKeyMissing
}

func (s *ChatService) observe(outcome string, contextDocs bool) {
	if s.recorder != nil {
		s.recorder.ObserveChat(outcome, contextDocs)
	}
}
