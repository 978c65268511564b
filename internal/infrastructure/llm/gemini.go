package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"Helpdesk/internal/config"
	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

const defaultGeminiModel = "gemini-1.5-flash"

// GeminiModel implements ports.ChatModel with Google's Gemini API.
// A client is opened per call because the key may differ between requests.
type GeminiModel struct {
	model string
}

var _ ports.ChatModel = (*GeminiModel)(nil)

// NewGeminiModel builds a model from configuration.
func NewGeminiModel(cfg config.GeminiConfig) *GeminiModel {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiModel{model: model}
}

// Generate replays the history into a chat session and sends the message.
func (g *GeminiModel) Generate(ctx context.Context, prompt ports.ChatPrompt) (string, error) {
	if prompt.APIKey == "" {
		return "", domain.ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(prompt.APIKey))
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	if prompt.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(prompt.MaxOutputTokens))
	}

	session := model.StartChat()
	session.History = geminiHistory(prompt.History)

	resp, err := session.SendMessage(ctx, genai.Text(prompt.Message))
	if err != nil {
		return "", fmt.Errorf("gemini send: %w", err)
	}
	return geminiText(resp)
}

func geminiHistory(turns []domain.ChatTurn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		role := string(domain.ChatRoleUser)
		if turn.Role == domain.ChatRoleModel || turn.Role == "assistant" {
			role = string(domain.ChatRoleModel)
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Parts)},
		})
	}
	return history
}

func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini: empty response")
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		break
	}
	if b.Len() == 0 {
		return "", errors.New("gemini: response has no text")
	}
	return b.String(), nil
}
