package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"Helpdesk/internal/config"
	"Helpdesk/internal/domain"
	"Helpdesk/internal/ports"
)

// ChatGPTModel implements ports.ChatModel backed by OpenAI-compatible APIs.
type ChatGPTModel struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.ChatModel = (*ChatGPTModel)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewChatGPTModel builds a client from configuration.
func NewChatGPTModel(cfg config.ChatGPTConfig) *ChatGPTModel {
	return &ChatGPTModel{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Generate posts the conversation as chat completion messages.
// The per-request key wins over the configured one.
func (c *ChatGPTModel) Generate(ctx context.Context, prompt ports.ChatPrompt) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chatgpt client is nil")
	}
	apiKey := prompt.APIKey
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return "", domain.ErrAPIKeyMissing
	}
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chatgpt client misconfigured")
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:     c.model,
		Messages:  c.messages(prompt),
		MaxTokens: prompt.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chatgpt payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chatgpt error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chatgpt response: %w", err)
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chatgpt response has no text")
	}
	return out.Choices[0].Message.Content, nil
}

func (c *ChatGPTModel) messages(prompt ports.ChatPrompt) []chatMessage {
	msgs := make([]chatMessage, 0, len(prompt.History)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: safePrompt(c.systemPrompt)})
	for _, turn := range prompt.History {
		role := "user"
		if turn.Role == domain.ChatRoleModel || turn.Role == "assistant" {
			role = "assistant"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: turn.Parts})
	}
	return append(msgs, chatMessage{Role: "user", Content: prompt.Message})
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a helpful helpdesk assistant."
	}
	return prompt
}
