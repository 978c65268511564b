package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"Helpdesk/internal/config"
	"Helpdesk/internal/ports"
)

const (
	defaultEndpoint = "https://api.telegram.org"
	// maxMessageRunes is the Bot API limit for sendMessage text.
	maxMessageRunes = 4096
)

var errMisconfigured = errors.New("telegram notifier misconfigured")

// Notifier posts ticket alerts to one Telegram chat through the Bot API.
type Notifier struct {
	endpoint string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func NewNotifier(cfg config.TelegramConfig) *Notifier {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &Notifier{
		endpoint: endpoint,
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish sends message as plain text. Bot API failures carry the
// description Telegram returned.
func (n *Notifier) Publish(ctx context.Context, message string) error {
	if n.botToken == "" || n.chatID == "" {
		return errMisconfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                n.chatID,
		Text:                  truncate(message, maxMessageRunes),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal telegram message: %w", err)
	}

	endpoint := n.endpoint + "/bot" + n.botToken + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the error.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	var out apiResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(raw, &out); err != nil || !out.OK {
		desc := out.Description
		if desc == "" {
			desc = strings.TrimSpace(string(raw))
		}
		return fmt.Errorf("telegram error %s: %s", resp.Status, desc)
	}
	return nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
