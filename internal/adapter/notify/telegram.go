package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Messenger posts a text message to the staff channel.
type Messenger interface {
	SendMessage(ctx context.Context, text string) error
}

// TelegramClient implements Messenger via the bot HTTP API.
type TelegramClient struct {
	token      string
	chatID     string
	httpClient *http.Client
}

// NewTelegramClient constructs the bot client.
func NewTelegramClient(token, chatID string) *TelegramClient {
	return &TelegramClient{
		token:  token,
		chatID: chatID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendMessage posts text to the configured chat.
func (c *TelegramClient) SendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", c.token)

	form := url.Values{}
	form.Set("chat_id", c.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Description string `json:"description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return fmt.Errorf("telegram api: %s %s", resp.Status, body.Description)
	}
	return nil
}
