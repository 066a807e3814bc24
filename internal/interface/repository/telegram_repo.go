package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"track-wise-service/internal/domain/entity"
	"track-wise-service/internal/domain/repository"
	"track-wise-service/pkg/logger"
)

// TelegramRepository posts notifications to Telegram chats through the Bot API
type TelegramRepository struct {
	logger   logger.Logger
	apiURL   string
	botToken string
	chatIDs  []string
	client   *http.Client
}

// NewTelegramRepository creates a new Telegram notification channel
func NewTelegramRepository(apiURL, botToken string, chatIDs []string, logger logger.Logger) repository.NotificationRepository {
	if apiURL == "" {
		apiURL = "https://api.telegram.org"
	}
	return &TelegramRepository{
		logger:   logger.With("channel", "telegram"),
		apiURL:   strings.TrimRight(apiURL, "/"),
		botToken: botToken,
		chatIDs:  chatIDs,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the channel name
func (r *TelegramRepository) Name() string {
	return "telegram"
}

// Send delivers the notification to every configured chat
func (r *TelegramRepository) Send(ctx context.Context, n *entity.Notification) error {
	text := n.Text()

	var errs []error
	for _, chatID := range r.chatIDs {
		if err := r.sendMessage(ctx, chatID, text); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}
		r.logger.Info("Telegram message sent", "chatId", chatID, "containerNumber", n.Number)
	}
	return errors.Join(errs...)
}

func (r *TelegramRepository) sendMessage(ctx context.Context, chatID, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", r.apiURL, r.botToken)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return nil
}
