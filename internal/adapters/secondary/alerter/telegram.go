package alerter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/adapters/secondary/telegram"
)

// Client шлёт служебные алерты в админский чат или топик форума.
// Переиспользует telegram.Client, отдельного транспорта у алертов нет.
type Client struct {
	tg       *telegram.Client
	chatID   int64
	threadID *int64
	log      *slog.Logger
}

// NewClient возвращает nil при пустом конфиге, алерты тогда выключены
func NewClient(cfg *Config, log *slog.Logger) *Client {
	if cfg == nil {
		return nil
	}
	return &Client{
		tg:       telegram.NewClient(cfg.BotToken, log),
		chatID:   cfg.ChatID,
		threadID: cfg.MessageThreadID,
		log:      log,
	}
}

// SendAlert отправляет алерт одним сообщением
func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.tg == nil {
		return errors.New("alerter is not configured")
	}

	req := telegram.SendMessageRequest{
		ChatID:          c.chatID,
		Text:            message,
		MessageThreadID: c.threadID,
	}
	if _, err := c.tg.SendMessageWithRequest(ctx, req); err != nil {
		c.log.Warn("alert delivery failed",
			"error", err,
			"chat_id", c.chatID,
			"thread_id", c.threadID,
		)
		return fmt.Errorf("send alert: %w", err)
	}

	c.log.Debug("alert sent", "chat_id", c.chatID)
	return nil
}
