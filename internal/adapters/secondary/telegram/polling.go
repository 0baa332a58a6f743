package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

const (
	defaultPollingSeconds = 30
	pollingRetryDelay     = 5 * time.Second
)

// UpdateHandler обрабатывает одно обновление от Telegram
type UpdateHandler func(ctx context.Context, update *domain.Update) error

// Poller получает обновления магазинного бота через long polling.
// Используется в локальной разработке и на стендах без публичного URL;
// в продакшене вместо него работает webhook
type Poller struct {
	client     *Client
	handler    UpdateHandler
	timeoutSec int
	offset     int64 // следующий update_id для getUpdates
	log        *slog.Logger
	httpClient *http.Client // отдельный клиент: таймаут должен переживать long poll
}

func NewPoller(client *Client, config *Config, handler UpdateHandler, log *slog.Logger) *Poller {
	timeoutSec := config.PollingTimeout
	if timeoutSec <= 0 {
		timeoutSec = defaultPollingSeconds
	}

	return &Poller{
		client:     client,
		handler:    handler,
		timeoutSec: timeoutSec,
		log:        log,
		httpClient: &http.Client{
			// запас 10 секунд поверх серверного timeout, чтобы не рвать висящий poll
			Timeout: time.Duration(timeoutSec+10) * time.Second,
		},
	}
}

// DeleteWebhook снимает webhook перед запуском polling, иначе getUpdates вернёт 409
func (p *Poller) DeleteWebhook(ctx context.Context) error {
	return p.client.DeleteWebhook(ctx)
}

// Start крутит long polling до отмены контекста
func (p *Poller) Start(ctx context.Context) error {
	p.log.Info("starting telegram polling", "timeout", p.timeoutSec)

	for {
		if ctx.Err() != nil {
			p.log.Info("polling stopped")
			return ctx.Err()
		}

		updates, err := p.getUpdates(ctx)
		if err != nil {
			p.log.Error("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				p.log.Info("polling stopped")
				return ctx.Err()
			case <-time.After(pollingRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			p.dispatch(ctx, u)
		}
	}
}

// dispatch передаёт обновление в handler и сдвигает offset.
// Ошибка обработчика логируется, очередь обновлений не останавливается
func (p *Poller) dispatch(ctx context.Context, u domain.Update) {
	if u.UpdateID >= p.offset {
		p.offset = u.UpdateID + 1
	}

	if err := p.handler(ctx, &u); err != nil {
		p.log.Error("update processing failed",
			"update_id", u.UpdateID,
			"error", err,
		)
	}
}

// getUpdates один запрос getUpdates с текущим offset
func (p *Poller) getUpdates(ctx context.Context) ([]domain.Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", p.client.baseURL, p.offset, p.timeoutSec)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build getUpdates request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("getUpdates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read getUpdates response: %w", err)
	}

	var apiResp struct {
		APIResponse
		Result []domain.Update `json:"result"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		p.log.Error("undecodable getUpdates response",
			"status_code", resp.StatusCode,
			"body_preview", truncate(string(body), 200),
			"error", err,
		)
		return nil, fmt.Errorf("decode getUpdates response: %w", err)
	}

	if !apiResp.OK {
		// 409: webhook ещё не снят или работает второй экземпляр бота.
		// Не валим цикл, следующая итерация попробует снова
		if apiResp.ErrorCode == http.StatusConflict {
			p.log.Warn("telegram API conflict, another consumer of updates is active",
				"description", apiResp.Description,
			)
			return nil, nil
		}

		p.log.Error("getUpdates rejected",
			"error_code", apiResp.ErrorCode,
			"description", apiResp.Description,
		)
		return nil, &APIError{Code: apiResp.ErrorCode, Description: apiResp.Description}
	}

	return apiResp.Result, nil
}
