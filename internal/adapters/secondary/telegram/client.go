package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"log/slog"
)

const (
	apiBaseURL     = "https://api.telegram.org/bot"
	requestTimeout = 30 * time.Second
)

// truncate укорачивает строку для логов
func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}

// Client клиент Telegram Bot API. Через него идут все исходящие сообщения
// магазина: каталог, чекаут, уведомления об оплате и ответы поддержки
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *slog.Logger
}

// NewClient создаёт клиент Bot API для указанного бота
func NewClient(token string, log *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    apiBaseURL + token,
		token:      token,
		log:        log,
	}
}

// callJSON выполняет JSON-метод Bot API: сериализует payload, разбирает
// конверт ответа и возвращает ошибку, если API ответил ok=false.
// result может быть nil, если тело result не нужно
func (c *Client) callJSON(ctx context.Context, method string, payload interface{}, result interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(method, resp, result)
}

// callMultipart выполняет метод Bot API с загрузкой файла через
// multipart/form-data: fields уходят текстовыми полями, data файлом
func (c *Client) callMultipart(ctx context.Context, method string, fields map[string]string, fileField, filename string, data []byte, result interface{}) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write %s field: %w", name, err)
		}
	}
	part, err := writer.CreateFormFile(fileField, filename)
	if err != nil {
		return fmt.Errorf("create %s form file: %w", fileField, err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write %s data: %w", fileField, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method, &buf)
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(method, resp, result)
}

// decodeEnvelope разбирает общий конверт ответа Bot API и декодирует result
func (c *Client) decodeEnvelope(method string, resp *http.Response, result interface{}) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	var envelope struct {
		APIResponse
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.log.Error("undecodable telegram response",
			"method", method,
			"status_code", resp.StatusCode,
			"body_preview", truncate(string(body), 200),
			"error", err,
		)
		return fmt.Errorf("decode %s response: %w", method, err)
	}

	if !envelope.OK {
		c.log.Error("telegram API returned error",
			"method", method,
			"error_code", envelope.ErrorCode,
			"description", envelope.Description,
		)
		return &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}

	if result != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", method, err)
		}
	}
	return nil
}

// ChatInfo чат в ответах Telegram API
type ChatInfo struct {
	ID int64 `json:"id"`
}

// SendMessageRequest тело запроса sendMessage
type SendMessageRequest struct {
	ChatID          int64                  `json:"chat_id"`
	Text            string                 `json:"text"`
	ParseMode       string                 `json:"parse_mode,omitempty"` // "HTML", "Markdown", "MarkdownV2"
	MessageThreadID *int64                 `json:"message_thread_id,omitempty"`
	ReplyMarkup     map[string]interface{} `json:"reply_markup,omitempty"`
}

// SendMessageResult то, что Bot API возвращает из sendMessage
type SendMessageResult struct {
	MessageID int64    `json:"message_id"`
	Chat      ChatInfo `json:"chat"`
}

// SendMessage отправляет текстовое сообщение покупателю
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.SendMessageWithRequest(ctx, SendMessageRequest{ChatID: chatID, Text: text})
	return err
}

// SendMessageWithKeyboard отправляет сообщение с inline-клавиатурой
func (c *Client) SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard map[string]interface{}) error {
	_, err := c.SendMessageWithRequest(ctx, SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: keyboard,
	})
	return err
}

// SendMessageWithRequest отправляет сообщение с полным контролем параметров,
// возвращает message_id отправленного сообщения
func (c *Client) SendMessageWithRequest(ctx context.Context, req SendMessageRequest) (int64, error) {
	var result SendMessageResult
	if err := c.callJSON(ctx, "sendMessage", req, &result); err != nil {
		return 0, err
	}

	c.log.Debug("message sent",
		"chat_id", req.ChatID,
		"message_id", result.MessageID,
	)
	return result.MessageID, nil
}

// BotInfo данные бота из getMe
type BotInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// GetMe проверяет токен и возвращает username бота
func (c *Client) GetMe(ctx context.Context) (*BotInfo, error) {
	var info BotInfo
	if err := c.callJSON(ctx, "getMe", struct{}{}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// BotCommand команда в меню бота
type BotCommand struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SetMyCommands публикует список команд в меню бота
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	payload := struct {
		Commands []BotCommand `json:"commands"`
	}{Commands: commands}

	if err := c.callJSON(ctx, "setMyCommands", payload, nil); err != nil {
		return err
	}

	c.log.Info("bot commands registered", "commands_count", len(commands))
	return nil
}
