package telegram

import (
	"context"
)

// SetWebhookRequest запрос на установку webhook
type SetWebhookRequest struct {
	URL                string `json:"url"`
	SecretToken        string `json:"secret_token,omitempty"` // приходит обратно в X-Telegram-Bot-Api-Secret-Token
	DropPendingUpdates bool   `json:"drop_pending_updates,omitempty"`
}

// SetWebhook регистрирует webhook URL у Telegram
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secretToken string) error {
	req := SetWebhookRequest{
		URL:         webhookURL,
		SecretToken: secretToken,
	}
	if err := c.callJSON(ctx, "setWebhook", req, nil); err != nil {
		return err
	}

	c.log.Info("webhook registered", "url", webhookURL)
	return nil
}

// DeleteWebhook снимает webhook, накопившиеся апдейты выбрасываются.
// Вызывается перед запуском long polling
func (c *Client) DeleteWebhook(ctx context.Context) error {
	payload := struct {
		DropPendingUpdates bool `json:"drop_pending_updates"`
	}{DropPendingUpdates: true}

	if err := c.callJSON(ctx, "deleteWebhook", payload, nil); err != nil {
		return err
	}

	c.log.Info("webhook deleted")
	return nil
}
