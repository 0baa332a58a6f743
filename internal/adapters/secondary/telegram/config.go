package telegram

import "strconv"

type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	UseWebhook     string `envconfig:"USE_WEBHOOK"` // строка, платформа деплоя не умеет bool-переменные
	WebhookURL     string `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"` // проверяется в X-Telegram-Bot-Api-Secret-Token
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT"`
}

// IsWebhookEnabled трактует UseWebhook как bool, мусор означает false
func (c *Config) IsWebhookEnabled() bool {
	enabled, err := strconv.ParseBool(c.UseWebhook)
	return err == nil && enabled
}
