package alerter

// Config настройки чата, куда бот шлёт служебные алерты:
// ошибки планировщика, сбои доставки заказов, обращения в поддержку.
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN"`
	ChatID   int64  `envconfig:"CHAT_ID"`
	// MessageThreadID топик форума, nil = писать в общий чат
	MessageThreadID *int64 `envconfig:"MESSAGE_THREAD_ID"`
}
