package cryptopay

type Config struct {
	BaseURL     string `envconfig:"BASE_URL"`
	ApiVersion  string `envconfig:"VERSION" default:"v1"`
	MerchantKey string `envconfig:"MERCHANT_KEY"`
	CallbackURL string `envconfig:"CALLBACK_URL"` // публичный URL для колбэков провайдера, можно не задавать
	SkipSSL     string `envconfig:"SKIP_SSL"`     // Railway требует строки вместо bool
}

func (c *Config) ShouldSkipSSL() bool {
	return c.SkipSSL == "true" || c.SkipSSL == "1" || c.SkipSSL == "True"
}
