package telegram

import "fmt"

// APIResponse общий конверт ответа Bot API; Result декодируют
// типизированные обёртки конкретных методов
type APIResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// APIError ответ Bot API с ok=false. Код и описание доступны через errors.As,
// например чтобы отличить "message is not modified" от настоящей ошибки
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error: %s (code: %d)", e.Description, e.Code)
}
