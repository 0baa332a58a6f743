package cache

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutDraft состояние оформления заказа до создания Order
type CheckoutDraft struct {
	ProductID    int64
	Quantity     int
	CouponCode   *string
	RedeemPoints decimal.Decimal // сколько баллов пользователь хочет списать
	// очередь вопросов товаров и собранные ответы
	PendingQuestions []DraftQuestion
	Answers          []DraftAnswer
}

// DraftQuestion вопрос товара, ожидающий ответа покупателя
type DraftQuestion struct {
	ProductID int64
	Question  string
}

// DraftAnswer собранный ответ покупателя
type DraftAnswer struct {
	ProductID int64
	Question  string
	Answer    string
}

// IDraftCache интерфейс для черновиков оформления по пользователю
type IDraftCache interface {
	Get(userID uuid.UUID) (*CheckoutDraft, bool)
	Set(userID uuid.UUID, draft *CheckoutDraft)
	Delete(userID uuid.UUID)
}
