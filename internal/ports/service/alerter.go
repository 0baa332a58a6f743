package service

import (
	"context"
)

// IAlerterService доставка алертов в служебный чат: падения джоб,
// невыданные оплаченные заказы, ошибки выставления счетов
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
