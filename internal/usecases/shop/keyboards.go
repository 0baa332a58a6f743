package shop

import (
	"fmt"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/shopspring/decimal"
)

// кнопка с callback data
func button(text, data string) map[string]interface{} {
	return map[string]interface{}{
		"text":          text,
		"callback_data": data,
	}
}

// кнопка-ссылка (страница оплаты)
func urlButton(text, url string) map[string]interface{} {
	return map[string]interface{}{
		"text": text,
		"url":  url,
	}
}

// inlineKeyboard собирает клавиатуру из рядов кнопок
func inlineKeyboard(rows ...[]map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"inline_keyboard": rows,
	}
}

// catalogKeyboard кнопки товаров страницы плюс навигация
func catalogKeyboard(products []*domain.Product, page, totalPages int) map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, len(products)+1)
	for _, p := range products {
		label := fmt.Sprintf("%s — %s %s", p.Name, p.Price, p.Currency)
		rows = append(rows, []map[string]interface{}{
			button(label, fmt.Sprintf("product:%d", p.ID)),
		})
	}

	if totalPages > 1 {
		nav := make([]map[string]interface{}, 0, 3)
		if page > 0 {
			nav = append(nav, button("⬅️", fmt.Sprintf("catalog:%d", page-1)))
		}
		nav = append(nav, button(fmt.Sprintf("%d/%d", page+1, totalPages), "noop"))
		if page < totalPages-1 {
			nav = append(nav, button("➡️", fmt.Sprintf("catalog:%d", page+1)))
		}
		rows = append(rows, nav)
	}

	return inlineKeyboard(rows...)
}

// productKeyboard кнопки карточки товара
func productKeyboard(productID int64) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button("🛒 В корзину", fmt.Sprintf("add:%d", productID)),
			button("⚡ Купить сейчас", fmt.Sprintf("buy:%d", productID)),
		},
		[]map[string]interface{}{
			button("⬅️ Каталог", "catalog:0"),
		},
	)
}

// cartKeyboard степперы количества по позициям плюс действия с корзиной
func cartKeyboard(items []*domain.CartItemView) map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, 2*len(items)+2)
	for _, item := range items {
		rows = append(rows, []map[string]interface{}{
			button(fmt.Sprintf("➖ %s ➕", item.ProductName), "noop"),
		})
		rows = append(rows, []map[string]interface{}{
			button("➖", fmt.Sprintf("dec:%d", item.ProductID)),
			button(fmt.Sprintf("%d", item.Quantity), "noop"),
			button("➕", fmt.Sprintf("inc:%d", item.ProductID)),
			button("❌", fmt.Sprintf("del:%d", item.ProductID)),
			button("💳", fmt.Sprintf("checkout:%d", item.ProductID)),
		})
	}

	rows = append(rows, []map[string]interface{}{
		button("🧹 Очистить", "cart_clear"),
		button("📦 Каталог", "catalog:0"),
	})
	return inlineKeyboard(rows...)
}

// paymentKeyboard ссылка на оплату, проверка оплаты и отмена
func paymentKeyboard(orderID int64, payLink string) map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, 3)
	if payLink != "" {
		rows = append(rows, []map[string]interface{}{
			urlButton("💳 Оплатить", payLink),
		})
	}
	rows = append(rows,
		[]map[string]interface{}{
			button("✅ Я оплатил", fmt.Sprintf("paycheck:%d", orderID)),
		},
		[]map[string]interface{}{
			button("❌ Отменить заказ", fmt.Sprintf("ordercancel:%d", orderID)),
		},
	)
	return inlineKeyboard(rows...)
}

// couponStepKeyboard шаг промокода при оформлении
func couponStepKeyboard() map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button("Пропустить ▶️", "ck_skip_coupon"),
		},
	)
}

// pointsStepKeyboard шаг списания баллов при оформлении
func pointsStepKeyboard(maxPoints decimal.Decimal) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button(fmt.Sprintf("Списать %s 💎", maxPoints), "ck_points_max"),
		},
		[]map[string]interface{}{
			button("Не списывать ▶️", "ck_points_skip"),
		},
	)
}

// reopenKeyboard повторное выставление счёта по истёкшему заказу
func reopenKeyboard(orderID int64) map[string]interface{} {
	return inlineKeyboard(
		[]map[string]interface{}{
			button("🔄 Выставить новый счёт", fmt.Sprintf("reopen:%d", orderID)),
		},
	)
}

// ordersKeyboard кнопки заказов, по которым есть действия
func ordersKeyboard(orders []*domain.Order) map[string]interface{} {
	rows := make([][]map[string]interface{}, 0, len(orders))
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusAwaitingPayment:
			rows = append(rows, []map[string]interface{}{
				button(fmt.Sprintf("💳 Оплатить №%d", o.ID), fmt.Sprintf("order:%d", o.ID)),
			})
		case domain.OrderStatusExpired, domain.OrderStatusCancelled:
			rows = append(rows, []map[string]interface{}{
				button(fmt.Sprintf("🔄 Повторить №%d", o.ID), fmt.Sprintf("reopen:%d", o.ID)),
			})
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return inlineKeyboard(rows...)
}
