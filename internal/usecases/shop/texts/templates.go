package texts

import (
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatWelcome форматирует приветствие нового пользователя
func FormatWelcome(firstName string) string {
	return fmt.Sprintf(Welcome, firstName)
}

// FormatWelcomeBack форматирует приветствие вернувшегося пользователя
func FormatWelcomeBack(firstName string) string {
	return fmt.Sprintf(WelcomeBack, firstName)
}

// FormatUnknownCommand ответ на команду, которой нет в меню
func FormatUnknownCommand(command string) string {
	return fmt.Sprintf(UnknownCommand, command)
}

// FormatProductCard форматирует карточку товара
func FormatProductCard(p *domain.Product) string {
	var card strings.Builder
	card.WriteString(fmt.Sprintf("🛍 %s\n\n", p.Name))
	if p.Description != nil && *p.Description != "" {
		card.WriteString(*p.Description)
		card.WriteString("\n\n")
	}
	card.WriteString(fmt.Sprintf("💰 Цена: %s %s\n", p.Price, p.Currency))
	if p.Stock != nil {
		if *p.Stock > 0 {
			card.WriteString(fmt.Sprintf("📦 Осталось: %d шт.\n", *p.Stock))
		} else {
			card.WriteString("📦 Нет в наличии\n")
		}
	}
	return card.String()
}

// FormatCart форматирует содержимое корзины с итогом
func FormatCart(items []*domain.CartItemView) string {
	var b strings.Builder
	b.WriteString("🛒 Корзина:\n\n")

	total := decimal.Zero
	currency := ""
	for _, item := range items {
		subtotal := item.Subtotal()
		b.WriteString(fmt.Sprintf("• %s × %d = %s %s\n", item.ProductName, item.Quantity, subtotal, item.Currency))
		if !item.Active {
			b.WriteString("  ⚠️ товар больше не продаётся\n")
		}
		total = total.Add(subtotal)
		currency = item.Currency
	}

	b.WriteString(fmt.Sprintf("\nИтого: %s %s", total, currency))
	return b.String()
}

// OrderStatusLabel человекочитаемый статус заказа
func OrderStatusLabel(status domain.OrderStatus) string {
	switch status {
	case domain.OrderStatusAwaitingPayment:
		return "⏳ ожидает оплаты"
	case domain.OrderStatusPaid:
		return "✅ оплачен"
	case domain.OrderStatusExpired:
		return "⌛ истёк"
	case domain.OrderStatusCancelled:
		return "❌ отменён"
	default:
		return string(status)
	}
}

// FormatOrderLine форматирует строку заказа для списка
func FormatOrderLine(o *domain.Order) string {
	return fmt.Sprintf("№%d — %s — %s %s — %s",
		o.ID,
		OrderStatusLabel(o.Status),
		o.TotalAmount,
		o.Currency,
		o.CreatedAt.Format("02.01.2006"),
	)
}

// FormatOrderCreated форматирует подтверждение оформленного заказа
func FormatOrderCreated(o *domain.Order, productName string) string {
	line := fmt.Sprintf("%s × %d", productName, o.Quantity)
	expires := ""
	if o.PaymentExpiresAt != nil {
		expires = o.PaymentExpiresAt.Format("02.01.2006 15:04")
	}
	return fmt.Sprintf(OrderCreated, o.ID, line, o.TotalAmount, o.Currency, expires)
}

// FormatBalance форматирует баланс с последними операциями
func FormatBalance(balance decimal.Decimal, history []*domain.LoyaltyTransaction) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(BalanceHeader, balance))

	if len(history) > 0 {
		b.WriteString("\nПоследние операции:\n")
		for _, tx := range history {
			sign := ""
			if tx.Amount.IsPositive() {
				sign = "+"
			}
			b.WriteString(fmt.Sprintf("%s %s%s — %s\n",
				tx.CreatedAt.Format("02.01"),
				sign,
				tx.Amount,
				loyaltyKindLabel(tx.Kind),
			))
		}
	}

	b.WriteString("\nБаллы начисляются за оплаченные заказы и списываются при оформлении 💎")
	return b.String()
}

func loyaltyKindLabel(kind domain.LoyaltyTxKind) string {
	switch kind {
	case domain.LoyaltyTxAccrual:
		return "кэшбэк за заказ"
	case domain.LoyaltyTxRedemption:
		return "списание на заказ"
	case domain.LoyaltyTxRefund:
		return "возврат баллов"
	case domain.LoyaltyTxReferral:
		return "бонус за приглашение"
	case domain.LoyaltyTxAdjustment:
		return "корректировка"
	default:
		return string(kind)
	}
}

// FormatCouponValid форматирует описание действующего купона
func FormatCouponValid(c *domain.Coupon) string {
	discount := c.DiscountValue.String()
	if c.DiscountType == domain.DiscountTypePercent {
		discount += "%"
	}
	var extra strings.Builder
	if c.MinOrderAmount != nil {
		extra.WriteString(fmt.Sprintf("\nМинимальная сумма заказа: %s", c.MinOrderAmount))
	}
	if c.ValidUntil != nil {
		extra.WriteString(fmt.Sprintf("\nДействует до: %s", c.ValidUntil.Format("02.01.2006")))
	}
	return fmt.Sprintf(CouponValid, c.Code, discount) + extra.String()
}

// FormatReferralInfo форматирует реферальную сводку
func FormatReferralInfo(link string, stats *domain.ReferralLink, reward decimal.Decimal) string {
	return fmt.Sprintf(ReferralInfo, link, stats.Clicks, stats.Signups, stats.PaidOrders, reward)
}

// FormatTicketList форматирует список открытых обращений для админа
func FormatTicketList(tickets []*domain.SupportTicket) string {
	var b strings.Builder
	b.WriteString("🆘 Открытые обращения:\n\n")
	for _, t := range tickets {
		b.WriteString(fmt.Sprintf("• %s — %s (%s)\n  ответить: /reply %s <текст>\n",
			shortID(t.PublicID.String()),
			t.Subject,
			t.CreatedAt.Format("02.01 15:04"),
			t.PublicID,
		))
	}
	return b.String()
}

// shortID первые 8 символов UUID для компактного вывода
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FormatSettings форматирует текущие настройки магазина
func FormatSettings(cfg domain.Settings) string {
	var b strings.Builder
	b.WriteString("⚙️ Настройки магазина:\n\n")
	b.WriteString(fmt.Sprintf("%s = %d\n", domain.SettingInvoiceTimeoutMinutes, cfg.InvoiceTimeoutMinutes))
	b.WriteString(fmt.Sprintf("%s = %s\n", domain.SettingLoyaltyAccrualPercent, cfg.LoyaltyAccrualPercent))
	b.WriteString(fmt.Sprintf("%s = %s\n", domain.SettingLoyaltyMaxRedeemPercent, cfg.LoyaltyMaxRedeemPercent))
	b.WriteString(fmt.Sprintf("%s = %s\n", domain.SettingReferralRewardAmount, cfg.ReferralRewardAmount))
	b.WriteString(fmt.Sprintf("%s = %s\n", domain.SettingShopCurrency, cfg.Currency))
	b.WriteString("\nИзменить: /settings <ключ> <значение>")
	return b.String()
}

// pluralizePoints склоняет слово "балл" под число
func pluralizePoints(n int) string {
	if dd := n % 100; dd >= 11 && dd <= 14 {
		return "баллов"
	}
	switch n % 10 {
	case 1:
		return "балл"
	case 2, 3, 4:
		return "балла"
	default:
		return "баллов"
	}
}

// FormatPointsRedeemed форматирует подтверждение списания баллов
func FormatPointsRedeemed(points decimal.Decimal) string {
	n := int(points.IntPart())
	return fmt.Sprintf("Спишем %s %s 💎", points, pluralizePoints(n))
}

// FormatStockLine форматирует строку товара для админского обзора
func FormatStockLine(p *domain.Product) string {
	state := "🟢"
	if !p.Active {
		state = "🔴"
	}
	stock := "∞"
	if p.Stock != nil {
		stock = fmt.Sprintf("%d", *p.Stock)
	}
	return fmt.Sprintf("%s #%d %s — %s %s — остаток %s", state, p.ID, p.Name, p.Price, p.Currency, stock)
}

// FormatExpiresIn human-readable остаток времени на оплату
func FormatExpiresIn(expiresAt *time.Time, now time.Time) string {
	if expiresAt == nil {
		return ""
	}
	left := expiresAt.Sub(now)
	if left <= 0 {
		return "срок оплаты истёк"
	}
	minutes := int(left.Minutes())
	if minutes < 1 {
		return "меньше минуты на оплату"
	}
	return fmt.Sprintf("на оплату осталось ~%d мин", minutes)
}
