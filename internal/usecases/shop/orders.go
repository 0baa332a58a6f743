package shop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// сколько заказов показываем в /orders
const ordersPageLimit = 10

// HandleOrders обрабатывает команду /orders
func (s *Service) HandleOrders(ctx context.Context, user *domain.User) error {
	orders, err := s.OrderService.ListUserOrders(ctx, user.ID, ordersPageLimit)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if len(orders) == 0 {
		return s.sendMessage(ctx, user.TelegramChatID, texts.OrdersEmpty)
	}

	var b strings.Builder
	b.WriteString(texts.OrdersHeader)
	for _, o := range orders {
		b.WriteString("• ")
		b.WriteString(texts.FormatOrderLine(o))
		b.WriteString("\n")
	}

	keyboard := ordersKeyboard(orders)
	if keyboard == nil {
		return s.sendMessage(ctx, user.TelegramChatID, b.String())
	}
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, b.String(), keyboard)
}

// ownOrder достаёт заказ и проверяет, что он принадлежит пользователю
func (s *Service) ownOrder(ctx context.Context, user *domain.User, orderID int64) (*domain.Order, error) {
	o, err := s.OrderService.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != user.ID {
		return nil, fmt.Errorf("order %d does not belong to user %s", orderID, user.ID)
	}
	return o, nil
}

// showOrder карточка заказа; для неоплаченного без счёта счёт выставляется заново
func (s *Service) showOrder(ctx context.Context, user *domain.User, orderID int64) error {
	o, err := s.ownOrder(ctx, user, orderID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	productName := fmt.Sprintf("товар #%d", o.ProductID)
	if product, err := s.ProductRepo.GetByID(ctx, o.ProductID); err == nil {
		productName = product.Name
	}

	switch o.Status {
	case domain.OrderStatusAwaitingPayment:
		if o.TrackID == nil {
			o, err = s.PaymentService.CreateInvoiceForOrder(ctx, o)
			if err != nil {
				return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf(texts.InvoiceFailed, orderID))
			}
		}

		payLink := ""
		if o.PayLink != nil {
			payLink = *o.PayLink
		}
		card := texts.FormatOrderCreated(o, productName)
		if hint := texts.FormatExpiresIn(o.PaymentExpiresAt, time.Now()); hint != "" {
			card += "\n" + hint
		}
		return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, card, paymentKeyboard(o.ID, payLink))

	case domain.OrderStatusPaid:
		return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf("Заказ №%d — %s × %d ✅ оплачен", o.ID, productName, o.Quantity))

	default:
		card := fmt.Sprintf("Заказ №%d — %s × %d\n%s", o.ID, productName, o.Quantity, texts.OrderStatusLabel(o.Status))
		return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, card, reopenKeyboard(o.ID))
	}
}

// checkPayment кнопка «Я оплатил»: сверяет статус счёта у провайдера
func (s *Service) checkPayment(ctx context.Context, user *domain.User, callbackID string, orderID int64) error {
	o, err := s.ownOrder(ctx, user, orderID)
	if err != nil {
		s.answerCallback(ctx, callbackID, texts.SomethingWentWrong, true)
		return nil
	}

	switch o.Status {
	case domain.OrderStatusPaid:
		s.answerCallback(ctx, callbackID, texts.OrderAlreadyPaid, false)
		return nil
	case domain.OrderStatusExpired, domain.OrderStatusCancelled:
		s.answerCallback(ctx, callbackID, "", false)
		return s.sendMessageWithKeyboard(ctx, user.TelegramChatID,
			fmt.Sprintf(texts.OrderPaymentExpired, o.ID), reopenKeyboard(o.ID))
	}

	if _, err := s.PaymentService.RefreshOrderStatus(ctx, o); err != nil {
		s.answerCallback(ctx, callbackID, texts.SomethingWentWrong, true)
		return nil
	}

	o, err = s.OrderService.GetByID(ctx, orderID)
	if err != nil {
		s.answerCallback(ctx, callbackID, texts.SomethingWentWrong, true)
		return nil
	}

	switch o.Status {
	case domain.OrderStatusPaid:
		// сообщение с выдачей уже отправлено выдачей заказа
		s.answerCallback(ctx, callbackID, texts.OrderPaid, false)
	case domain.OrderStatusExpired:
		s.answerCallback(ctx, callbackID, "", false)
		return s.sendMessageWithKeyboard(ctx, user.TelegramChatID,
			fmt.Sprintf(texts.OrderPaymentExpired, o.ID), reopenKeyboard(o.ID))
	default:
		s.answerCallback(ctx, callbackID, texts.OrderPaymentPending, true)
	}
	return nil
}

// cancelOrderByUser кнопка отмены; пользователю разрешено отменять только
// неоплаченные заказы
func (s *Service) cancelOrderByUser(ctx context.Context, user *domain.User, orderID int64) error {
	o, err := s.ownOrder(ctx, user, orderID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if o.Status != domain.OrderStatusAwaitingPayment {
		return s.sendMessage(ctx, user.TelegramChatID, texts.OrderCancelNotAllowed)
	}

	cancelled, err := s.OrderService.CancelOrder(ctx, o.ID, "отменён покупателем")
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if !cancelled {
		return s.sendMessage(ctx, user.TelegramChatID, texts.OrderCancelNotAllowed)
	}
	return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf(texts.OrderCancelledByUser, o.ID))
}

// reopenOrder повторное выставление счёта по истёкшему или отменённому заказу
func (s *Service) reopenOrder(ctx context.Context, user *domain.User, orderID int64) error {
	o, err := s.ownOrder(ctx, user, orderID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	o, err = s.OrderService.ReopenForPayment(ctx, o.ID)
	if err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, texts.ReopenFailed)
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	return s.showOrder(ctx, user, o.ID)
}
