package shop

import (
	"context"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// HandleCart обрабатывает команду /cart
func (s *Service) HandleCart(ctx context.Context, user *domain.User) error {
	return s.showCart(ctx, user, nil)
}

// showCart показывает корзину; при вызове из колбэка переписывает сообщение
func (s *Service) showCart(ctx context.Context, user *domain.User, message *domain.Message) error {
	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	items, err := s.CartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	if len(items) == 0 {
		if message != nil && message.Text != nil {
			return s.editMessage(ctx, user.TelegramChatID, message.MessageID, texts.CartEmpty, nil)
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.CartEmpty)
	}

	text := texts.FormatCart(items)
	keyboard := cartKeyboard(items)
	if message != nil && message.Text != nil {
		return s.editMessage(ctx, user.TelegramChatID, message.MessageID, text, keyboard)
	}
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, text, keyboard)
}

// addToCart добавляет товар в корзину; возвращает текст для всплывающего
// уведомления на кнопке
func (s *Service) addToCart(ctx context.Context, user *domain.User, productID int64) string {
	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil || !product.Active {
		return texts.ProductInactive
	}
	if !product.HasStock(1) {
		return texts.ProductOutOfStock
	}

	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return texts.SomethingWentWrong
	}
	if err := s.CartRepo.AddItem(ctx, cart.ID, productID, 1); err != nil {
		return texts.SomethingWentWrong
	}

	return texts.CartItemAdded
}

// changeCartQuantity меняет количество позиции на delta; при нуле позиция удаляется
func (s *Service) changeCartQuantity(ctx context.Context, user *domain.User, productID int64, delta int, message *domain.Message) error {
	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	items, err := s.CartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	for _, item := range items {
		if item.ProductID != productID {
			continue
		}

		qty := item.Quantity + delta
		if qty <= 0 {
			if err := s.CartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
				return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
			}
		} else {
			if delta > 0 {
				// не даём заказать больше, чем осталось на складе
				product, err := s.ProductRepo.GetByID(ctx, productID)
				if err != nil || !product.HasStock(qty) {
					return s.showCart(ctx, user, message)
				}
			}
			if err := s.CartRepo.SetItemQuantity(ctx, cart.ID, productID, qty); err != nil {
				return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
			}
		}
		break
	}

	return s.showCart(ctx, user, message)
}

// removeFromCart убирает позицию целиком
func (s *Service) removeFromCart(ctx context.Context, user *domain.User, productID int64, message *domain.Message) error {
	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if err := s.CartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	return s.showCart(ctx, user, message)
}

// clearCart очищает корзину
func (s *Service) clearCart(ctx context.Context, user *domain.User, message *domain.Message) error {
	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if err := s.CartRepo.Clear(ctx, cart.ID); err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	if message != nil && message.Text != nil {
		return s.editMessage(ctx, user.TelegramChatID, message.MessageID, texts.CartCleared, nil)
	}
	return s.sendMessage(ctx, user.TelegramChatID, texts.CartCleared)
}
