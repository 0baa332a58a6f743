package order

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
)

const (
	// Bot API не принимает документы больше 50 МБ, такие файлы выдаются ссылкой
	maxDocumentBytes = 50 << 20
	contentLinkTTL   = 24 * time.Hour
)

// EnsureFulfillment выдаёт оплаченный заказ покупателю ровно один раз.
// Отметка о выдаче ставится guard-ом в БД (status = paid AND fulfilled_at IS NULL),
// поэтому повторный вызов возвращает false без повторной доставки
func (s *Service) EnsureFulfillment(ctx context.Context, o *domain.Order) (bool, error) {
	marked, err := s.OrderRepo.MarkFulfilled(ctx, o.ID)
	if err != nil {
		return false, err
	}
	if !marked {
		return false, nil
	}

	product, err := s.ProductRepo.GetByID(ctx, o.ProductID)
	if err != nil {
		s.alertDeliveryFailure(ctx, o, err)
		return true, fmt.Errorf("failed to get product for delivery: %w", err)
	}

	buyer, err := s.UserRepo.GetByID(ctx, o.UserID)
	if err != nil {
		s.alertDeliveryFailure(ctx, o, err)
		return true, fmt.Errorf("failed to get buyer for delivery: %w", err)
	}

	if err := s.deliver(ctx, buyer.TelegramChatID, o, product); err != nil {
		s.alertDeliveryFailure(ctx, o, err)
		return true, err
	}

	s.appendTimeline(ctx, o.ID, domain.OrderStatusPaid, "товар выдан")
	s.Log.Info("order fulfilled",
		"order_id", o.ID,
		"public_id", o.PublicID,
		"product_id", product.ID,
	)
	return true, nil
}

// deliver отправляет покупателю купленный товар: файл из S3, если у товара
// задан content_key, иначе текстовое подтверждение
func (s *Service) deliver(ctx context.Context, chatID int64, o *domain.Order, product *domain.Product) error {
	confirmation := fmt.Sprintf("✅ Оплата получена!\n\nВаш заказ №%d — «%s»", o.ID, product.Name)

	if product.ContentKey != nil && *product.ContentKey != "" {
		return s.deliverContent(ctx, chatID, product, confirmation)
	}

	message := confirmation + "\n\nМы свяжемся с вами для выдачи в ближайшее время 🙌"
	if err := s.TelegramClient.SendMessage(ctx, chatID, message); err != nil {
		return fmt.Errorf("failed to send delivery confirmation: %w", err)
	}
	return nil
}

// deliverContent выдаёт файл цифрового товара документом, а если файл
// не проходит по лимиту Bot API, то временной ссылкой на скачивание
func (s *Service) deliverContent(ctx context.Context, chatID int64, product *domain.Product, confirmation string) error {
	if s.S3Client == nil {
		return fmt.Errorf("product %d has content but storage is not configured", product.ID)
	}

	size, err := s.S3Client.FileSize(ctx, *product.ContentKey)
	if err != nil {
		return fmt.Errorf("failed to stat product content: %w", err)
	}

	if size > maxDocumentBytes {
		link, err := s.S3Client.GetPresignedURL(ctx, *product.ContentKey, contentLinkTTL)
		if err != nil {
			return fmt.Errorf("failed to presign product content: %w", err)
		}
		message := confirmation + "\n\nФайл больше лимита Telegram, скачайте по ссылке (действует 24 часа):\n" + link
		if err := s.TelegramClient.SendMessage(ctx, chatID, message); err != nil {
			return fmt.Errorf("failed to send content link: %w", err)
		}
		return nil
	}

	content, err := s.S3Client.GetFile(ctx, *product.ContentKey)
	if err != nil {
		return fmt.Errorf("failed to fetch product content: %w", err)
	}
	if err := s.TelegramClient.SendDocument(ctx, chatID, path.Base(*product.ContentKey), content, confirmation); err != nil {
		return fmt.Errorf("failed to send product content: %w", err)
	}
	return nil
}

// alertDeliveryFailure сообщает админам, что оплаченный заказ не удалось выдать
func (s *Service) alertDeliveryFailure(ctx context.Context, o *domain.Order, err error) {
	s.Log.Error("order delivery failed",
		"order_id", o.ID,
		"public_id", o.PublicID,
		"error", err,
	)

	if s.AlerterService != nil {
		msg := fmt.Sprintf("🚨 Заказ оплачен, но не выдан\n\nЗаказ: %s\nТовар: #%d\nОшибка: %s\n\nВыдайте товар вручную и проверьте хранилище",
			o.PublicID, o.ProductID, err.Error())
		_ = s.AlerterService.SendAlert(ctx, msg)
	}
}
