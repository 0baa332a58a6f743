package shop

import (
	"context"
	"path"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// HandleCatalog обрабатывает команду /catalog, показывает первую страницу
func (s *Service) HandleCatalog(ctx context.Context, user *domain.User) error {
	text, keyboard, err := s.renderCatalogPage(ctx, 0)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if keyboard == nil {
		return s.sendMessage(ctx, user.TelegramChatID, text)
	}
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, text, keyboard)
}

// showCatalogPage листает каталог, переписывая сообщение с кнопками
func (s *Service) showCatalogPage(ctx context.Context, user *domain.User, page int, message *domain.Message) error {
	text, keyboard, err := s.renderCatalogPage(ctx, page)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	// карточка товара приходит фотографией, её текст не переписать
	if message == nil || message.Text == nil {
		if keyboard == nil {
			return s.sendMessage(ctx, user.TelegramChatID, text)
		}
		return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, text, keyboard)
	}
	return s.editMessage(ctx, user.TelegramChatID, message.MessageID, text, keyboard)
}

// renderCatalogPage собирает текст и клавиатуру страницы каталога
func (s *Service) renderCatalogPage(ctx context.Context, page int) (string, map[string]interface{}, error) {
	if page < 0 {
		page = 0
	}

	total, err := s.ProductRepo.CountActive(ctx)
	if err != nil {
		return "", nil, err
	}
	if total == 0 {
		return texts.CatalogEmpty, nil, nil
	}

	totalPages := (total + catalogPageSize - 1) / catalogPageSize
	if page >= totalPages {
		page = totalPages - 1
	}

	products, err := s.ProductRepo.ListActive(ctx, catalogPageSize, page*catalogPageSize)
	if err != nil {
		return "", nil, err
	}

	return texts.CatalogHeader, catalogKeyboard(products, page, totalPages), nil
}

// showProduct показывает карточку товара; фото уходит по кэшированному
// file_id, при первом показе байты загружаются из S3
func (s *Service) showProduct(ctx context.Context, user *domain.User, productID int64) error {
	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.ProductInactive)
	}
	if !product.Active {
		return s.sendMessage(ctx, user.TelegramChatID, texts.ProductInactive)
	}

	card := texts.FormatProductCard(product)
	keyboard := productKeyboard(product.ID)

	if product.ImageFileID != nil {
		if err := s.TelegramClient.SendPhotoByFileID(ctx, user.TelegramChatID, *product.ImageFileID, card, keyboard); err == nil {
			return nil
		}
		// file_id мог протухнуть, падаем на повторную загрузку
		s.Log.Warn("failed to send product photo by file_id",
			"product_id", product.ID,
			"file_id", *product.ImageFileID,
		)
	}

	if product.ImageKey != nil && s.S3Client != nil {
		data, err := s.S3Client.GetFile(ctx, *product.ImageKey)
		if err != nil {
			s.Log.Error("failed to load product image from storage",
				"error", err,
				"product_id", product.ID,
				"image_key", *product.ImageKey,
			)
			return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, card, keyboard)
		}

		fileID, err := s.TelegramClient.UploadPhoto(ctx, user.TelegramChatID, path.Base(*product.ImageKey), data, card, keyboard)
		if err != nil {
			s.Log.Error("failed to upload product photo",
				"error", err,
				"product_id", product.ID,
			)
			return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, card, keyboard)
		}

		if err := s.ProductRepo.SetImageFileID(ctx, product.ID, fileID); err != nil {
			s.Log.Warn("failed to cache product image file_id",
				"error", err,
				"product_id", product.ID,
			)
		}
		return nil
	}

	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, card, keyboard)
}
