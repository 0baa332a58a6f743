package shop

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	adminStockLimit  = 50
	adminOrdersLimit = 15
	adminTicketLimit = 20
	adminFilesLimit  = 50
)

// handleAdminCommand диспетчер админских команд; доступ проверен выше
func (s *Service) handleAdminCommand(ctx context.Context, user *domain.User, command, args string) error {
	switch command {
	case "admin":
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminHelp)
	case "stock":
		return s.handleAdminStock(ctx, user, args)
	case "files":
		return s.handleAdminFiles(ctx, user, args)
	case "orders_admin":
		return s.handleAdminOrders(ctx, user)
	case "coupon_new":
		return s.handleAdminCouponNew(ctx, user, args)
	case "coupons":
		return s.handleAdminCouponList(ctx, user)
	case "coupon_off":
		return s.handleAdminCouponOff(ctx, user, args)
	case "points":
		return s.handleAdminPoints(ctx, user, args)
	case "tickets":
		return s.handleAdminTickets(ctx, user, args)
	case "reply":
		return s.handleAdminReply(ctx, user, args)
	case "broadcast":
		return s.handleBroadcast(ctx, user, args)
	case "settings":
		return s.handleAdminSettings(ctx, user, args)
	default:
		return s.sendMessage(ctx, user.TelegramChatID, texts.FormatUnknownCommand(command))
	}
}

// handleAdminStock обзор товаров и управление остатками:
// /stock выводит список, /stock <id> on|off переключает, /stock <id> <кол-во> меняет остаток.
func (s *Service) handleAdminStock(ctx context.Context, user *domain.User, args string) error {
	fields := strings.Fields(args)

	if len(fields) == 0 {
		products, err := s.ProductRepo.ListAll(ctx, adminStockLimit, 0)
		if err != nil {
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
		if len(products) == 0 {
			return s.sendMessage(ctx, user.TelegramChatID, "Товаров нет 📭")
		}

		var b strings.Builder
		b.WriteString("📦 Товары:\n\n")
		for _, p := range products {
			b.WriteString(texts.FormatStockLine(p))
			b.WriteString("\n")
		}
		return s.sendMessage(ctx, user.TelegramChatID, b.String())
	}

	if len(fields) != 2 {
		return s.sendMessage(ctx, user.TelegramChatID, "Использование: /stock [<id> on|off|<кол-во>]")
	}

	productID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, "Первым аргументом нужен id товара")
	}

	switch fields[1] {
	case "on", "off":
		if err := s.ProductRepo.SetActive(ctx, productID, fields[1] == "on"); err != nil {
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
	default:
		qty, err := strconv.Atoi(fields[1])
		if err != nil || qty < 0 {
			return s.sendMessage(ctx, user.TelegramChatID, "Количество должно быть неотрицательным числом")
		}
		if err := s.ProductRepo.SetStock(ctx, productID, &qty); err != nil {
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
	}

	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	return s.sendMessage(ctx, user.TelegramChatID, "Готово ✅\n"+texts.FormatStockLine(product))
}

// handleAdminFiles ключи объектов в хранилище, чтобы было что вписать
// в image_key/content_key товара: /files [префикс]
func (s *Service) handleAdminFiles(ctx context.Context, user *domain.User, args string) error {
	if s.S3Client == nil {
		return s.sendMessage(ctx, user.TelegramChatID, "Файловое хранилище не настроено 🤷")
	}

	prefix := strings.TrimSpace(args)
	keys, err := s.S3Client.ListFiles(ctx, prefix)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if len(keys) == 0 {
		return s.sendMessage(ctx, user.TelegramChatID, "Файлов с таким префиксом нет 📭")
	}

	truncated := len(keys) > adminFilesLimit
	if truncated {
		keys = keys[:adminFilesLimit]
	}

	var b strings.Builder
	b.WriteString("🗂 Файлы в хранилище:\n\n")
	for _, key := range keys {
		b.WriteString("• ")
		b.WriteString(key)
		b.WriteString("\n")
	}
	if truncated {
		b.WriteString(fmt.Sprintf("\nПоказаны первые %d, уточните префикс", adminFilesLimit))
	}
	return s.sendMessage(ctx, user.TelegramChatID, b.String())
}

// handleAdminOrders последние заказы магазина
func (s *Service) handleAdminOrders(ctx context.Context, user *domain.User) error {
	orders, err := s.OrderService.ListRecentOrders(ctx, adminOrdersLimit)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if len(orders) == 0 {
		return s.sendMessage(ctx, user.TelegramChatID, "Заказов ещё не было 📭")
	}

	var b strings.Builder
	b.WriteString("📋 Последние заказы:\n\n")
	for _, o := range orders {
		b.WriteString("• ")
		b.WriteString(texts.FormatOrderLine(o))
		b.WriteString("\n")
	}
	return s.sendMessage(ctx, user.TelegramChatID, b.String())
}

// handleAdminCouponNew создание купона:
// /coupon_new <код> <percent|fixed> <размер> [макс. применений]
func (s *Service) handleAdminCouponNew(ctx context.Context, user *domain.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) < 3 || len(fields) > 4 {
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminCouponUsage)
	}

	discountType := domain.DiscountType(fields[1])
	value, err := decimal.NewFromString(fields[2])
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminCouponUsage)
	}

	coupon := &domain.Coupon{
		Code:          fields[0],
		DiscountType:  discountType,
		DiscountValue: value,
		PerUserLimit:  1,
		Active:        true,
	}
	if len(fields) == 4 {
		max, err := strconv.Atoi(fields[3])
		if err != nil || max <= 0 {
			return s.sendMessage(ctx, user.TelegramChatID, texts.AdminCouponUsage)
		}
		coupon.MaxRedemptions = &max
	}

	if err := s.CouponService.CreateCoupon(ctx, coupon); err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, "❌ "+err.Error())
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf("Купон %s создан ✅", coupon.Code))
}

// handleAdminCouponList список купонов
func (s *Service) handleAdminCouponList(ctx context.Context, user *domain.User) error {
	coupons, err := s.CouponService.ListCoupons(ctx, adminStockLimit)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if len(coupons) == 0 {
		return s.sendMessage(ctx, user.TelegramChatID, "Купонов нет 📭")
	}

	var b strings.Builder
	b.WriteString("🎟 Купоны:\n\n")
	for _, c := range coupons {
		state := "🟢"
		if !c.Active {
			state = "🔴"
		}
		limit := "∞"
		if c.MaxRedemptions != nil {
			limit = strconv.Itoa(*c.MaxRedemptions)
		}
		b.WriteString(fmt.Sprintf("%s %s — %s %s — лимит %s\n", state, c.Code, c.DiscountType, c.DiscountValue, limit))
	}
	return s.sendMessage(ctx, user.TelegramChatID, b.String())
}

// handleAdminCouponOff деактивация купона
func (s *Service) handleAdminCouponOff(ctx context.Context, user *domain.User, args string) error {
	code := strings.TrimSpace(args)
	if code == "" {
		return s.sendMessage(ctx, user.TelegramChatID, "Использование: /coupon_off <код>")
	}

	if err := s.CouponService.DeactivateCoupon(ctx, code); err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, "❌ "+err.Error())
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf("Купон %s выключен ✅", strings.ToUpper(code)))
}

// handleAdminPoints ручная корректировка баллов:
// /points <telegram id> <дельта> [заметка]
func (s *Service) handleAdminPoints(ctx context.Context, user *domain.User, args string) error {
	fields := strings.SplitN(strings.TrimSpace(args), " ", 3)
	if len(fields) < 2 {
		return s.sendMessage(ctx, user.TelegramChatID, "Использование: /points <telegram id> <дельта> [заметка]")
	}

	telegramID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, "Первым аргументом нужен telegram id пользователя")
	}
	delta, err := decimal.NewFromString(fields[1])
	if err != nil || delta.IsZero() {
		return s.sendMessage(ctx, user.TelegramChatID, "Дельта должна быть ненулевым числом")
	}
	note := "adjusted by admin"
	if len(fields) == 3 {
		note = fields[2]
	}

	target, err := s.UserRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, "Пользователь не найден 🤷")
	}

	applied, err := s.LoyaltyService.AdminAdjust(ctx, target.ID, delta, note)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if !applied {
		return s.sendMessage(ctx, user.TelegramChatID, "Списание больше баланса, операция отклонена ❌")
	}
	return s.sendMessage(ctx, user.TelegramChatID, "Баланс обновлён ✅")
}

// handleAdminTickets открытые обращения; /tickets close <id> закрывает
func (s *Service) handleAdminTickets(ctx context.Context, user *domain.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 2 && fields[0] == "close" {
		publicID, err := uuid.Parse(fields[1])
		if err != nil {
			return s.sendMessage(ctx, user.TelegramChatID, "Нужен id обращения из /tickets")
		}
		if err := s.SupportService.CloseTicket(ctx, publicID); err != nil {
			if domain.IsBusinessError(err) {
				return s.sendMessage(ctx, user.TelegramChatID, "❌ "+err.Error())
			}
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
		return s.sendMessage(ctx, user.TelegramChatID, "Обращение закрыто ✅")
	}

	tickets, err := s.SupportService.ListOpenTickets(ctx, adminTicketLimit)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	if len(tickets) == 0 {
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminNoOpenTickets)
	}
	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatTicketList(tickets))
}

// handleAdminReply ответ на обращение: /reply <id> <текст>
func (s *Service) handleAdminReply(ctx context.Context, user *domain.User, args string) error {
	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(fields) != 2 || strings.TrimSpace(fields[1]) == "" {
		return s.sendMessage(ctx, user.TelegramChatID, texts.AdminReplyUsage)
	}

	publicID, err := uuid.Parse(fields[0])
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, "Нужен id обращения из /tickets")
	}

	if _, err := s.SupportService.ReplyByAdmin(ctx, publicID, fields[1]); err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, "❌ "+err.Error())
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}
	return s.sendMessage(ctx, user.TelegramChatID, "Ответ отправлен ✅")
}

// handleAdminSettings настройки магазина: /settings [<ключ> <значение>]
func (s *Service) handleAdminSettings(ctx context.Context, user *domain.User, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 2 {
		if err := s.SettingsService.Set(ctx, fields[0], fields[1]); err != nil {
			if domain.IsBusinessError(err) {
				return s.sendMessage(ctx, user.TelegramChatID, "❌ "+err.Error())
			}
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
	} else if len(fields) != 0 {
		return s.sendMessage(ctx, user.TelegramChatID, "Использование: /settings [<ключ> <значение>]")
	}

	return s.sendMessage(ctx, user.TelegramChatID, texts.FormatSettings(s.SettingsService.Current()))
}
