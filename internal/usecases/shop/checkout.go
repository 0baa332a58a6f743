package shop

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/cache"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/order"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
	"github.com/shopspring/decimal"
)

// состояния диалога, хранятся в user.pending_action
const (
	actionCheckoutCoupon = "checkout_coupon"
	actionCheckoutPoints = "checkout_points"
	actionCheckoutAnswer = "checkout_answer"
	actionSupportDialog  = "support"
)

// startCheckout начинает оформление товара: черновик в кэше, дальше шаги
// промокода, баллов и вопросов товара
func (s *Service) startCheckout(ctx context.Context, user *domain.User, productID int64, qty int) error {
	product, err := s.ProductRepo.GetByID(ctx, productID)
	if err != nil || !product.Active {
		return s.sendMessage(ctx, user.TelegramChatID, texts.ProductInactive)
	}
	if !product.HasStock(qty) {
		return s.sendMessage(ctx, user.TelegramChatID, texts.ProductOutOfStock)
	}

	draft := &cache.CheckoutDraft{
		ProductID: productID,
		Quantity:  qty,
	}
	s.DraftCache.Set(user.ID, draft)

	s.setPendingAction(ctx, user, actionCheckoutCoupon)
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, texts.CheckoutAskCoupon, couponStepKeyboard())
}

// checkoutCartLine оформляет позицию корзины с её количеством
func (s *Service) checkoutCartLine(ctx context.Context, user *domain.User, productID int64) error {
	qty := 1
	if cart, err := s.CartRepo.GetOrCreate(ctx, user.ID); err == nil {
		if items, err := s.CartRepo.ListItems(ctx, cart.ID); err == nil {
			for _, item := range items {
				if item.ProductID == productID {
					qty = item.Quantity
					break
				}
			}
		}
	}
	return s.startCheckout(ctx, user, productID, qty)
}

// draftOrRestart достаёт черновик оформления; без черновика диалог
// считается прерванным (например, после рестарта)
func (s *Service) draftOrRestart(ctx context.Context, user *domain.User) (*cache.CheckoutDraft, error) {
	draft, ok := s.DraftCache.Get(user.ID)
	if !ok {
		s.clearPendingAction(ctx, user)
		return nil, s.sendMessage(ctx, user.TelegramChatID, texts.CheckoutExpired)
	}
	return draft, nil
}

// handleCouponInput шаг промокода: текст с кодом или «Пропустить»
func (s *Service) handleCouponInput(ctx context.Context, user *domain.User, text string) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}

	code := strings.ToUpper(strings.TrimSpace(text))
	amount := s.draftSubtotal(ctx, draft)
	if _, err := s.CouponService.Validate(ctx, code, user.ID, amount); err != nil {
		if domain.IsBusinessError(err) {
			return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, texts.CheckoutCouponInvalid, couponStepKeyboard())
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	draft.CouponCode = &code
	s.DraftCache.Set(user.ID, draft)
	return s.askPointsStep(ctx, user, draft)
}

// skipCouponStep колбэк «Пропустить» на шаге промокода
func (s *Service) skipCouponStep(ctx context.Context, user *domain.User) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}
	return s.askPointsStep(ctx, user, draft)
}

// askPointsStep шаг списания баллов; пропускается при пустом балансе
func (s *Service) askPointsStep(ctx context.Context, user *domain.User, draft *cache.CheckoutDraft) error {
	balance, err := s.LoyaltyService.Balance(ctx, user.ID)
	if err != nil || !balance.IsPositive() {
		return s.askQuestionsStep(ctx, user, draft)
	}

	maxPoints := s.LoyaltyService.MaxRedeemable(balance, s.draftTotalAfterCoupon(ctx, user, draft), s.SettingsService.Current())
	if !maxPoints.IsPositive() {
		return s.askQuestionsStep(ctx, user, draft)
	}

	s.setPendingAction(ctx, user, actionCheckoutPoints)
	prompt := fmt.Sprintf(texts.CheckoutAskPoints, balance, maxPoints)
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, prompt, pointsStepKeyboard(maxPoints))
}

// handlePointsInput шаг баллов: число текстом
func (s *Service) handlePointsInput(ctx context.Context, user *domain.User, text string) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}

	points, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil || points.IsNegative() {
		return s.sendMessage(ctx, user.TelegramChatID, texts.CheckoutPointsNaN)
	}

	if points.IsPositive() {
		total := s.draftTotalAfterCoupon(ctx, user, draft)
		if err := s.LoyaltyService.ValidateRedeem(ctx, user.ID, total, points, s.SettingsService.Current()); err != nil {
			if domain.IsBusinessError(err) {
				maxPoints := s.LoyaltyService.MaxRedeemable(s.balanceOrZero(ctx, user), total, s.SettingsService.Current())
				prompt := fmt.Sprintf(texts.CheckoutPointsInvalid, maxPoints)
				return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, prompt, pointsStepKeyboard(maxPoints))
			}
			return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
		}
		draft.RedeemPoints = points
		s.DraftCache.Set(user.ID, draft)
		if err := s.sendMessage(ctx, user.TelegramChatID, texts.FormatPointsRedeemed(points)); err != nil {
			return err
		}
	}

	return s.askQuestionsStep(ctx, user, draft)
}

// redeemMaxPoints колбэк «Списать максимум»
func (s *Service) redeemMaxPoints(ctx context.Context, user *domain.User) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}

	balance, err := s.LoyaltyService.Balance(ctx, user.ID)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	maxPoints := s.LoyaltyService.MaxRedeemable(balance, s.draftTotalAfterCoupon(ctx, user, draft), s.SettingsService.Current())
	if maxPoints.IsPositive() {
		draft.RedeemPoints = maxPoints
		s.DraftCache.Set(user.ID, draft)
		if err := s.sendMessage(ctx, user.TelegramChatID, texts.FormatPointsRedeemed(maxPoints)); err != nil {
			return err
		}
	}

	return s.askQuestionsStep(ctx, user, draft)
}

// skipPointsStep колбэк «Не списывать»
func (s *Service) skipPointsStep(ctx context.Context, user *domain.User) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}
	return s.askQuestionsStep(ctx, user, draft)
}

// askQuestionsStep шаг вопросов товара; без вопросов сразу оформляет заказ
func (s *Service) askQuestionsStep(ctx context.Context, user *domain.User, draft *cache.CheckoutDraft) error {
	if len(draft.Answers) == 0 && len(draft.PendingQuestions) == 0 {
		product, err := s.ProductRepo.GetByID(ctx, draft.ProductID)
		if err != nil {
			s.clearPendingAction(ctx, user)
			s.DraftCache.Delete(user.ID)
			return s.sendMessage(ctx, user.TelegramChatID, texts.CheckoutFailed)
		}
		if product.Question != nil && strings.TrimSpace(*product.Question) != "" {
			draft.PendingQuestions = append(draft.PendingQuestions, cache.DraftQuestion{
				ProductID: product.ID,
				Question:  *product.Question,
			})
			s.DraftCache.Set(user.ID, draft)
		}
	}

	if len(draft.PendingQuestions) == 0 {
		return s.finalizeCheckout(ctx, user, draft)
	}

	s.setPendingAction(ctx, user, actionCheckoutAnswer)
	return s.sendMessage(ctx, user.TelegramChatID, "❓ "+draft.PendingQuestions[0].Question)
}

// handleAnswerInput ответ на вопрос товара
func (s *Service) handleAnswerInput(ctx context.Context, user *domain.User, text string) error {
	draft, err := s.draftOrRestart(ctx, user)
	if draft == nil {
		return err
	}
	if len(draft.PendingQuestions) == 0 {
		return s.finalizeCheckout(ctx, user, draft)
	}

	question := draft.PendingQuestions[0]
	draft.PendingQuestions = draft.PendingQuestions[1:]
	draft.Answers = append(draft.Answers, cache.DraftAnswer{
		ProductID: question.ProductID,
		Question:  question.Question,
		Answer:    strings.TrimSpace(text),
	})
	s.DraftCache.Set(user.ID, draft)

	if len(draft.PendingQuestions) > 0 {
		return s.sendMessage(ctx, user.TelegramChatID, "❓ "+draft.PendingQuestions[0].Question)
	}
	return s.finalizeCheckout(ctx, user, draft)
}

// finalizeCheckout создаёт заказ, выставляет счёт и отдаёт клавиатуру оплаты
func (s *Service) finalizeCheckout(ctx context.Context, user *domain.User, draft *cache.CheckoutDraft) error {
	s.clearPendingAction(ctx, user)

	product, err := s.ProductRepo.GetByID(ctx, draft.ProductID)
	if err != nil {
		s.DraftCache.Delete(user.ID)
		return s.sendMessage(ctx, user.TelegramChatID, texts.CheckoutFailed)
	}

	opts := order.CreateOrderOptions{
		CouponCode:   draft.CouponCode,
		RedeemPoints: draft.RedeemPoints,
	}
	for _, a := range draft.Answers {
		opts.Answers = append(opts.Answers, order.AnswerInput{
			Question: a.Question,
			Answer:   a.Answer,
		})
	}

	o, err := s.OrderService.CreateOrder(ctx, user, draft.ProductID, draft.Quantity, opts)
	if err != nil {
		s.DraftCache.Delete(user.ID)
		if domain.IsBusinessError(err) {
			return s.sendMessage(ctx, user.TelegramChatID, texts.CheckoutFailed)
		}
		return s.sendMessage(ctx, user.TelegramChatID, texts.SomethingWentWrong)
	}

	s.DraftCache.Delete(user.ID)
	s.removeOrderedCartLine(ctx, user, draft.ProductID)

	o, err = s.PaymentService.CreateInvoiceForOrder(ctx, o)
	if err != nil {
		return s.sendMessage(ctx, user.TelegramChatID, fmt.Sprintf(texts.InvoiceFailed, o.ID))
	}

	payLink := ""
	if o.PayLink != nil {
		payLink = *o.PayLink
	}
	confirmation := texts.FormatOrderCreated(o, product.Name)
	return s.sendMessageWithKeyboard(ctx, user.TelegramChatID, confirmation, paymentKeyboard(o.ID, payLink))
}

// removeOrderedCartLine убирает оформленную позицию из корзины
func (s *Service) removeOrderedCartLine(ctx context.Context, user *domain.User, productID int64) {
	cart, err := s.CartRepo.GetOrCreate(ctx, user.ID)
	if err != nil {
		return
	}
	if err := s.CartRepo.RemoveItem(ctx, cart.ID, productID); err != nil {
		s.Log.Warn("failed to remove ordered cart line",
			"error", err,
			"user_id", user.ID,
			"product_id", productID,
		)
	}
}

// draftSubtotal цена товара с учётом количества, без скидок
func (s *Service) draftSubtotal(ctx context.Context, draft *cache.CheckoutDraft) decimal.Decimal {
	product, err := s.ProductRepo.GetByID(ctx, draft.ProductID)
	if err != nil {
		return decimal.Zero
	}
	return product.Price.Mul(decimal.NewFromInt(int64(draft.Quantity)))
}

// draftTotalAfterCoupon сумма черновика после промокода (для подсказки по баллам;
// финальный расчёт делает создание заказа)
func (s *Service) draftTotalAfterCoupon(ctx context.Context, user *domain.User, draft *cache.CheckoutDraft) decimal.Decimal {
	total := s.draftSubtotal(ctx, draft)
	if draft.CouponCode == nil {
		return total
	}

	coupon, err := s.CouponService.Validate(ctx, *draft.CouponCode, user.ID, total)
	if err != nil {
		return total
	}
	return total.Sub(coupon.Discount(total))
}

func (s *Service) balanceOrZero(ctx context.Context, user *domain.User) decimal.Decimal {
	balance, err := s.LoyaltyService.Balance(ctx, user.ID)
	if err != nil {
		return decimal.Zero
	}
	return balance
}
