package shop

import (
	"context"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/shop/texts"
)

// parseCallbackData разбирает callback data формата action:arg
func parseCallbackData(data string) (action, arg string) {
	parts := strings.SplitN(data, ":", 2)
	action = parts[0]
	if len(parts) == 2 {
		arg = parts[1]
	}
	return action, arg
}

// HandleCallback обрабатывает нажатия inline-кнопок
func (s *Service) HandleCallback(ctx context.Context, user *domain.User, callbackID string, data string, message *domain.Message) error {
	action, arg := parseCallbackData(data)

	switch action {
	case "noop":
		s.answerCallback(ctx, callbackID, "", false)
		return nil

	case "catalog":
		page, _ := strconv.Atoi(arg)
		s.answerCallback(ctx, callbackID, "", false)
		return s.showCatalogPage(ctx, user, page, message)

	case "product":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.showProduct(ctx, user, id)

	case "add":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		toast := s.addToCart(ctx, user, id)
		s.answerCallback(ctx, callbackID, toast, toast != texts.CartItemAdded)
		return nil

	case "buy":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.startCheckout(ctx, user, id, 1)

	case "inc", "dec":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		delta := 1
		if action == "dec" {
			delta = -1
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.changeCartQuantity(ctx, user, id, delta, message)

	case "del":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, texts.CartItemRemoved, false)
		return s.removeFromCart(ctx, user, id, message)

	case "cart_clear":
		s.answerCallback(ctx, callbackID, "", false)
		return s.clearCart(ctx, user, message)

	case "checkout":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.checkoutCartLine(ctx, user, id)

	case "ck_skip_coupon":
		s.answerCallback(ctx, callbackID, "", false)
		return s.skipCouponStep(ctx, user)

	case "ck_points_max":
		s.answerCallback(ctx, callbackID, "", false)
		return s.redeemMaxPoints(ctx, user)

	case "ck_points_skip":
		s.answerCallback(ctx, callbackID, "", false)
		return s.skipPointsStep(ctx, user)

	case "paycheck":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		return s.checkPayment(ctx, user, callbackID, id)

	case "ordercancel":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.cancelOrderByUser(ctx, user, id)

	case "reopen":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.reopenOrder(ctx, user, id)

	case "order":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			break
		}
		s.answerCallback(ctx, callbackID, "", false)
		return s.showOrder(ctx, user, id)
	}

	s.Log.Warn("unknown callback data",
		"user_id", user.ID,
		"data", data,
	)
	s.answerCallback(ctx, callbackID, "", false)
	return nil
}
