package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ключи настроек в app_settings
const (
	SettingInvoiceTimeoutMinutes   = "invoice_timeout_minutes"
	SettingLoyaltyAccrualPercent   = "loyalty_accrual_percent"
	SettingLoyaltyMaxRedeemPercent = "loyalty_max_redeem_percent"
	SettingReferralRewardAmount    = "referral_reward_amount"
	SettingShopCurrency            = "shop_currency"
)

// AppSetting настройка магазина в БД, перекрывает значение из окружения
type AppSetting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Settings снимок настроек магазина; собирается при старте и после /settings,
// передаётся сервисам явно вместо глобального состояния
type Settings struct {
	InvoiceTimeoutMinutes   int             // срок жизни счёта на оплату
	LoyaltyAccrualPercent   decimal.Decimal // процент кэшбэка баллами от суммы заказа
	LoyaltyMaxRedeemPercent decimal.Decimal // максимум суммы заказа, оплачиваемый баллами
	ReferralRewardAmount    decimal.Decimal // баллы рефереру за первый оплаченный заказ приглашённого
	Currency                string          // валюта магазина
}

// DefaultSettings дефолты, используются пока в app_settings нет переопределений
func DefaultSettings() Settings {
	return Settings{
		InvoiceTimeoutMinutes:   30,
		LoyaltyAccrualPercent:   decimal.NewFromInt(5),
		LoyaltyMaxRedeemPercent: decimal.NewFromInt(50),
		ReferralRewardAmount:    decimal.NewFromInt(100),
		Currency:                "USDT",
	}
}
