package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/repository"
	"github.com/shopspring/decimal"
)

// Service держит снимок настроек магазина.
// Снимок собирается из app_settings при старте и пересобирается после /settings,
// сервисы читают его через Current() вместо глобального состояния
type Service struct {
	SettingsRepo repository.ISettingsRepo
	Log          *slog.Logger

	mu      sync.RWMutex
	current domain.Settings
}

// New создаёт сервис настроек с дефолтными значениями до первого Load
func New(settingsRepo repository.ISettingsRepo, log *slog.Logger) *Service {
	return &Service{
		SettingsRepo: settingsRepo,
		Log:          log,
		current:      domain.DefaultSettings(),
	}
}

// Current возвращает текущий снимок настроек
func (s *Service) Current() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load читает app_settings и пересобирает снимок; незнакомые ключи игнорируются с Warn
func (s *Service) Load(ctx context.Context) error {
	stored, err := s.SettingsRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	next := domain.DefaultSettings()
	for _, setting := range stored {
		if err := applySetting(&next, setting.Key, setting.Value); err != nil {
			s.Log.Warn("skipping invalid setting",
				"key", setting.Key,
				"value", setting.Value,
				"error", err,
			)
		}
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()

	s.Log.Info("settings loaded",
		"invoice_timeout_minutes", next.InvoiceTimeoutMinutes,
		"loyalty_accrual_percent", next.LoyaltyAccrualPercent,
		"loyalty_max_redeem_percent", next.LoyaltyMaxRedeemPercent,
		"referral_reward_amount", next.ReferralRewardAmount,
		"currency", next.Currency,
	)
	return nil
}

// Set валидирует и сохраняет настройку, затем пересобирает снимок
func (s *Service) Set(ctx context.Context, key, value string) error {
	probe := domain.DefaultSettings()
	if err := applySetting(&probe, key, value); err != nil {
		return domain.BusinessErrorf("invalid setting %s=%s: %w", key, value, err)
	}

	if err := s.SettingsRepo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}

	return s.Load(ctx)
}

// applySetting применяет одно значение к снимку, валидируя формат
func applySetting(target *domain.Settings, key, value string) error {
	switch key {
	case domain.SettingInvoiceTimeoutMinutes:
		minutes, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("not an integer: %w", err)
		}
		if minutes <= 0 {
			return fmt.Errorf("must be positive, got %d", minutes)
		}
		target.InvoiceTimeoutMinutes = minutes
	case domain.SettingLoyaltyAccrualPercent:
		percent, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("not a number: %w", err)
		}
		if percent.IsNegative() {
			return fmt.Errorf("must not be negative")
		}
		target.LoyaltyAccrualPercent = percent
	case domain.SettingLoyaltyMaxRedeemPercent:
		percent, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("not a number: %w", err)
		}
		if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("must be within [0, 100]")
		}
		target.LoyaltyMaxRedeemPercent = percent
	case domain.SettingReferralRewardAmount:
		amount, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("not a number: %w", err)
		}
		if amount.IsNegative() {
			return fmt.Errorf("must not be negative")
		}
		target.ReferralRewardAmount = amount
	case domain.SettingShopCurrency:
		if value == "" {
			return fmt.Errorf("must not be empty")
		}
		target.Currency = value
	default:
		return fmt.Errorf("unknown setting key")
	}
	return nil
}
