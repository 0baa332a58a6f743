package settings

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Load(t *testing.T) {
	t.Run("applies_stored_overrides_over_defaults", func(t *testing.T) {
		repo := new(mocks.MockSettingsRepo)
		service := New(repo, testLogger())

		repo.On("GetAll", mock.Anything).Return([]*domain.AppSetting{
			{Key: domain.SettingInvoiceTimeoutMinutes, Value: "15"},
			{Key: domain.SettingLoyaltyAccrualPercent, Value: "7.5"},
			{Key: domain.SettingShopCurrency, Value: "TON"},
		}, nil)

		require.NoError(t, service.Load(context.Background()))

		cfg := service.Current()
		assert.Equal(t, 15, cfg.InvoiceTimeoutMinutes)
		assert.True(t, cfg.LoyaltyAccrualPercent.Equal(decimal.RequireFromString("7.5")))
		assert.Equal(t, "TON", cfg.Currency)
		// не переопределённые ключи остаются дефолтными
		assert.True(t, cfg.LoyaltyMaxRedeemPercent.Equal(domain.DefaultSettings().LoyaltyMaxRedeemPercent))
	})

	t.Run("invalid_stored_value_is_skipped", func(t *testing.T) {
		repo := new(mocks.MockSettingsRepo)
		service := New(repo, testLogger())

		repo.On("GetAll", mock.Anything).Return([]*domain.AppSetting{
			{Key: domain.SettingInvoiceTimeoutMinutes, Value: "not-a-number"},
			{Key: "legacy_key", Value: "1"},
			{Key: domain.SettingShopCurrency, Value: "TON"},
		}, nil)

		require.NoError(t, service.Load(context.Background()))

		// битые и незнакомые ключи не ломают загрузку валидных
		cfg := service.Current()
		assert.Equal(t, domain.DefaultSettings().InvoiceTimeoutMinutes, cfg.InvoiceTimeoutMinutes)
		assert.Equal(t, "TON", cfg.Currency)
	})

	t.Run("repo_failure_keeps_previous_snapshot", func(t *testing.T) {
		repo := new(mocks.MockSettingsRepo)
		service := New(repo, testLogger())

		repo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))

		require.Error(t, service.Load(context.Background()))
		assert.Equal(t, domain.DefaultSettings().InvoiceTimeoutMinutes, service.Current().InvoiceTimeoutMinutes)
	})
}

func TestService_Set(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		value        string
		wantBusiness bool
	}{
		{
			name:  "валидный таймаут сохраняется",
			key:   domain.SettingInvoiceTimeoutMinutes,
			value: "45",
		},
		{
			name:         "нулевой таймаут отклоняется",
			key:          domain.SettingInvoiceTimeoutMinutes,
			value:        "0",
			wantBusiness: true,
		},
		{
			name:         "процент списания больше 100 отклоняется",
			key:          domain.SettingLoyaltyMaxRedeemPercent,
			value:        "150",
			wantBusiness: true,
		},
		{
			name:         "отрицательная награда отклоняется",
			key:          domain.SettingReferralRewardAmount,
			value:        "-10",
			wantBusiness: true,
		},
		{
			name:         "незнакомый ключ отклоняется",
			key:          "shoe_size",
			value:        "42",
			wantBusiness: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockSettingsRepo)
			service := New(repo, testLogger())

			if !tt.wantBusiness {
				repo.On("Set", mock.Anything, tt.key, tt.value).Return(nil)
				repo.On("GetAll", mock.Anything).Return([]*domain.AppSetting{
					{Key: tt.key, Value: tt.value},
				}, nil)
			}

			err := service.Set(context.Background(), tt.key, tt.value)

			if tt.wantBusiness {
				require.Error(t, err)
				assert.True(t, domain.IsBusinessError(err))
				repo.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
