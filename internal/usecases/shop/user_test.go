package shop

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/mocks"
	"github.com/admin/tg-bots/shop-bot/internal/usecases/referral"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// userTestService сервис только с зависимостями регистрации:
// репозиторий пользователей и реферальная программа
func userTestService() (*Service, *mocks.MockUserRepo, *mocks.MockReferralRepo) {
	userRepo := new(mocks.MockUserRepo)
	referralRepo := new(mocks.MockReferralRepo)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := &Service{
		UserRepo:        userRepo,
		ReferralService: referral.New(referralRepo, new(mocks.MockLoyaltyRepo), userRepo, log),
		Log:             log,
	}
	return service, userRepo, referralRepo
}

func TestService_GetOrCreateUser(t *testing.T) {
	tgUser := &domain.TelegramUser{
		ID:        500,
		FirstName: "Ivan",
		Username:  strPtr("ivan_the_buyer"),
	}
	chat := &domain.Chat{ID: 500, Type: "private"}

	t.Run("unknown_telegram_id_registers_user", func(t *testing.T) {
		service, userRepo, _ := userTestService()

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(nil, sql.ErrNoRows)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "")

		require.NoError(t, err)
		assert.Equal(t, int64(500), user.TelegramUserID)
		assert.Equal(t, int64(500), user.TelegramChatID)
		assert.Equal(t, "Ivan", user.FirstName)
		assert.Equal(t, "ivan_the_buyer", *user.Username)
		assert.NotEqual(t, uuid.Nil, user.ID)
		userRepo.AssertExpectations(t)
	})

	t.Run("create_failure_is_returned", func(t *testing.T) {
		service, userRepo, _ := userTestService()

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(nil, sql.ErrNoRows)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(sql.ErrConnDone)

		user, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "")

		require.Error(t, err)
		assert.Nil(t, user)
	})

	t.Run("changed_profile_is_synced", func(t *testing.T) {
		service, userRepo, _ := userTestService()
		existing := &domain.User{
			ID:             uuid.New(),
			TelegramUserID: 500,
			TelegramChatID: 500,
			FirstName:      "Ivan",
			Username:       strPtr("old_handle"),
		}

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(existing, nil)
		userRepo.On("Update", mock.Anything, existing).Return(nil)
		userRepo.On("UpdateLastSeen", mock.Anything, existing.ID).Return(nil)

		user, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "")

		require.NoError(t, err)
		assert.Equal(t, "ivan_the_buyer", *user.Username)
		userRepo.AssertExpectations(t)
	})

	t.Run("unchanged_profile_skips_update", func(t *testing.T) {
		service, userRepo, _ := userTestService()
		existing := &domain.User{
			ID:             uuid.New(),
			TelegramUserID: 500,
			TelegramChatID: 500,
			FirstName:      "Ivan",
			Username:       strPtr("ivan_the_buyer"),
		}

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(existing, nil)
		userRepo.On("UpdateLastSeen", mock.Anything, existing.ID).Return(nil)

		_, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "")

		require.NoError(t, err)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("ref_payload_attributes_signup", func(t *testing.T) {
		service, userRepo, referralRepo := userTestService()
		referrerID := uuid.New()
		link := &domain.ReferralLink{ID: 3, UserID: referrerID, Code: "abc123"}

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(nil, sql.ErrNoRows)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
		referralRepo.On("GetLinkByCode", mock.Anything, "abc123").Return(link, nil)
		referralRepo.On("IncrementClicks", mock.Anything, int64(3)).Return(nil)
		userRepo.On("SetReferredBy", mock.Anything, mock.AnythingOfType("uuid.UUID"), referrerID).Return(true, nil)
		referralRepo.On("IncrementSignups", mock.Anything, int64(3)).Return(nil)

		_, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "ref_abc123")

		require.NoError(t, err)
		referralRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("plain_payload_is_not_referral", func(t *testing.T) {
		service, userRepo, referralRepo := userTestService()

		userRepo.On("GetByTelegramID", mock.Anything, int64(500)).Return(nil, sql.ErrNoRows)
		userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

		_, err := service.GetOrCreateUser(context.Background(), tgUser, chat, "promo2026")

		require.NoError(t, err)
		referralRepo.AssertNotCalled(t, "GetLinkByCode", mock.Anything, mock.Anything)
	})
}

func TestSyncProfile(t *testing.T) {
	base := func() *domain.User {
		return &domain.User{
			TelegramChatID: 500,
			FirstName:      "Ivan",
			Username:       strPtr("ivan"),
			LanguageCode:   strPtr("ru"),
		}
	}

	tests := []struct {
		name        string
		tg          domain.TelegramUser
		chatID      int64
		wantChanged bool
		check       func(t *testing.T, u *domain.User)
	}{
		{
			name:        "профиль без изменений",
			tg:          domain.TelegramUser{FirstName: "Ivan", Username: strPtr("ivan"), LanguageCode: strPtr("ru")},
			chatID:      500,
			wantChanged: false,
		},
		{
			name:        "смена имени",
			tg:          domain.TelegramUser{FirstName: "Иван", Username: strPtr("ivan"), LanguageCode: strPtr("ru")},
			chatID:      500,
			wantChanged: true,
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, "Иван", u.FirstName)
			},
		},
		{
			name:        "username удалён",
			tg:          domain.TelegramUser{FirstName: "Ivan", LanguageCode: strPtr("ru")},
			chatID:      500,
			wantChanged: true,
			check: func(t *testing.T, u *domain.User) {
				assert.Nil(t, u.Username)
			},
		},
		{
			name:        "пустой язык в апдейте не затирает сохранённый",
			tg:          domain.TelegramUser{FirstName: "Ivan", Username: strPtr("ivan")},
			chatID:      500,
			wantChanged: false,
		},
		{
			name:        "переезд чата",
			tg:          domain.TelegramUser{FirstName: "Ivan", Username: strPtr("ivan"), LanguageCode: strPtr("ru")},
			chatID:      777,
			wantChanged: true,
			check: func(t *testing.T, u *domain.User) {
				assert.Equal(t, int64(777), u.TelegramChatID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := base()
			changed := syncProfile(u, &tt.tg, &domain.Chat{ID: tt.chatID})

			assert.Equal(t, tt.wantChanged, changed)
			if tt.check != nil {
				tt.check(t, u)
			}
		})
	}
}
