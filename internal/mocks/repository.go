package mocks

import (
	"context"
	"time"

	"github.com/admin/tg-bots/shop-bot/internal/domain"
	"github.com/admin/tg-bots/shop-bot/internal/ports/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepo двойник repository.IOrderRepo
type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Order, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) ListAwaitingPayment(ctx context.Context, batchSize int) ([]*domain.Order, error) {
	args := m.Called(ctx, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) ListPaymentExpired(ctx context.Context, now time.Time, batchSize int) ([]*domain.Order, error) {
	args := m.Called(ctx, now, batchSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepo) SetInvoice(ctx context.Context, id int64, trackID, payLink string, attrs domain.ExtraAttrs) error {
	args := m.Called(ctx, id, trackID, payLink, attrs)
	return args.Error(0)
}

func (m *MockOrderRepo) SetChargeID(ctx context.Context, id int64, chargeID string) error {
	args := m.Called(ctx, id, chargeID)
	return args.Error(0)
}

func (m *MockOrderRepo) SetPaymentExpiresAt(ctx context.Context, id int64, expiresAt time.Time) error {
	args := m.Called(ctx, id, expiresAt)
	return args.Error(0)
}

func (m *MockOrderRepo) ClearInvoice(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepo) MarkFulfilled(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepo) CreateAnswer(ctx context.Context, answer *domain.OrderAnswer) error {
	args := m.Called(ctx, answer)
	return args.Error(0)
}

func (m *MockOrderRepo) ListAnswers(ctx context.Context, orderID int64) ([]*domain.OrderAnswer, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OrderAnswer), args.Error(1)
}

func (m *MockOrderRepo) BeginTx(ctx context.Context) (persistence.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(persistence.Transaction), args.Error(1)
}

// WithTransaction прогоняет callback без настоящей транзакции: вложенные
// CreateTx уходят в те же mock-и
func (m *MockOrderRepo) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, nil)
}

func (m *MockOrderRepo) CreateTx(ctx context.Context, tx persistence.Transaction, order *domain.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

// MockTimelineRepo двойник repository.ITimelineRepo
type MockTimelineRepo struct {
	mock.Mock
}

func (m *MockTimelineRepo) Create(ctx context.Context, entry *domain.TimelineEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTimelineRepo) ListByOrderID(ctx context.Context, orderID int64) ([]*domain.TimelineEntry, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TimelineEntry), args.Error(1)
}

func (m *MockTimelineRepo) CreateTx(ctx context.Context, tx persistence.Transaction, entry *domain.TimelineEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

// MockProductRepo двойник repository.IProductRepo
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) ListActive(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepo) ListAll(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Product), args.Error(1)
}

func (m *MockProductRepo) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockProductRepo) SetStock(ctx context.Context, id int64, stock *int) error {
	args := m.Called(ctx, id, stock)
	return args.Error(0)
}

func (m *MockProductRepo) SetImageFileID(ctx context.Context, id int64, fileID string) error {
	args := m.Called(ctx, id, fileID)
	return args.Error(0)
}

func (m *MockProductRepo) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	args := m.Called(ctx, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepo) RestoreStock(ctx context.Context, id int64, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

// MockUserRepo двойник repository.IUserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateLastSeen(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepo) SetPendingAction(ctx context.Context, userID uuid.UUID, action *string) error {
	args := m.Called(ctx, userID, action)
	return args.Error(0)
}

func (m *MockUserRepo) SetReferredBy(ctx context.Context, userID uuid.UUID, referrerID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, referrerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	args := m.Called(ctx, userID, blocked)
	return args.Error(0)
}

func (m *MockUserRepo) ListChatIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockCouponRepo двойник repository.ICouponRepo
type MockCouponRepo struct {
	mock.Mock
}

func (m *MockCouponRepo) Create(ctx context.Context, coupon *domain.Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *MockCouponRepo) GetByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) List(ctx context.Context, limit int) ([]*domain.Coupon, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockCouponRepo) CountRedemptions(ctx context.Context, couponID int64) (int, error) {
	args := m.Called(ctx, couponID)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepo) CountUserRedemptions(ctx context.Context, couponID int64, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCouponRepo) CreateRedemption(ctx context.Context, redemption *domain.CouponRedemption) error {
	args := m.Called(ctx, redemption)
	return args.Error(0)
}

func (m *MockCouponRepo) GetRedemptionByOrderID(ctx context.Context, orderID int64) (*domain.CouponRedemption, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CouponRedemption), args.Error(1)
}

func (m *MockCouponRepo) UpdateRedemptionStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

// MockLoyaltyRepo двойник repository.ILoyaltyRepo
type MockLoyaltyRepo struct {
	mock.Mock
}

func (m *MockLoyaltyRepo) GetOrCreateAccount(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoyaltyAccount), args.Error(1)
}

func (m *MockLoyaltyRepo) GetAccountByUserID(ctx context.Context, userID uuid.UUID) (*domain.LoyaltyAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoyaltyAccount), args.Error(1)
}

func (m *MockLoyaltyRepo) AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal, kind domain.LoyaltyTxKind, orderID *int64, note *string) (bool, error) {
	args := m.Called(ctx, accountID, delta, kind, orderID, note)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoyaltyRepo) ListTransactions(ctx context.Context, accountID int64, limit int) ([]*domain.LoyaltyTransaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoyaltyTransaction), args.Error(1)
}

func (m *MockLoyaltyRepo) CreateReservation(ctx context.Context, res *domain.LoyaltyReservation) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *MockLoyaltyRepo) GetReservationByOrderID(ctx context.Context, orderID int64) (*domain.LoyaltyReservation, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoyaltyReservation), args.Error(1)
}

func (m *MockLoyaltyRepo) UpdateReservationStatus(ctx context.Context, orderID int64, from, to domain.RedemptionStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

// MockReferralRepo двойник repository.IReferralRepo
type MockReferralRepo struct {
	mock.Mock
}

func (m *MockReferralRepo) GetOrCreateLink(ctx context.Context, userID uuid.UUID, code string) (*domain.ReferralLink, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralLink), args.Error(1)
}

func (m *MockReferralRepo) GetLinkByCode(ctx context.Context, code string) (*domain.ReferralLink, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralLink), args.Error(1)
}

func (m *MockReferralRepo) GetLinkByUserID(ctx context.Context, userID uuid.UUID) (*domain.ReferralLink, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralLink), args.Error(1)
}

func (m *MockReferralRepo) GetLinkByID(ctx context.Context, id int64) (*domain.ReferralLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralLink), args.Error(1)
}

func (m *MockReferralRepo) IncrementClicks(ctx context.Context, linkID int64) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

func (m *MockReferralRepo) IncrementSignups(ctx context.Context, linkID int64) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

func (m *MockReferralRepo) IncrementPaidOrders(ctx context.Context, linkID int64) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

func (m *MockReferralRepo) CreateReward(ctx context.Context, reward *domain.ReferralReward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

func (m *MockReferralRepo) GetRewardByOrderID(ctx context.Context, orderID int64) (*domain.ReferralReward, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReferralReward), args.Error(1)
}

func (m *MockReferralRepo) HasGrantedReward(ctx context.Context, linkID int64, refereeUserID uuid.UUID) (bool, error) {
	args := m.Called(ctx, linkID, refereeUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferralRepo) UpdateRewardStatus(ctx context.Context, orderID int64, from, to domain.RewardStatus) (bool, error) {
	args := m.Called(ctx, orderID, from, to)
	return args.Bool(0), args.Error(1)
}

// MockSettingsRepo двойник repository.ISettingsRepo
type MockSettingsRepo struct {
	mock.Mock
}

func (m *MockSettingsRepo) GetAll(ctx context.Context) ([]*domain.AppSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.AppSetting), args.Error(1)
}

func (m *MockSettingsRepo) Get(ctx context.Context, key string) (*domain.AppSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AppSetting), args.Error(1)
}

func (m *MockSettingsRepo) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// MockTicketRepo двойник repository.ITicketRepo
type MockTicketRepo struct {
	mock.Mock
}

func (m *MockTicketRepo) Create(ctx context.Context, ticket *domain.SupportTicket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepo) GetByID(ctx context.Context, id int64) (*domain.SupportTicket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

func (m *MockTicketRepo) GetByPublicID(ctx context.Context, publicID uuid.UUID) (*domain.SupportTicket, error) {
	args := m.Called(ctx, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

func (m *MockTicketRepo) GetOpenByUserID(ctx context.Context, userID uuid.UUID) (*domain.SupportTicket, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SupportTicket), args.Error(1)
}

func (m *MockTicketRepo) ListByStatus(ctx context.Context, status domain.TicketStatus, limit int) ([]*domain.SupportTicket, error) {
	args := m.Called(ctx, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SupportTicket), args.Error(1)
}

func (m *MockTicketRepo) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTicketRepo) CreateMessage(ctx context.Context, msg *domain.TicketMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockTicketRepo) ListMessages(ctx context.Context, ticketID int64) ([]*domain.TicketMessage, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TicketMessage), args.Error(1)
}

// MockCartRepo двойник repository.ICartRepo
type MockCartRepo struct {
	mock.Mock
}

func (m *MockCartRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartRepo) AddItem(ctx context.Context, cartID, productID int64, qty int) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *MockCartRepo) SetItemQuantity(ctx context.Context, cartID, productID int64, qty int) error {
	args := m.Called(ctx, cartID, productID, qty)
	return args.Error(0)
}

func (m *MockCartRepo) RemoveItem(ctx context.Context, cartID, productID int64) error {
	args := m.Called(ctx, cartID, productID)
	return args.Error(0)
}

func (m *MockCartRepo) ListItems(ctx context.Context, cartID int64) ([]*domain.CartItemView, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CartItemView), args.Error(1)
}

func (m *MockCartRepo) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}
