package wallet

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/internal/commission"
	"github.com/IhuzaApp/groceryrw-backend/internal/orders"
	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
	pkgerrors "github.com/IhuzaApp/groceryrw-backend/pkg/errors"
	"github.com/IhuzaApp/groceryrw-backend/pkg/logger"
	"github.com/IhuzaApp/groceryrw-backend/pkg/outbox"
	"github.com/IhuzaApp/groceryrw-backend/pkg/pagination"
)

type fakeWalletRepo struct {
	wallet       *models.Wallet
	transactions []models.WalletTransaction
	refunds      []models.Refund
	payouts      []models.PayoutRequest
}

func (f *fakeWalletRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeWalletRepo) FindByShopperID(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	if f.wallet == nil || f.wallet.ShopperID != shopperID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.wallet
	return &copied, nil
}

func (f *fakeWalletRepo) FindByShopperIDForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	return f.FindByShopperID(ctx, shopperID)
}

func (f *fakeWalletRepo) FindOrCreateForUpdate(ctx context.Context, shopperID uuid.UUID) (*models.Wallet, error) {
	if f.wallet == nil {
		f.wallet = &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.Zero,
		}
	}
	return f.FindByShopperID(ctx, shopperID)
}

func (f *fakeWalletRepo) SaveBalances(ctx context.Context, wallet *models.Wallet) error {
	f.wallet.AvailableBalance = wallet.AvailableBalance
	f.wallet.ReservedBalance = wallet.ReservedBalance
	return nil
}

func (f *fakeWalletRepo) DebitAvailableGuarded(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) (bool, error) {
	if f.wallet == nil || f.wallet.ID != walletID {
		return false, nil
	}
	if f.wallet.AvailableBalance.LessThan(amount) {
		return false, nil
	}
	f.wallet.AvailableBalance = f.wallet.AvailableBalance.Sub(amount)
	return true, nil
}

func (f *fakeWalletRepo) AppendTransactions(ctx context.Context, entries []models.WalletTransaction) error {
	f.transactions = append(f.transactions, entries...)
	return nil
}

func (f *fakeWalletRepo) CreateRefund(ctx context.Context, refund *models.Refund) error {
	f.refunds = append(f.refunds, *refund)
	return nil
}

func (f *fakeWalletRepo) CreatePayoutRequest(ctx context.Context, payout *models.PayoutRequest) error {
	f.payouts = append(f.payouts, *payout)
	return nil
}

func (f *fakeWalletRepo) ListTransactions(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.WalletTransaction, error) {
	return f.transactions, nil
}

func (f *fakeWalletRepo) ListPayoutRequests(ctx context.Context, walletID uuid.UUID, params pagination.Params) ([]models.PayoutRequest, error) {
	return f.payouts, nil
}

type fakeOrdersRepo struct {
	standard   map[uuid.UUID]*models.StandardOrder
	quickBatch map[uuid.UUID]*models.QuickBatchOrder
	restaurant map[uuid.UUID]*models.RestaurantOrder
}

func (f *fakeOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrdersRepo) FindStandardOrder(ctx context.Context, id uuid.UUID) (*models.StandardOrder, error) {
	if o, ok := f.standard[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) FindQuickBatchOrder(ctx context.Context, id uuid.UUID) (*models.QuickBatchOrder, error) {
	if o, ok := f.quickBatch[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrdersRepo) FindRestaurantOrder(ctx context.Context, id uuid.UUID) (*models.RestaurantOrder, error) {
	if o, ok := f.restaurant[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCommissionRepo struct {
	pct *decimal.Decimal
}

func (f *fakeCommissionRepo) WithTx(tx *gorm.DB) commission.Repository { return f }

func (f *fakeCommissionRepo) FindConfig(ctx context.Context) (*models.CommissionConfig, error) {
	if f.pct == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.CommissionConfig{ID: 1, DeliveryCommissionPercentage: *f.pct}, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOutbox struct {
	events []outbox.DomainEvent
}

func (f *fakeOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	f.events = append(f.events, event)
	return nil
}

type engineFixture struct {
	svc        Service
	repo       *fakeWalletRepo
	ordersRepo *fakeOrdersRepo
	outbox     *fakeOutbox
}

func newEngine(t *testing.T, walletRepo *fakeWalletRepo, ordersRepo *fakeOrdersRepo, pct *decimal.Decimal) engineFixture {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "wallet-test", Output: io.Discard})

	ordersSvc, err := orders.NewService(ordersRepo)
	require.NoError(t, err)

	commissionRepo := &fakeCommissionRepo{pct: pct}
	commissionSvc, err := commission.NewService(commissionRepo, logg, 20)
	require.NoError(t, err)

	ob := &fakeOutbox{}
	svc, err := NewService(Config{
		Repo:           walletRepo,
		OrdersRepo:     ordersRepo,
		OrdersService:  ordersSvc,
		CommissionRepo: commissionRepo,
		Commission:     commissionSvc,
		Tx:             fakeTxRunner{},
		Outbox:         ob,
		PayoutEstimate: "3-5 business days",
	})
	require.NoError(t, err)

	return engineFixture{svc: svc, repo: walletRepo, ordersRepo: ordersRepo, outbox: ob}
}

func standardOrderFixture(orderID uuid.UUID, total, serviceFee, deliveryFee float64) *fakeOrdersRepo {
	return &fakeOrdersRepo{
		standard: map[uuid.UUID]*models.StandardOrder{
			orderID: {
				ID:          orderID,
				Total:       decimal.NewFromFloat(total),
				ServiceFee:  decimal.NewFromFloat(serviceFee),
				DeliveryFee: decimal.NewFromFloat(deliveryFee),
				CustomerID:  uuid.New(),
				Status:      "shopping",
			},
		},
	}
}

func TestReserveStandardOrder(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	fix := newEngine(t, &fakeWalletRepo{}, standardOrderFixture(orderID, 5000, 1000, 500), nil)

	result, err := fix.svc.Reserve(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	assert.True(t, result.NewReservedBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, result.AmountReserved.Equal(decimal.NewFromInt(5000)))
	assert.True(t, fix.repo.wallet.AvailableBalance.IsZero())
	assert.True(t, fix.repo.wallet.ReservedBalance.Equal(decimal.NewFromInt(5000)))

	require.Len(t, fix.repo.transactions, 1)
	entry := fix.repo.transactions[0]
	assert.Equal(t, enums.TransactionKindReserve, entry.Kind)
	assert.True(t, entry.Amount.Equal(decimal.NewFromInt(5000)))
	kind, refID, ok := entry.OrderReference()
	require.True(t, ok)
	assert.Equal(t, enums.OrderKindStandard, kind)
	assert.Equal(t, orderID, refID)

	require.Len(t, fix.outbox.events, 1)
	assert.Equal(t, enums.EventCommissionRevenueRecorded, fix.outbox.events[0].EventType)
}

func TestReserveQuickBatchLeavesNoLedgerEntry(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	ordersRepo := &fakeOrdersRepo{
		quickBatch: map[uuid.UUID]*models.QuickBatchOrder{
			orderID: {
				ID:         orderID,
				Total:      decimal.NewFromInt(1200),
				CustomerID: uuid.New(),
				Status:     "shopping",
			},
		},
	}
	fix := newEngine(t, &fakeWalletRepo{}, ordersRepo, nil)

	result, err := fix.svc.Reserve(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindQuickBatch,
	})
	require.NoError(t, err)

	assert.True(t, result.NewReservedBalance.Equal(decimal.NewFromInt(1200)))
	assert.Empty(t, fix.repo.transactions)
	assert.Empty(t, fix.outbox.events)
}

func TestSettleStandardOrderFullRelease(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.NewFromInt(5000),
		},
	}
	fix := newEngine(t, walletRepo, standardOrderFixture(orderID, 5000, 1000, 500), nil)

	result, err := fix.svc.Settle(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	assert.True(t, result.TotalEarnings.Equal(decimal.NewFromInt(1500)))
	assert.True(t, result.PlatformFeeDeducted.Equal(decimal.NewFromInt(300)))
	assert.True(t, result.EarningsAdded.Equal(decimal.NewFromInt(1200)))
	assert.True(t, result.ReservedReleased.Equal(decimal.NewFromInt(5000)))
	assert.True(t, result.RefundAmount.IsZero())
	assert.True(t, result.NewAvailableBalance.Equal(decimal.NewFromInt(1200)))
	assert.True(t, result.NewReservedBalance.IsZero())

	// conservation: net + commission == totalEarnings
	assert.True(t, result.EarningsAdded.Add(result.PlatformFeeDeducted).Equal(result.TotalEarnings))

	require.Len(t, fix.repo.transactions, 2)
	assert.Equal(t, enums.TransactionKindEarnings, fix.repo.transactions[0].Kind)
	assert.True(t, fix.repo.transactions[0].Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, enums.TransactionKindExpense, fix.repo.transactions[1].Kind)
	assert.True(t, fix.repo.transactions[1].Amount.Equal(decimal.NewFromInt(5000)))

	require.Len(t, fix.outbox.events, 1)
	assert.Equal(t, enums.EventPlatformFeeRecorded, fix.outbox.events[0].EventType)
}

func TestSettleStandardOrderPartialReservationRefunds(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.NewFromInt(3000),
		},
	}
	fix := newEngine(t, walletRepo, standardOrderFixture(orderID, 5000, 1000, 500), nil)

	result, err := fix.svc.Settle(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	// released = min(3000, 5000); refund = 5000 - 3000
	assert.True(t, result.ReservedReleased.Equal(decimal.NewFromInt(3000)))
	assert.True(t, result.RefundAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, result.NewReservedBalance.IsZero())

	require.Len(t, fix.repo.transactions, 3)
	assert.Equal(t, enums.TransactionKindRefund, fix.repo.transactions[2].Kind)
	assert.True(t, fix.repo.transactions[2].Amount.Equal(decimal.NewFromInt(2000)))
}

func TestSettleRestaurantOrderLeavesReservationAlone(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	ordersRepo := &fakeOrdersRepo{
		restaurant: map[uuid.UUID]*models.RestaurantOrder{
			orderID: {
				ID:          orderID,
				Total:       decimal.NewFromInt(4000),
				DeliveryFee: decimal.NewFromInt(800),
				CustomerID:  uuid.New(),
				Status:      "delivering",
			},
		},
	}
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.NewFromInt(4000),
		},
	}
	fix := newEngine(t, walletRepo, ordersRepo, nil)

	result, err := fix.svc.Settle(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindRestaurant,
	})
	require.NoError(t, err)

	assert.True(t, result.TotalEarnings.Equal(decimal.NewFromInt(800)))
	assert.True(t, result.EarningsAdded.Equal(decimal.NewFromInt(640)))
	assert.True(t, result.NewReservedBalance.Equal(decimal.NewFromInt(4000)))
	assert.True(t, result.ReservedReleased.IsZero())

	require.Len(t, fix.repo.transactions, 1)
	assert.Equal(t, enums.TransactionKindEarnings, fix.repo.transactions[0].Kind)
	assert.True(t, fix.repo.transactions[0].Amount.Equal(decimal.NewFromInt(640)))

	assert.Empty(t, fix.outbox.events)
}

func TestSettleUsesConfiguredCommission(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	pct := decimal.NewFromInt(10)
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.NewFromInt(5000),
		},
	}
	fix := newEngine(t, walletRepo, standardOrderFixture(orderID, 5000, 1000, 500), &pct)

	result, err := fix.svc.Settle(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	assert.True(t, result.PlatformFeeDeducted.Equal(decimal.NewFromInt(150)))
	assert.True(t, result.EarningsAdded.Equal(decimal.NewFromInt(1350)))
}

func TestSettleWalletMissing(t *testing.T) {
	orderID := uuid.New()
	fix := newEngine(t, &fakeWalletRepo{}, standardOrderFixture(orderID, 5000, 1000, 500), nil)

	_, err := fix.svc.Settle(context.Background(), LedgerOperationInput{
		ShopperID: uuid.New(),
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestCancelStandardOrder(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	ordersRepo := standardOrderFixture(orderID, 3000, 0, 0)
	customerID := ordersRepo.standard[orderID].CustomerID
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.NewFromInt(2000),
			ReservedBalance:  decimal.NewFromInt(3000),
		},
	}
	fix := newEngine(t, walletRepo, ordersRepo, nil)

	result, err := fix.svc.Cancel(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	assert.True(t, result.NewReservedBalance.IsZero())
	assert.True(t, fix.repo.wallet.AvailableBalance.Equal(decimal.NewFromInt(2000)))

	require.Len(t, fix.repo.refunds, 1)
	refund := fix.repo.refunds[0]
	assert.Equal(t, enums.RefundStatusPending, refund.Status)
	assert.True(t, refund.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, "Order cancelled by shopper", refund.Reason)
	assert.Equal(t, customerID, refund.UserID)
	assert.False(t, refund.Paid)

	require.Len(t, fix.repo.transactions, 1)
	assert.Equal(t, enums.TransactionKindRefund, fix.repo.transactions[0].Kind)
	assert.True(t, fix.repo.transactions[0].Amount.Equal(decimal.NewFromInt(3000)))
}

func TestCancelSubtractsWithoutClamping(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.Zero,
			ReservedBalance:  decimal.NewFromInt(1000),
		},
	}
	fix := newEngine(t, walletRepo, standardOrderFixture(orderID, 3000, 0, 0), nil)

	result, err := fix.svc.Cancel(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindStandard,
	})
	require.NoError(t, err)

	assert.True(t, result.NewReservedBalance.Equal(decimal.NewFromInt(-2000)))
}

func TestCancelQuickBatchWritesNoLedgerEntry(t *testing.T) {
	shopperID := uuid.New()
	orderID := uuid.New()
	ordersRepo := &fakeOrdersRepo{
		quickBatch: map[uuid.UUID]*models.QuickBatchOrder{
			orderID: {
				ID:         orderID,
				Total:      decimal.NewFromInt(1500),
				CustomerID: uuid.New(),
				Status:     "shopping",
			},
		},
	}
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:              uuid.New(),
			ShopperID:       shopperID,
			ReservedBalance: decimal.NewFromInt(1500),
		},
	}
	fix := newEngine(t, walletRepo, ordersRepo, nil)

	_, err := fix.svc.Cancel(context.Background(), LedgerOperationInput{
		ShopperID: shopperID,
		OrderID:   orderID,
		OrderKind: enums.OrderKindQuickBatch,
	})
	require.NoError(t, err)

	assert.Len(t, fix.repo.refunds, 1)
	assert.Empty(t, fix.repo.transactions)
}

func TestRequestPayout(t *testing.T) {
	shopperID := uuid.New()
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.NewFromInt(5000),
			ReservedBalance:  decimal.Zero,
		},
	}
	fix := newEngine(t, walletRepo, &fakeOrdersRepo{}, nil)

	result, err := fix.svc.RequestPayout(context.Background(), PayoutInput{
		ShopperID: shopperID,
		Amount:    decimal.NewFromInt(2000),
	})
	require.NoError(t, err)

	assert.True(t, result.PreviousBalance.Equal(decimal.NewFromInt(5000)))
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, enums.PayoutStatusPending, result.Status)
	assert.Equal(t, "3-5 business days", result.EstimatedProcessingTime)
	assert.True(t, fix.repo.wallet.AvailableBalance.Equal(decimal.NewFromInt(3000)))

	require.Len(t, fix.repo.payouts, 1)
	assert.Equal(t, enums.PayoutStatusPending, fix.repo.payouts[0].Status)

	require.Len(t, fix.repo.transactions, 1)
	assert.Equal(t, enums.TransactionKindWithdrawal, fix.repo.transactions[0].Kind)
	assert.Equal(t, enums.TransactionStatusPending, fix.repo.transactions[0].Status)
	assert.Equal(t, fix.repo.transactions[0].ID, result.TransactionID)

	require.Len(t, fix.outbox.events, 1)
	assert.Equal(t, enums.EventPayoutRequested, fix.outbox.events[0].EventType)
}

func TestRequestPayoutInsufficientBalance(t *testing.T) {
	shopperID := uuid.New()
	walletRepo := &fakeWalletRepo{
		wallet: &models.Wallet{
			ID:               uuid.New(),
			ShopperID:        shopperID,
			AvailableBalance: decimal.NewFromInt(1500),
			ReservedBalance:  decimal.Zero,
		},
	}
	fix := newEngine(t, walletRepo, &fakeOrdersRepo{}, nil)

	_, err := fix.svc.RequestPayout(context.Background(), PayoutInput{
		ShopperID: shopperID,
		Amount:    decimal.NewFromInt(2000),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeInsufficientBalance, appErr.Code())

	// wallet untouched
	assert.True(t, fix.repo.wallet.AvailableBalance.Equal(decimal.NewFromInt(1500)))
	assert.Empty(t, fix.repo.payouts)
	assert.Empty(t, fix.repo.transactions)
	assert.Empty(t, fix.outbox.events)
}

func TestRequestPayoutRejectsNonPositiveAmount(t *testing.T) {
	fix := newEngine(t, &fakeWalletRepo{}, &fakeOrdersRepo{}, nil)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-100)} {
		_, err := fix.svc.RequestPayout(context.Background(), PayoutInput{
			ShopperID: uuid.New(),
			Amount:    amount,
		})
		require.Error(t, err)
		appErr := pkgerrors.As(err)
		require.NotNil(t, appErr)
		assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	}
}

func TestReserveOrderMissing(t *testing.T) {
	fix := newEngine(t, &fakeWalletRepo{}, &fakeOrdersRepo{}, nil)

	_, err := fix.svc.Reserve(context.Background(), LedgerOperationInput{
		ShopperID: uuid.New(),
		OrderID:   uuid.New(),
		OrderKind: enums.OrderKindStandard,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestOperationRejectsUnknownOrderKind(t *testing.T) {
	fix := newEngine(t, &fakeWalletRepo{}, &fakeOrdersRepo{}, nil)

	_, err := fix.svc.Reserve(context.Background(), LedgerOperationInput{
		ShopperID: uuid.New(),
		OrderID:   uuid.New(),
		OrderKind: enums.OrderKind("bulk"),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}
