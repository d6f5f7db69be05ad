package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/internal/commission"
	"github.com/IhuzaApp/groceryrw-backend/internal/orders"
	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
	pkgerrors "github.com/IhuzaApp/groceryrw-backend/pkg/errors"
	"github.com/IhuzaApp/groceryrw-backend/pkg/metrics"
	"github.com/IhuzaApp/groceryrw-backend/pkg/outbox"
	"github.com/IhuzaApp/groceryrw-backend/pkg/outbox/payloads"
	"github.com/IhuzaApp/groceryrw-backend/pkg/pagination"
)

const cancelRefundReason = "Order cancelled by shopper"

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the settlement engine: the three ledger operations that move
// money between a shopper's reserved and available balances, plus the
// payout flow that debits available balance into a withdrawal request.
type Service interface {
	Reserve(ctx context.Context, input LedgerOperationInput) (*ReserveResult, error)
	Settle(ctx context.Context, input LedgerOperationInput) (*SettleResult, error)
	Cancel(ctx context.Context, input LedgerOperationInput) (*CancelResult, error)
	RequestPayout(ctx context.Context, input PayoutInput) (*PayoutResult, error)
	GetBalance(ctx context.Context, shopperID uuid.UUID) (*BalanceView, error)
	ListTransactions(ctx context.Context, shopperID uuid.UUID, params pagination.Params) (*TransactionList, error)
	ListPayouts(ctx context.Context, shopperID uuid.UUID, params pagination.Params) (*PayoutList, error)
}

type service struct {
	repo           Repository
	ordersRepo     orders.Repository
	ordersSvc      orders.Service
	commissionRepo commission.Repository
	commissionSvc  commission.Service
	tx             txRunner
	outbox         outboxPublisher
	metrics        *metrics.WalletMetrics
	payoutEstimate string
}

// Config carries the service dependencies.
type Config struct {
	Repo           Repository
	OrdersRepo     orders.Repository
	OrdersService  orders.Service
	CommissionRepo commission.Repository
	Commission     commission.Service
	Tx             txRunner
	Outbox         outboxPublisher
	Metrics        *metrics.WalletMetrics
	PayoutEstimate string
}

// NewService builds the settlement engine with the required dependencies.
func NewService(cfg Config) (Service, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if cfg.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if cfg.OrdersService == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if cfg.CommissionRepo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if cfg.Commission == nil {
		return nil, fmt.Errorf("commission service required")
	}
	if cfg.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if cfg.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:           cfg.Repo,
		ordersRepo:     cfg.OrdersRepo,
		ordersSvc:      cfg.OrdersService,
		commissionRepo: cfg.CommissionRepo,
		commissionSvc:  cfg.Commission,
		tx:             cfg.Tx,
		outbox:         cfg.Outbox,
		metrics:        cfg.Metrics,
		payoutEstimate: cfg.PayoutEstimate,
	}, nil
}

func (s *service) validateOperation(input LedgerOperationInput) error {
	if input.ShopperID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity missing")
	}
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.OrderKind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported order kind %q", input.OrderKind))
	}
	return nil
}

// Reserve holds the order total against the shopper's wallet when shopping
// starts. The wallet is created lazily here; settle and cancel require it
// to already exist.
func (s *service) Reserve(ctx context.Context, input LedgerOperationInput) (*ReserveResult, error) {
	done := s.observe(enums.LedgerOperationReserve)

	if err := s.validateOperation(input); err != nil {
		return nil, done(err)
	}

	var result *ReserveResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		resolver := s.ordersSvc.WithRepository(s.ordersRepo.WithTx(tx))

		charges, err := resolver.ResolveCharges(ctx, input.OrderKind, input.OrderID)
		if err != nil {
			return err
		}

		wallet, err := repo.FindOrCreateForUpdate(ctx, input.ShopperID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet")
		}

		wallet.ReservedBalance = wallet.ReservedBalance.Add(charges.Total)
		if err := repo.SaveBalances(ctx, wallet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving wallet")
		}

		// Only standard orders leave a reserve entry in the ledger. The
		// quick-batch and restaurant flows mutate the balance without a
		// record; auditors reconciling those kinds will find gaps.
		if input.OrderKind == enums.OrderKindStandard {
			entry := models.WalletTransaction{
				ID:       uuid.New(),
				WalletID: wallet.ID,
				Amount:   charges.Total,
				Kind:     enums.TransactionKindReserve,
				Status:   enums.TransactionStatusCompleted,
				Description: fmt.Sprintf("Reserved %s for order %s",
					charges.Total.StringFixed(2), input.OrderID),
			}
			entry.SetOrderReference(input.OrderKind, input.OrderID)
			if err := repo.AppendTransactions(ctx, []models.WalletTransaction{entry}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending reserve transaction")
			}

			event := outbox.DomainEvent{
				EventType:     enums.EventCommissionRevenueRecorded,
				AggregateType: enums.AggregateStandardOrder,
				AggregateID:   input.OrderID,
				Actor:         shopperActor(input.ShopperID),
				Version:       1,
				Data: payloads.CommissionRevenueEvent{
					OrderID:    input.OrderID,
					ShopperID:  input.ShopperID,
					OrderTotal: charges.Total,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing commission revenue event")
			}
		}

		result = &ReserveResult{
			OrderID:            input.OrderID,
			OrderKind:          input.OrderKind,
			AmountReserved:     charges.Total,
			NewReservedBalance: wallet.ReservedBalance,
		}
		return nil
	})
	if err != nil {
		return nil, done(err)
	}
	done(nil)
	return result, nil
}

// Settle credits net earnings on delivery and, for standard orders,
// releases the reservation.
func (s *service) Settle(ctx context.Context, input LedgerOperationInput) (*SettleResult, error) {
	done := s.observe(enums.LedgerOperationSettle)

	if err := s.validateOperation(input); err != nil {
		return nil, done(err)
	}

	var result *SettleResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		resolver := s.ordersSvc.WithRepository(s.ordersRepo.WithTx(tx))
		policy := s.commissionSvc.WithRepository(s.commissionRepo.WithTx(tx))

		charges, err := resolver.ResolveCharges(ctx, input.OrderKind, input.OrderID)
		if err != nil {
			return err
		}

		wallet, err := repo.FindByShopperIDForUpdate(ctx, input.ShopperID)
		if err != nil {
			return walletNotFoundOr(err, input.ShopperID)
		}

		totalEarnings := charges.DeliveryFee
		if input.OrderKind != enums.OrderKindRestaurant {
			totalEarnings = charges.ServiceFee.Add(charges.DeliveryFee)
		}
		commissionPct := policy.DeliveryCommissionPercentage(ctx)
		platformFee := totalEarnings.Mul(commissionPct).Div(oneHundred).Round(2)
		netEarnings := totalEarnings.Sub(platformFee)

		wallet.AvailableBalance = wallet.AvailableBalance.Add(netEarnings)

		released := decimal.Zero
		refundAmount := decimal.Zero
		if input.OrderKind == enums.OrderKindStandard {
			reservedBefore := wallet.ReservedBalance
			released = decimal.Min(reservedBefore, charges.Total)
			wallet.ReservedBalance = reservedBefore.Sub(released)
			refundAmount = decimal.Max(decimal.Zero, charges.Total.Sub(reservedBefore))
		}

		if err := repo.SaveBalances(ctx, wallet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving wallet")
		}

		entries := []models.WalletTransaction{{
			ID:       uuid.New(),
			WalletID: wallet.ID,
			Amount:   netEarnings,
			Kind:     enums.TransactionKindEarnings,
			Status:   enums.TransactionStatusCompleted,
			Description: fmt.Sprintf("Earnings of %s for order %s",
				netEarnings.StringFixed(2), input.OrderID),
		}}
		entries[0].SetOrderReference(input.OrderKind, input.OrderID)

		if input.OrderKind == enums.OrderKindStandard {
			expense := models.WalletTransaction{
				ID:       uuid.New(),
				WalletID: wallet.ID,
				Amount:   released,
				Kind:     enums.TransactionKindExpense,
				Status:   enums.TransactionStatusCompleted,
				Description: fmt.Sprintf("Reservation of %s released for order %s",
					released.StringFixed(2), input.OrderID),
			}
			expense.SetOrderReference(input.OrderKind, input.OrderID)
			entries = append(entries, expense)

			if refundAmount.IsPositive() {
				refund := models.WalletTransaction{
					ID:       uuid.New(),
					WalletID: wallet.ID,
					Amount:   refundAmount,
					Kind:     enums.TransactionKindRefund,
					Status:   enums.TransactionStatusCompleted,
					Description: fmt.Sprintf("Refund of %s for order %s",
						refundAmount.StringFixed(2), input.OrderID),
				}
				refund.SetOrderReference(input.OrderKind, input.OrderID)
				entries = append(entries, refund)
			}
		}

		if err := repo.AppendTransactions(ctx, entries); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending settlement transactions")
		}

		if input.OrderKind == enums.OrderKindStandard {
			event := outbox.DomainEvent{
				EventType:     enums.EventPlatformFeeRecorded,
				AggregateType: enums.AggregateStandardOrder,
				AggregateID:   input.OrderID,
				Actor:         shopperActor(input.ShopperID),
				Version:       1,
				Data: payloads.PlatformFeeEvent{
					OrderID:       input.OrderID,
					ShopperID:     input.ShopperID,
					TotalEarnings: totalEarnings,
					Commission:    platformFee,
					CommissionPct: commissionPct,
				},
			}
			if err := s.outbox.Emit(ctx, tx, event); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing platform fee event")
			}
		}

		result = &SettleResult{
			OrderID:             input.OrderID,
			OrderKind:           input.OrderKind,
			TotalEarnings:       totalEarnings,
			PlatformFeeDeducted: platformFee,
			EarningsAdded:       netEarnings,
			CommissionPct:       commissionPct,
			ReservedReleased:    released,
			RefundAmount:        refundAmount,
			NewAvailableBalance: wallet.AvailableBalance,
			NewReservedBalance:  wallet.ReservedBalance,
		}
		return nil
	})
	if err != nil {
		return nil, done(err)
	}
	done(nil)
	return result, nil
}

// Cancel rolls back the reservation when a shopper abandons an in-progress
// order and raises a pending refund toward the customer.
//
// The subtraction is deliberately unclamped: if part of the reservation was
// already consumed, the balance can go negative. Settle clamps, cancel does
// not; reconciliation treats a negative reserved balance as a signal.
func (s *service) Cancel(ctx context.Context, input LedgerOperationInput) (*CancelResult, error) {
	done := s.observe(enums.LedgerOperationCancel)

	if err := s.validateOperation(input); err != nil {
		return nil, done(err)
	}

	var result *CancelResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		resolver := s.ordersSvc.WithRepository(s.ordersRepo.WithTx(tx))

		charges, err := resolver.ResolveCharges(ctx, input.OrderKind, input.OrderID)
		if err != nil {
			return err
		}

		wallet, err := repo.FindByShopperIDForUpdate(ctx, input.ShopperID)
		if err != nil {
			return walletNotFoundOr(err, input.ShopperID)
		}

		wallet.ReservedBalance = wallet.ReservedBalance.Sub(charges.Total)
		if err := repo.SaveBalances(ctx, wallet); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving wallet")
		}

		refund := models.Refund{
			ID:          uuid.New(),
			OrderID:     input.OrderID,
			Amount:      charges.Total,
			Status:      enums.RefundStatusPending,
			Reason:      cancelRefundReason,
			UserID:      charges.CustomerID,
			GeneratedBy: string(enums.ActorRoleShopper),
		}
		if err := repo.CreateRefund(ctx, &refund); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating refund")
		}

		if input.OrderKind == enums.OrderKindStandard {
			entry := models.WalletTransaction{
				ID:       uuid.New(),
				WalletID: wallet.ID,
				Amount:   charges.Total,
				Kind:     enums.TransactionKindRefund,
				Status:   enums.TransactionStatusCompleted,
				Description: fmt.Sprintf("Refund of %s for cancelled order %s",
					charges.Total.StringFixed(2), input.OrderID),
			}
			entry.SetOrderReference(input.OrderKind, input.OrderID)
			if err := repo.AppendTransactions(ctx, []models.WalletTransaction{entry}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending refund transaction")
			}
		}

		result = &CancelResult{
			OrderID:            input.OrderID,
			OrderKind:          input.OrderKind,
			RefundID:           refund.ID,
			RefundAmount:       charges.Total,
			NewReservedBalance: wallet.ReservedBalance,
		}
		return nil
	})
	if err != nil {
		return nil, done(err)
	}
	done(nil)
	return result, nil
}

// RequestPayout moves available funds into a pending withdrawal. The debit
// runs as a guarded statement so the balance check cannot race a
// concurrent settle or payout.
func (s *service) RequestPayout(ctx context.Context, input PayoutInput) (*PayoutResult, error) {
	done := s.observePayout()

	if input.ShopperID == uuid.Nil {
		return nil, done(pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity missing"))
	}
	if !input.Amount.IsPositive() {
		return nil, done(pkgerrors.New(pkgerrors.CodeValidation, "payout amount must be positive"))
	}

	var result *PayoutResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		wallet, err := repo.FindByShopperIDForUpdate(ctx, input.ShopperID)
		if err != nil {
			return walletNotFoundOr(err, input.ShopperID)
		}

		previous := wallet.AvailableBalance
		debited, err := repo.DebitAvailableGuarded(ctx, wallet.ID, input.Amount)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting wallet")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodeInsufficientBalance,
				fmt.Sprintf("payout of %s exceeds available balance %s",
					input.Amount.StringFixed(2), previous.StringFixed(2)))
		}

		payout := models.PayoutRequest{
			ID:       uuid.New(),
			WalletID: wallet.ID,
			UserID:   input.ShopperID,
			Amount:   input.Amount,
			Status:   enums.PayoutStatusPending,
		}
		if err := repo.CreatePayoutRequest(ctx, &payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating payout request")
		}

		entry := models.WalletTransaction{
			ID:       uuid.New(),
			WalletID: wallet.ID,
			Amount:   input.Amount,
			Kind:     enums.TransactionKindWithdrawal,
			Status:   enums.TransactionStatusPending,
			Description: fmt.Sprintf("Withdrawal request of %s",
				input.Amount.StringFixed(2)),
		}
		if err := repo.AppendTransactions(ctx, []models.WalletTransaction{entry}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "appending withdrawal transaction")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPayoutRequested,
			AggregateType: enums.AggregatePayoutRequest,
			AggregateID:   payout.ID,
			Actor:         shopperActor(input.ShopperID),
			Version:       1,
			Data: payloads.PayoutRequestedEvent{
				PayoutID:  payout.ID,
				WalletID:  wallet.ID,
				ShopperID: input.ShopperID,
				Amount:    input.Amount,
				Status:    payout.Status,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing payout requested event")
		}

		result = &PayoutResult{
			PayoutID:                payout.ID,
			TransactionID:           entry.ID,
			Amount:                  input.Amount,
			PreviousBalance:         previous,
			NewBalance:              previous.Sub(input.Amount),
			Status:                  payout.Status,
			EstimatedProcessingTime: s.payoutEstimate,
		}
		return nil
	})
	if err != nil {
		return nil, done(err)
	}
	done(nil)
	return result, nil
}

func (s *service) GetBalance(ctx context.Context, shopperID uuid.UUID) (*BalanceView, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity missing")
	}
	wallet, err := s.repo.FindByShopperID(ctx, shopperID)
	if err != nil {
		return nil, walletNotFoundOr(err, shopperID)
	}
	return &BalanceView{
		WalletID:         wallet.ID,
		ShopperID:        wallet.ShopperID,
		AvailableBalance: wallet.AvailableBalance,
		ReservedBalance:  wallet.ReservedBalance,
	}, nil
}

func (s *service) ListTransactions(ctx context.Context, shopperID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity missing")
	}
	wallet, err := s.repo.FindByShopperID(ctx, shopperID)
	if err != nil {
		return nil, walletNotFoundOr(err, shopperID)
	}

	entries, err := s.repo.ListTransactions(ctx, wallet.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &TransactionList{Items: make([]TransactionView, 0, len(entries))}
	for i, entry := range entries {
		if i == limit {
			cursor := pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: entries[i-1].CreatedAt,
				ID:        entries[i-1].ID,
			})
			list.NextCursor = &cursor
			break
		}
		view := TransactionView{
			ID:          entry.ID,
			Amount:      entry.Amount,
			Kind:        entry.Kind,
			Status:      entry.Status,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
		}
		if kind, orderID, ok := entry.OrderReference(); ok {
			view.OrderKind = &kind
			view.OrderID = &orderID
		}
		list.Items = append(list.Items, view)
	}
	return list, nil
}

func (s *service) ListPayouts(ctx context.Context, shopperID uuid.UUID, params pagination.Params) (*PayoutList, error) {
	if shopperID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "shopper identity missing")
	}
	wallet, err := s.repo.FindByShopperID(ctx, shopperID)
	if err != nil {
		return nil, walletNotFoundOr(err, shopperID)
	}

	payouts, err := s.repo.ListPayoutRequests(ctx, wallet.ID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing payout requests")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	list := &PayoutList{Items: make([]PayoutView, 0, len(payouts))}
	for i, payout := range payouts {
		if i == limit {
			cursor := pagination.EncodeCursor(pagination.Cursor{
				CreatedAt: payouts[i-1].CreatedAt,
				ID:        payouts[i-1].ID,
			})
			list.NextCursor = &cursor
			break
		}
		list.Items = append(list.Items, PayoutView{
			ID:        payout.ID,
			Amount:    payout.Amount,
			Status:    payout.Status,
			CreatedAt: payout.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return list, nil
}

func (s *service) observe(op enums.LedgerOperation) func(error) error {
	start := time.Now()
	return func(err error) error {
		s.metrics.ObserveDuration(string(op), time.Since(start))
		if err != nil {
			s.metrics.IncFailure(string(op))
		} else {
			s.metrics.IncSuccess(string(op))
		}
		return err
	}
}

func (s *service) observePayout() func(error) error {
	start := time.Now()
	return func(err error) error {
		s.metrics.ObserveDuration("payout", time.Since(start))
		if err != nil {
			s.metrics.IncFailure("payout")
		} else {
			s.metrics.IncSuccess("payout")
		}
		return err
	}
}

func walletNotFoundOr(err error, shopperID uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("wallet for shopper %s not found", shopperID))
	}
	if appErr := pkgerrors.As(err); appErr != nil {
		return appErr
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet")
}

func shopperActor(shopperID uuid.UUID) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: shopperID,
		Role:   string(enums.ActorRoleShopper),
	}
}
