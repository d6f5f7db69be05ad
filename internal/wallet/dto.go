package wallet

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// LedgerOperationInput identifies one reserve/settle/cancel call. ShopperID
// comes from the authenticated token, never the request body.
type LedgerOperationInput struct {
	ShopperID uuid.UUID
	OrderID   uuid.UUID
	OrderKind enums.OrderKind
}

// ReserveResult reports the wallet state after funds are held for shopping.
type ReserveResult struct {
	OrderID            uuid.UUID       `json:"order_id"`
	OrderKind          enums.OrderKind `json:"order_kind"`
	AmountReserved     decimal.Decimal `json:"amount_reserved"`
	NewReservedBalance decimal.Decimal `json:"new_reserved_balance"`
}

// SettleResult reports the earnings breakdown applied on delivery.
type SettleResult struct {
	OrderID             uuid.UUID       `json:"order_id"`
	OrderKind           enums.OrderKind `json:"order_kind"`
	TotalEarnings       decimal.Decimal `json:"total_earnings"`
	PlatformFeeDeducted decimal.Decimal `json:"platform_fee_deducted"`
	EarningsAdded       decimal.Decimal `json:"earnings_added"`
	CommissionPct       decimal.Decimal `json:"commission_pct"`
	ReservedReleased    decimal.Decimal `json:"reserved_released"`
	RefundAmount        decimal.Decimal `json:"refund_amount"`
	NewAvailableBalance decimal.Decimal `json:"new_available_balance"`
	NewReservedBalance  decimal.Decimal `json:"new_reserved_balance"`
}

// CancelResult reports the reservation rollback and the refund raised for
// the customer.
type CancelResult struct {
	OrderID            uuid.UUID       `json:"order_id"`
	OrderKind          enums.OrderKind `json:"order_kind"`
	RefundID           uuid.UUID       `json:"refund_id"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`
	NewReservedBalance decimal.Decimal `json:"new_reserved_balance"`
}

// PayoutInput is a shopper's request to withdraw available funds.
type PayoutInput struct {
	ShopperID uuid.UUID
	Amount    decimal.Decimal
}

// PayoutResult echoes the created request plus the balance movement.
type PayoutResult struct {
	PayoutID                uuid.UUID          `json:"payout_id"`
	TransactionID           uuid.UUID          `json:"transaction_id"`
	Amount                  decimal.Decimal    `json:"amount"`
	PreviousBalance         decimal.Decimal    `json:"previous_balance"`
	NewBalance              decimal.Decimal    `json:"new_balance"`
	Status                  enums.PayoutStatus `json:"status"`
	EstimatedProcessingTime string             `json:"estimated_processing_time"`
}

// TransactionList is one page of ledger history plus the cursor for the next.
type TransactionList struct {
	Items      []TransactionView `json:"items"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

// TransactionView is the read shape for one ledger entry.
type TransactionView struct {
	ID          uuid.UUID               `json:"id"`
	Amount      decimal.Decimal         `json:"amount"`
	Kind        enums.TransactionKind   `json:"kind"`
	Status      enums.TransactionStatus `json:"status"`
	OrderKind   *enums.OrderKind        `json:"order_kind,omitempty"`
	OrderID     *uuid.UUID              `json:"order_id,omitempty"`
	Description string                  `json:"description"`
	CreatedAt   string                  `json:"created_at"`
}

// PayoutList is one page of payout requests plus the cursor for the next.
type PayoutList struct {
	Items      []PayoutView `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// PayoutView is the read shape for one payout request.
type PayoutView struct {
	ID        uuid.UUID          `json:"id"`
	Amount    decimal.Decimal    `json:"amount"`
	Status    enums.PayoutStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
}

// BalanceView is the read shape for the wallet itself.
type BalanceView struct {
	WalletID         uuid.UUID       `json:"wallet_id"`
	ShopperID        uuid.UUID       `json:"shopper_id"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	ReservedBalance  decimal.Decimal `json:"reserved_balance"`
}
