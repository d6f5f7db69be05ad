package payloads

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// CommissionRevenueEvent is emitted when a shopper starts shopping a
// standard order and the platform books the prospective commission.
type CommissionRevenueEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	ShopperID  uuid.UUID       `json:"shopper_id"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// PlatformFeeEvent is emitted at settlement with the commission actually
// retained from the shopper's earnings.
type PlatformFeeEvent struct {
	OrderID       uuid.UUID       `json:"order_id"`
	ShopperID     uuid.UUID       `json:"shopper_id"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	Commission    decimal.Decimal `json:"commission"`
	CommissionPct decimal.Decimal `json:"commission_pct"`
}

// PayoutRequestedEvent notifies the payout processor that a withdrawal is
// waiting.
type PayoutRequestedEvent struct {
	PayoutID  uuid.UUID          `json:"payout_id"`
	WalletID  uuid.UUID          `json:"wallet_id"`
	ShopperID uuid.UUID          `json:"shopper_id"`
	Amount    decimal.Decimal    `json:"amount"`
	Status    enums.PayoutStatus `json:"status"`
}
