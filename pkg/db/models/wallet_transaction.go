package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// WalletTransaction is an append-only ledger entry. Rows are never updated;
// balance history is reconstructed by replaying them in order.
//
// The related-order reference is a tagged union realized as three nullable
// columns; at most one is set, and none is set for withdrawals.
type WalletTransaction struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID          uuid.UUID               `gorm:"column:wallet_id;type:uuid;not null;index"`
	Amount            decimal.Decimal         `gorm:"column:amount;type:numeric(14,2);not null"`
	Kind              enums.TransactionKind   `gorm:"column:kind;type:transaction_kind_enum;not null"`
	Status            enums.TransactionStatus `gorm:"column:status;type:transaction_status_enum;not null;default:'completed'"`
	StandardOrderID   *uuid.UUID              `gorm:"column:standard_order_id;type:uuid"`
	QuickBatchOrderID *uuid.UUID              `gorm:"column:quick_batch_order_id;type:uuid"`
	RestaurantOrderID *uuid.UUID              `gorm:"column:restaurant_order_id;type:uuid"`
	Description       string                  `gorm:"column:description;not null;default:''"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
}

// OrderReference returns the order kind and id this entry is tied to, or
// false when the entry has no order (withdrawals).
func (t WalletTransaction) OrderReference() (enums.OrderKind, uuid.UUID, bool) {
	switch {
	case t.StandardOrderID != nil:
		return enums.OrderKindStandard, *t.StandardOrderID, true
	case t.QuickBatchOrderID != nil:
		return enums.OrderKindQuickBatch, *t.QuickBatchOrderID, true
	case t.RestaurantOrderID != nil:
		return enums.OrderKindRestaurant, *t.RestaurantOrderID, true
	default:
		return "", uuid.Nil, false
	}
}

// SetOrderReference assigns the matching nullable column for the given kind.
func (t *WalletTransaction) SetOrderReference(kind enums.OrderKind, orderID uuid.UUID) {
	switch kind {
	case enums.OrderKindStandard:
		t.StandardOrderID = &orderID
	case enums.OrderKindQuickBatch:
		t.QuickBatchOrderID = &orderID
	case enums.OrderKindRestaurant:
		t.RestaurantOrderID = &orderID
	}
}
