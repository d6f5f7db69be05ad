package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds one shopper's funds split between a withdrawable available
// balance and a reserved balance held against in-flight orders. Rows are
// created lazily on first reserve and never deleted.
type Wallet struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopperID        uuid.UUID       `gorm:"column:shopper_id;type:uuid;not null;uniqueIndex"`
	AvailableBalance decimal.Decimal `gorm:"column:available_balance;type:numeric(14,2);not null;default:0"`
	ReservedBalance  decimal.Decimal `gorm:"column:reserved_balance;type:numeric(14,2);not null;default:0"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
