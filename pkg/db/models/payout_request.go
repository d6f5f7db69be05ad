package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// PayoutRequest records a shopper's request to withdraw available balance.
// Created as pending here; terminal transitions belong to the external
// payout processor.
type PayoutRequest struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID  uuid.UUID          `gorm:"column:wallet_id;type:uuid;not null;index"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Amount    decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Status    enums.PayoutStatus `gorm:"column:status;type:payout_status_enum;not null;default:'pending'"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
