package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionConfig is the singleton platform configuration row. The wallet
// engine only reads it; administration happens elsewhere.
type CommissionConfig struct {
	ID                           int             `gorm:"column:id;primaryKey"`
	DeliveryCommissionPercentage decimal.Decimal `gorm:"column:delivery_commission_percentage;type:numeric(5,2);not null"`
	UpdatedAt                    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
