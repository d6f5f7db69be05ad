package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// Refund is raised when a shopper cancels an in-progress order and the
// customer is owed the reserved order total back.
type Refund struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID          `gorm:"column:order_id;type:uuid;not null;index"`
	Amount      decimal.Decimal    `gorm:"column:amount;type:numeric(14,2);not null"`
	Status      enums.RefundStatus `gorm:"column:status;type:refund_status_enum;not null;default:'pending'"`
	Reason      string             `gorm:"column:reason;not null"`
	UserID      uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	GeneratedBy string             `gorm:"column:generated_by;not null"`
	Paid        bool               `gorm:"column:paid;not null;default:false"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
}
