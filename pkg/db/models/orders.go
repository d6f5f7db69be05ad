package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The order tables are owned by the order subsystem; the wallet service only
// reads the fee columns it needs to settle a shopper. Three shapes exist
// because quick-batch and restaurant orders carry different fee structures.

// StandardOrder is a regular storefront order picked by a shopper.
type StandardOrder struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	ServiceFee  decimal.Decimal `gorm:"column:service_fee;type:numeric(14,2);not null;default:0"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(14,2);not null;default:0"`
	ShopperID   *uuid.UUID      `gorm:"column:shopper_id;type:uuid;index"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null"`
	Status      string          `gorm:"column:status;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the order subsystem's table naming.
func (StandardOrder) TableName() string { return "orders" }

// QuickBatchOrder is a multi-stop batched order.
type QuickBatchOrder struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	ServiceFee  decimal.Decimal `gorm:"column:service_fee;type:numeric(14,2);not null;default:0"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(14,2);not null;default:0"`
	ShopperID   *uuid.UUID      `gorm:"column:shopper_id;type:uuid;index"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null"`
	Status      string          `gorm:"column:status;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the order subsystem's table naming.
func (QuickBatchOrder) TableName() string { return "quick_batch_orders" }

// RestaurantOrder is a restaurant delivery; it has no service fee.
type RestaurantOrder struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Total       decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`
	DeliveryFee decimal.Decimal `gorm:"column:delivery_fee;type:numeric(14,2);not null;default:0"`
	ShopperID   *uuid.UUID      `gorm:"column:shopper_id;type:uuid;index"`
	CustomerID  uuid.UUID       `gorm:"column:customer_id;type:uuid;not null"`
	Status      string          `gorm:"column:status;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the order subsystem's table naming.
func (RestaurantOrder) TableName() string { return "restaurant_orders" }
