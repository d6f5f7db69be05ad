package orders

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
)

// OrderCharges is the unified fee view the wallet engine settles against.
// Restaurant orders have no service fee; the field stays zero for them.
type OrderCharges struct {
	OrderID     uuid.UUID       `json:"order_id"`
	Kind        enums.OrderKind `json:"kind"`
	Total       decimal.Decimal `json:"total"`
	ServiceFee  decimal.Decimal `json:"service_fee"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	ShopperID   *uuid.UUID      `json:"shopper_id,omitempty"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	Status      string          `json:"status"`
}
