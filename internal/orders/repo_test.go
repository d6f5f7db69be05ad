package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  total NUMERIC NOT NULL,
  service_fee NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  shopper_id TEXT,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS quick_batch_orders (
  id TEXT PRIMARY KEY,
  total NUMERIC NOT NULL,
  service_fee NUMERIC NOT NULL DEFAULT 0,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  shopper_id TEXT,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS restaurant_orders (
  id TEXT PRIMARY KEY,
  total NUMERIC NOT NULL,
  delivery_fee NUMERIC NOT NULL DEFAULT 0,
  shopper_id TEXT,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func TestRepositoryFindStandardOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopperID := uuid.New()
	order := models.StandardOrder{
		ID:          uuid.New(),
		Total:       decimal.NewFromFloat(48.50),
		ServiceFee:  decimal.NewFromFloat(3.00),
		DeliveryFee: decimal.NewFromFloat(5.00),
		ShopperID:   &shopperID,
		CustomerID:  uuid.New(),
		Status:      "shopping",
	}
	require.NoError(t, db.Create(&order).Error)

	found, err := repo.FindStandardOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.True(t, found.Total.Equal(decimal.NewFromFloat(48.50)))
	assert.True(t, found.ServiceFee.Equal(decimal.NewFromFloat(3.00)))
	require.NotNil(t, found.ShopperID)
	assert.Equal(t, shopperID, *found.ShopperID)
}

func TestRepositoryFindRestaurantOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := models.RestaurantOrder{
		ID:          uuid.New(),
		Total:       decimal.NewFromFloat(32.00),
		DeliveryFee: decimal.NewFromFloat(6.00),
		CustomerID:  uuid.New(),
		Status:      "delivering",
	}
	require.NoError(t, db.Create(&order).Error)

	found, err := repo.FindRestaurantOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.DeliveryFee.Equal(decimal.NewFromFloat(6.00)))
}

func TestRepositoryFindMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.FindQuickBatchOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
