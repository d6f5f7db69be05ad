package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
)

// Repository reads the order tables owned by the order subsystem.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStandardOrder(ctx context.Context, id uuid.UUID) (*models.StandardOrder, error)
	FindQuickBatchOrder(ctx context.Context, id uuid.UUID) (*models.QuickBatchOrder, error)
	FindRestaurantOrder(ctx context.Context, id uuid.UUID) (*models.RestaurantOrder, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStandardOrder(ctx context.Context, id uuid.UUID) (*models.StandardOrder, error) {
	var order models.StandardOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindQuickBatchOrder(ctx context.Context, id uuid.UUID) (*models.QuickBatchOrder, error) {
	var order models.QuickBatchOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindRestaurantOrder(ctx context.Context, id uuid.UUID) (*models.RestaurantOrder, error) {
	var order models.RestaurantOrder
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
