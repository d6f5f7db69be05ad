package commission

import (
	"context"

	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/pkg/db/models"
)

const singletonConfigID = 1

// Repository reads the platform commission configuration.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindConfig(ctx context.Context) (*models.CommissionConfig, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a commission repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindConfig(ctx context.Context) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	if err := r.db.WithContext(ctx).Where("id = ?", singletonConfigID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
