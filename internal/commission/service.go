package commission

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/pkg/logger"
)

// Service resolves the delivery commission percentage applied at settlement.
// The config row is read on every settlement so admin changes take effect
// without a restart; any read failure falls back to the default rate.
type Service interface {
	WithRepository(repo Repository) Service
	DeliveryCommissionPercentage(ctx context.Context) decimal.Decimal
}

type service struct {
	repo       Repository
	logg       *logger.Logger
	defaultPct decimal.Decimal
}

// NewService wires a commission service with the provided repository.
func NewService(repo Repository, logg *logger.Logger, defaultPercentage int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("commission repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if defaultPercentage < 0 {
		return nil, fmt.Errorf("default commission percentage must not be negative")
	}
	return &service{
		repo:       repo,
		logg:       logg,
		defaultPct: decimal.NewFromInt(int64(defaultPercentage)),
	}, nil
}

func (s *service) WithRepository(repo Repository) Service {
	if repo == nil {
		return s
	}
	return &service{repo: repo, logg: s.logg, defaultPct: s.defaultPct}
}

func (s *service) DeliveryCommissionPercentage(ctx context.Context) decimal.Decimal {
	cfg, err := s.repo.FindConfig(ctx)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "commission config read failed, using default rate")
		} else {
			s.logg.Warn(ctx, "commission config missing, using default rate")
		}
		return s.defaultPct
	}
	if cfg.DeliveryCommissionPercentage.IsNegative() {
		s.logg.Warn(ctx, "commission config is negative, using default rate")
		return s.defaultPct
	}
	return cfg.DeliveryCommissionPercentage
}
