package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/IhuzaApp/groceryrw-backend/pkg/enums"
	pkgerrors "github.com/IhuzaApp/groceryrw-backend/pkg/errors"
)

// Service resolves the fee columns for any order kind into one shape.
type Service interface {
	WithRepository(repo Repository) Service
	ResolveCharges(ctx context.Context, kind enums.OrderKind, orderID uuid.UUID) (*OrderCharges, error)
}

type service struct {
	repo Repository
}

// NewService wires an orders service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithRepository(repo Repository) Service {
	if repo == nil {
		return s
	}
	return &service{repo: repo}
}

func (s *service) ResolveCharges(ctx context.Context, kind enums.OrderKind, orderID uuid.UUID) (*OrderCharges, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	switch kind {
	case enums.OrderKindStandard:
		order, err := s.repo.FindStandardOrder(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err, kind, orderID)
		}
		return &OrderCharges{
			OrderID:     order.ID,
			Kind:        kind,
			Total:       order.Total,
			ServiceFee:  order.ServiceFee,
			DeliveryFee: order.DeliveryFee,
			ShopperID:   order.ShopperID,
			CustomerID:  order.CustomerID,
			Status:      order.Status,
		}, nil

	case enums.OrderKindQuickBatch:
		order, err := s.repo.FindQuickBatchOrder(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err, kind, orderID)
		}
		return &OrderCharges{
			OrderID:     order.ID,
			Kind:        kind,
			Total:       order.Total,
			ServiceFee:  order.ServiceFee,
			DeliveryFee: order.DeliveryFee,
			ShopperID:   order.ShopperID,
			CustomerID:  order.CustomerID,
			Status:      order.Status,
		}, nil

	case enums.OrderKindRestaurant:
		order, err := s.repo.FindRestaurantOrder(ctx, orderID)
		if err != nil {
			return nil, notFoundOr(err, kind, orderID)
		}
		return &OrderCharges{
			OrderID:     order.ID,
			Kind:        kind,
			Total:       order.Total,
			DeliveryFee: order.DeliveryFee,
			ShopperID:   order.ShopperID,
			CustomerID:  order.CustomerID,
			Status:      order.Status,
		}, nil

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported order kind %q", kind))
	}
}

func notFoundOr(err error, kind enums.OrderKind, orderID uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s order %s not found", kind, orderID))
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up order")
}
