package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

var (
	ErrNotSellerOrder  = errors.New("order does not belong to seller")
	ErrOrderNotPayable = errors.New("order is not eligible for payout")
	ErrDuplicatePayout = errors.New("order already has an active payout")
)

type PayoutService interface {
	// PendingPayouts lists the seller's paid, in-fulfillment orders that do
	// not yet have an active payout, with the fee split precomputed.
	PendingPayouts(ctx context.Context, sellerID uint) (*dto.PendingPayoutsResponse, error)

	// RequestPayout creates the payout for one order. Check and insert run
	// in one transaction so concurrent requests cannot double-pay.
	RequestPayout(ctx context.Context, sellerID, orderID uint) (*model.Payout, error)

	// History lists the seller's payouts, newest first.
	History(ctx context.Context, sellerID uint) ([]*model.Payout, error)
}

type payoutServiceImpl struct {
	db          *gorm.DB
	feeRate     decimal.Decimal
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	payoutRepo  repository.PayoutRepository
	logger      *zap.Logger
}

func NewPayoutService(
	db *gorm.DB,
	feeRate string,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	payoutRepo repository.PayoutRepository,
	logger *zap.Logger,
) (PayoutService, error) {
	rate, err := decimal.NewFromString(feeRate)
	if err != nil {
		return nil, fmt.Errorf("parse platform fee rate %q: %w", feeRate, err)
	}

	return &payoutServiceImpl{
		db:          db,
		feeRate:     rate,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		payoutRepo:  payoutRepo,
		logger:      logger,
	}, nil
}

// split divides an order total into (platformFee, sellerAmount). The two
// always add back up to the total: the fee is rounded and the seller gets the
// remainder.
func (s *payoutServiceImpl) split(totalAmount float64) (float64, float64) {
	total := decimal.NewFromFloat(totalAmount)
	fee := total.Mul(s.feeRate).Round(2)
	seller := total.Sub(fee)

	feeF, _ := fee.Float64()
	sellerF, _ := seller.Float64()
	return feeF, sellerF
}

func (s *payoutServiceImpl) PendingPayouts(ctx context.Context, sellerID uint) (*dto.PendingPayoutsResponse, error) {
	orders, err := s.orderRepo.ListPayoutEligible(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list payout-eligible orders: %w", err)
	}

	resp := &dto.PendingPayoutsResponse{
		Orders:     make([]dto.PendingPayoutOrder, 0, len(orders)),
		TotalCount: len(orders),
	}

	for _, order := range orders {
		fee, sellerAmount := s.split(order.TotalAmount)

		productName := ""
		if product, err := s.productRepo.FindByID(ctx, order.ProductID); err == nil {
			productName = product.Name
		}

		resp.Orders = append(resp.Orders, dto.PendingPayoutOrder{
			OrderID:      order.ID,
			ProductName:  productName,
			TotalAmount:  order.TotalAmount,
			PlatformFee:  fee,
			SellerAmount: sellerAmount,
			Status:       string(order.Status),
		})
	}

	return resp, nil
}

func (s *payoutServiceImpl) History(ctx context.Context, sellerID uint) ([]*model.Payout, error) {
	payouts, err := s.payoutRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	return payouts, nil
}

func (s *payoutServiceImpl) RequestPayout(ctx context.Context, sellerID, orderID uint) (*model.Payout, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	owned, err := s.productRepo.BelongsToSeller(ctx, order.ProductID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("check product ownership: %w", err)
	}
	if !owned {
		return nil, ErrNotSellerOrder
	}

	if order.PaymentStatus != model.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order %d is not paid", ErrOrderNotPayable, orderID)
	}

	_, sellerAmount := s.split(order.TotalAmount)

	payout := &model.Payout{
		OrderID:  orderID,
		SellerID: sellerID,
		Amount:   sellerAmount,
		Status:   model.PayoutStatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.payoutRepo.HasActive(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("check active payout: %w", err)
		}
		if exists {
			return ErrDuplicatePayout
		}

		return s.payoutRepo.Create(ctx, tx, payout)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout requested",
		zap.Uint("order_id", orderID),
		zap.Uint("seller_id", sellerID),
		zap.Float64("amount", sellerAmount),
	)

	return payout, nil
}
