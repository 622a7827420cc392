package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/client"
	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

type SweeperService interface {
	// CancelUnpaid times out pending orders older than the cutoff. One bad
	// order never aborts the batch.
	CancelUnpaid(ctx context.Context) (*dto.SweepResponse, error)
}

type sweeperServiceImpl struct {
	db          *gorm.DB
	cutoff      time.Duration
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	orderSvc    OrderService
	mailer      client.Mailer
	logger      *zap.Logger
}

func NewSweeperService(
	db *gorm.DB,
	cutoff time.Duration,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderSvc OrderService,
	mailer client.Mailer,
	logger *zap.Logger,
) SweeperService {
	return &sweeperServiceImpl{
		db:          db,
		cutoff:      cutoff,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		orderSvc:    orderSvc,
		mailer:      mailer,
		logger:      logger,
	}
}

func (s *sweeperServiceImpl) CancelUnpaid(ctx context.Context) (*dto.SweepResponse, error) {
	cutoffAt := time.Now().Add(-s.cutoff)

	ids, err := s.orderRepo.FindStalePendingIDs(ctx, cutoffAt)
	if err != nil {
		return nil, fmt.Errorf("find stale pending orders: %w", err)
	}

	cancelled := 0
	for _, id := range ids {
		if err := s.cancelOne(ctx, id); err != nil {
			s.logger.Error("auto-cancel failed, skipping order",
				zap.Uint("order_id", id),
				zap.Error(err),
			)
			continue
		}
		cancelled++
	}

	s.logger.Info("unpaid order sweep finished",
		zap.Int("candidates", len(ids)),
		zap.Int("cancelled", cancelled),
	)

	return &dto.SweepResponse{
		Success:         true,
		CancelledOrders: cancelled,
		Timestamp:       time.Now(),
	}, nil
}

func (s *sweeperServiceImpl) cancelOne(ctx context.Context, orderID uint) error {
	var buyerID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Re-read under the transaction: a paid callback may have landed
		// between the scan and now.
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}
		if order.Status != model.StatusPending || order.PaymentStatus != model.PaymentStatusPending {
			return errors.New("order no longer pending")
		}
		buyerID = order.BuyerID

		if err := s.orderSvc.ApplyTransition(ctx, tx, order, model.StatusCancelled, StatusUpdate{
			Description: fmt.Sprintf("Order auto-cancelled: payment not received within %s", s.cutoff),
			UpdatedBy:   "system",
		}); err != nil {
			return err
		}

		if err := s.productRepo.AdjustStock(ctx, tx, order.ProductID, order.Quantity); err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	// Best effort only; the cancellation is already committed.
	s.notifyBuyer(ctx, orderID, buyerID)
	return nil
}

func (s *sweeperServiceImpl) notifyBuyer(ctx context.Context, orderID, buyerID uint) {
	buyer, err := s.userRepo.FindByID(ctx, buyerID)
	if err != nil || buyer.Email == "" {
		return
	}

	subject := fmt.Sprintf("Order #%d cancelled", orderID)
	text := fmt.Sprintf("Your order #%d was cancelled because payment was not received in time.", orderID)
	html := fmt.Sprintf("<p>%s</p>", text)

	if err := s.mailer.Send(ctx, buyer.Email, subject, html, text); err != nil {
		s.logger.Warn("cancellation email failed",
			zap.Uint("order_id", orderID),
			zap.String("to", buyer.Email),
			zap.Error(err),
		)
	}
}
