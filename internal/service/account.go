package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

type AccountService interface {
	// RemoveAccount deletes a user and everything hanging off them, in
	// dependency order, inside one transaction.
	RemoveAccount(ctx context.Context, userID uint) error
}

type accountServiceImpl struct {
	db               *gorm.DB
	userRepo         repository.UserRepository
	orderRepo        repository.OrderRepository
	paymentRepo      repository.PaymentRepository
	productRepo      repository.ProductRepository
	payoutRepo       repository.PayoutRepository
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

func NewAccountService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	productRepo repository.ProductRepository,
	payoutRepo repository.PayoutRepository,
	notificationRepo repository.NotificationRepository,
	logger *zap.Logger,
) AccountService {
	return &accountServiceImpl{
		db:               db,
		userRepo:         userRepo,
		orderRepo:        orderRepo,
		paymentRepo:      paymentRepo,
		productRepo:      productRepo,
		payoutRepo:       payoutRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *accountServiceImpl) RemoveAccount(ctx context.Context, userID uint) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("load user: %w", err)
	}

	// Children before parents: history and receipts reference orders, orders
	// reference payments and products, everything references the user.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.DeleteHistoryByBuyer(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete status history: %w", err)
		}
		if err := s.payoutRepo.DeleteBySeller(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete payouts: %w", err)
		}
		if err := s.notificationRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete notifications: %w", err)
		}
		if err := s.orderRepo.DeleteReceiptsByBuyer(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete receipts: %w", err)
		}
		if err := s.orderRepo.DeleteByBuyer(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete orders: %w", err)
		}
		if err := s.paymentRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := s.productRepo.DeleteBySeller(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete products: %w", err)
		}
		if err := s.userRepo.Delete(ctx, tx, userID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("account removed", zap.Uint("user_id", userID))
	return nil
}
