package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrIllegalTransition = errors.New("illegal status transition")
)

// StatusUpdate carries the optional fields of a transition request.
type StatusUpdate struct {
	Description string
	Location    string
	UpdatedBy   string
}

type OrderService interface {
	UpdateStatus(ctx context.Context, req *dto.UpdateStatusRequest) (*model.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*dto.OrderResponse, error)

	// ApplyTransition runs one status transition inside the caller's
	// transaction: status update, derived fields, history row and buyer plus
	// seller notifications, all or nothing.
	ApplyTransition(ctx context.Context, tx *gorm.DB, order *model.Order, next model.OrderStatus, opts StatusUpdate) error
}

type orderServiceImpl struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	productRepo      repository.ProductRepository
	paymentRepo      repository.PaymentRepository
	notificationRepo repository.NotificationRepository
	logger           *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	paymentRepo repository.PaymentRepository,
	notificationRepo repository.NotificationRepository,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		db:               db,
		orderRepo:        orderRepo,
		productRepo:      productRepo,
		paymentRepo:      paymentRepo,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *orderServiceImpl) UpdateStatus(ctx context.Context, req *dto.UpdateStatusRequest) (*model.Order, error) {
	next := model.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, req.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}

		return s.ApplyTransition(ctx, tx, order, next, StatusUpdate{
			Description: req.Description,
			Location:    req.Location,
			UpdatedBy:   req.UpdatedBy,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByID(ctx, req.OrderID)
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID uint) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}

	history, err := s.orderRepo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}

	var payment *model.Payment
	if order.PaymentID != nil {
		payment, err = s.paymentRepo.FindByID(ctx, *order.PaymentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("load payment: %w", err)
		}
	}

	return &dto.OrderResponse{Order: order, Payment: payment, History: history}, nil
}

func (s *orderServiceImpl) ApplyTransition(ctx context.Context, tx *gorm.DB, order *model.Order, next model.OrderStatus, opts StatusUpdate) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if !order.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, order.Status, next)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status": next,
	}

	switch next {
	case model.StatusPaid:
		updates["payment_status"] = model.PaymentStatusPaid
		updates["payment_date"] = now
	case model.StatusDelivered:
		updates["actual_delivery"] = now
	case model.StatusCancelled:
		if order.PaymentStatus == model.PaymentStatusPending {
			updates["payment_status"] = model.PaymentStatusFailed
		}
	}

	// Guarded on the status the caller read, so a concurrent writer (webhook
	// vs sweeper racing on the same pending order) makes this a no-match.
	if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, order.Status, updates); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	updatedBy := opts.UpdatedBy
	if updatedBy == "" {
		updatedBy = "system"
	}
	description := opts.Description
	if description == "" {
		description = next.Description()
	}

	if err := s.orderRepo.AppendHistory(ctx, tx, &model.OrderStatusHistory{
		OrderID:     order.ID,
		Status:      next,
		Description: description,
		Location:    opts.Location,
		UpdatedBy:   updatedBy,
	}); err != nil {
		return fmt.Errorf("append status history: %w", err)
	}

	product, err := s.productRepo.FindForUpdate(ctx, tx, order.ProductID)
	if err != nil {
		return fmt.Errorf("load product for notification: %w", err)
	}

	orderID := order.ID
	title := fmt.Sprintf("Order #%d %s", order.ID, next)
	for _, recipient := range []uint{order.BuyerID, product.SellerID} {
		if err := s.notificationRepo.Create(ctx, tx, &model.Notification{
			UserID:  recipient,
			OrderID: &orderID,
			Type:    "order_status",
			Title:   title,
			Message: description,
		}); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
	}

	s.logger.Info("order status updated",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)),
		zap.String("updated_by", updatedBy),
	)

	return nil
}
