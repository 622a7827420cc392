package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

var (
	ErrBadSignature    = errors.New("webhook signature mismatch")
	ErrBadPayload      = errors.New("malformed webhook payload")
	ErrPaymentNotFound = errors.New("payment not found")
)

type WebhookService interface {
	// HandleCallback verifies and applies one gateway callback. Replays of a
	// settled payment are a no-op success so the gateway stops retrying.
	HandleCallback(ctx context.Context, body []byte, signature string) error
}

type webhookServiceImpl struct {
	db          *gorm.DB
	secret      string
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	orderSvc    OrderService
	logger      *zap.Logger
}

func NewWebhookService(
	db *gorm.DB,
	secret string,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	orderSvc OrderService,
	logger *zap.Logger,
) WebhookService {
	return &webhookServiceImpl{
		db:          db,
		secret:      secret,
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		orderSvc:    orderSvc,
		logger:      logger,
	}
}

// verifySignature checks the hex-encoded HMAC-SHA256 of the raw body. The
// signature is the sole authentication on this endpoint, so the comparison is
// constant time.
func (s *webhookServiceImpl) verifySignature(body []byte, signature string) error {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return ErrBadSignature
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write(body)

	if !hmac.Equal(mac.Sum(nil), provided) {
		return ErrBadSignature
	}
	return nil
}

func (s *webhookServiceImpl) HandleCallback(ctx context.Context, body []byte, signature string) error {
	if err := s.verifySignature(body, signature); err != nil {
		return err
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if payload.ID == "" || payload.State == "" {
		return fmt.Errorf("%w: missing id or state", ErrBadPayload)
	}

	intent, err := payload.Intent()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	payment, err := s.paymentRepo.FindByExternalBillID(ctx, payload.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("load payment: %w", err)
	}

	// Replay safety: a settled payment has already had its side effects.
	if payment.Status != model.PaymentStatusPending {
		s.logger.Info("webhook replay on settled payment",
			zap.String("bill_id", payload.ID),
			zap.String("status", payment.Status),
		)
		return nil
	}

	switch payload.State {
	case "paid":
	case "failed":
		return s.applyFailure(ctx, payment)
	default:
		return fmt.Errorf("%w: unknown state %q", ErrBadPayload, payload.State)
	}

	paidAmount, err := strconv.ParseFloat(payload.PaidAmount, 64)
	if err != nil {
		return fmt.Errorf("%w: bad paid_amount %q", ErrBadPayload, payload.PaidAmount)
	}
	paidAt := time.Now()
	if t, err := time.Parse(time.RFC3339, payload.PaidAt); err == nil {
		paidAt = t
	}

	return s.applySuccess(ctx, payment, intent, paidAmount, paidAt)
}

func (s *webhookServiceImpl) applyFailure(ctx context.Context, payment *model.Payment) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.MarkFailed(ctx, tx, payment.ID)
	})
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}

	s.logger.Info("payment settlement failed",
		zap.Uint("payment_id", payment.ID),
		zap.String("bill_id", payment.ExternalBillID),
	)
	return nil
}

func (s *webhookServiceImpl) applySuccess(ctx context.Context, payment *model.Payment, intent dto.PaymentIntent, paidAmount float64, paidAt time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch v := intent.(type) {
		case dto.SubscriptionIntent:
			if done, err := s.completePayment(ctx, tx, payment, paidAmount, paidAt); err != nil || !done {
				return err
			}
			return s.activateSubscription(ctx, tx, v)
		case dto.PurchaseIntent:
			return s.settlePurchase(ctx, tx, payment, v, paidAmount, paidAt)
		default:
			return fmt.Errorf("%w: unknown payment intent", ErrBadPayload)
		}
	})
}

// completePayment marks the payment settled. false without error means a
// concurrent delivery of the same callback won and already applied the side
// effects.
func (s *webhookServiceImpl) completePayment(ctx context.Context, tx *gorm.DB, payment *model.Payment, paidAmount float64, paidAt time.Time) (bool, error) {
	err := s.paymentRepo.MarkCompleted(ctx, tx, payment.ID, paidAmount, paidAt)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mark payment completed: %w", err)
	}
	return true, nil
}

func (s *webhookServiceImpl) activateSubscription(ctx context.Context, tx *gorm.DB, intent dto.SubscriptionIntent) error {
	start := time.Now()
	end := start.AddDate(0, 1, 0)

	if err := s.userRepo.ActivateSubscription(ctx, tx, intent.UserID, intent.Plan, start, end); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: subscription user %d", ErrBadPayload, intent.UserID)
		}
		return fmt.Errorf("activate subscription: %w", err)
	}

	s.logger.Info("subscription activated",
		zap.Uint("user_id", intent.UserID),
		zap.String("plan", intent.Plan),
		zap.Time("until", end),
	)
	return nil
}

func (s *webhookServiceImpl) settlePurchase(ctx context.Context, tx *gorm.DB, payment *model.Payment, intent dto.PurchaseIntent, paidAmount float64, paidAt time.Time) error {
	order, err := s.orderRepo.FindByPaymentID(ctx, tx, payment.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("load order: %w", err)
	}

	// The sweeper may have auto-cancelled the order before the callback
	// landed. The payment still has to settle terminally so the gateway
	// stops retrying; the charge is reconciled out of band.
	if order.Status == model.StatusCancelled {
		if err := s.paymentRepo.MarkFailed(ctx, tx, payment.ID); err != nil {
			return fmt.Errorf("mark payment failed: %w", err)
		}
		s.logger.Warn("paid callback for auto-cancelled order",
			zap.Uint("order_id", order.ID),
			zap.Uint("payment_id", payment.ID),
		)
		return nil
	}
	if order.Status != model.StatusPending {
		// Another delivery of this callback already settled the order.
		return nil
	}

	if done, err := s.completePayment(ctx, tx, payment, paidAmount, paidAt); err != nil || !done {
		return err
	}

	if err := s.orderSvc.ApplyTransition(ctx, tx, order, model.StatusPaid, StatusUpdate{
		UpdatedBy: "payment-gateway",
	}); err != nil {
		return err
	}

	if err := s.productRepo.AdjustStock(ctx, tx, intent.ProductID, -intent.Quantity); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	s.logger.Info("order settled",
		zap.Uint("order_id", order.ID),
		zap.Uint("product_id", intent.ProductID),
		zap.Int("quantity", intent.Quantity),
	)
	return nil
}
