package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/client"
	"github.com/AfiqSafri/livesales-sub002/internal/dto"
	"github.com/AfiqSafri/livesales-sub002/internal/model"
	"github.com/AfiqSafri/livesales-sub002/internal/repository"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CheckoutService interface {
	// CreateOrder opens a purchase intent: a gateway bill plus a pending
	// Order and Payment pair linked by reference. Settlement happens later
	// through the webhook.
	CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)

	// CreateSubscriptionBill opens a subscription charge for a user; the
	// webhook activates the subscription window on settlement.
	CreateSubscriptionBill(ctx context.Context, req *dto.SubscribeRequest) (*dto.CheckoutResponse, error)
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	billingClient client.BillingClient
	baseURL       string
	productRepo   repository.ProductRepository
	orderRepo     repository.OrderRepository
	paymentRepo   repository.PaymentRepository
	userRepo      repository.UserRepository
	logger        *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	billingClient client.BillingClient,
	baseURL string,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		billingClient: billingClient,
		baseURL:       baseURL,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		logger:        logger,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product.Stock < req.Quantity {
		return nil, ErrInsufficientStock
	}

	buyer, err := s.userRepo.FindByID(ctx, req.BuyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load buyer: %w", err)
	}

	totalAmount := float64(req.Quantity)*product.Price + product.ShippingPrice
	reference := uuid.NewString()

	bill, err := s.billingClient.CreateBill(ctx, &client.CreateBillRequest{
		Amount:      totalAmount,
		Description: fmt.Sprintf("Order: %s x%d", product.Name, req.Quantity),
		PayerEmail:  buyer.Email,
		Reference:   reference,
		Reference1:  strconv.FormatUint(uint64(product.ID), 10),
		Reference2:  strconv.Itoa(req.Quantity),
		Reference3:  strconv.FormatUint(uint64(product.SellerID), 10),
		CallbackURL: s.baseURL + "/api/payment/webhook",
	})
	if err != nil {
		return nil, fmt.Errorf("billing api create bill: %w", err)
	}

	var orderID uint
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment := &model.Payment{
			Amount:         totalAmount,
			Currency:       "MYR",
			Status:         model.PaymentStatusPending,
			ExternalBillID: bill.BillID,
			Reference:      reference,
		}
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}

		order := &model.Order{
			ProductID:        product.ID,
			BuyerID:          buyer.ID,
			Quantity:         req.Quantity,
			UnitPrice:        product.Price,
			ShippingPrice:    product.ShippingPrice,
			TotalAmount:      totalAmount,
			Status:           model.StatusPending,
			PaymentStatus:    model.PaymentStatusPending,
			PaymentMethod:    "gateway",
			PaymentID:        &payment.ID,
			RecipientName:    req.RecipientName,
			RecipientPhone:   req.RecipientPhone,
			ShippingAddress:  req.ShippingAddress,
			ShippingCity:     req.ShippingCity,
			ShippingPostcode: req.ShippingPostcode,
		}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		orderID = order.ID

		return s.orderRepo.AppendHistory(ctx, tx, &model.OrderStatusHistory{
			OrderID:     order.ID,
			Status:      model.StatusPending,
			Description: model.StatusPending.Description(),
			UpdatedBy:   "system",
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("checkout opened",
		zap.Uint("order_id", orderID),
		zap.String("bill_id", bill.BillID),
		zap.Float64("amount", totalAmount),
	)

	return &dto.CheckoutResponse{
		OrderID: orderID,
		BillID:  bill.BillID,
		PayURL:  bill.PayURL,
	}, nil
}

func (s *checkoutServiceImpl) CreateSubscriptionBill(ctx context.Context, req *dto.SubscribeRequest) (*dto.CheckoutResponse, error) {
	if req.Plan == "" {
		return nil, fmt.Errorf("plan is required")
	}

	user, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	reference := uuid.NewString()

	bill, err := s.billingClient.CreateBill(ctx, &client.CreateBillRequest{
		Amount:      req.Amount,
		Description: fmt.Sprintf("Subscription: %s", req.Plan),
		PayerEmail:  user.Email,
		Reference:   reference,
		Reference1:  "subscription",
		Reference2:  strconv.FormatUint(uint64(user.ID), 10),
		Reference3:  req.Plan,
		CallbackURL: s.baseURL + "/api/payment/webhook",
	})
	if err != nil {
		return nil, fmt.Errorf("billing api create bill: %w", err)
	}

	userID := user.ID
	payment := &model.Payment{
		UserID:         &userID,
		Amount:         req.Amount,
		Currency:       "MYR",
		Status:         model.PaymentStatusPending,
		ExternalBillID: bill.BillID,
		Reference:      reference,
	}
	if err := s.paymentRepo.Create(ctx, s.db, payment); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	s.logger.Info("subscription bill opened",
		zap.Uint("user_id", user.ID),
		zap.String("plan", req.Plan),
		zap.String("bill_id", bill.BillID),
	)

	return &dto.CheckoutResponse{
		BillID: bill.BillID,
		PayURL: bill.PayURL,
	}, nil
}
