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

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidFrequency = errors.New("invalid reminder frequency")
)

type NotificationService interface {
	Notify(ctx context.Context, tx *gorm.DB, userID uint, orderID *uint, notifType, title, message string) error
	ListByUser(ctx context.Context, userID uint) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, userID uint) error

	// SendReminders emails each seller with paid orders awaiting shipment,
	// at most once per invocation and only when their configured frequency
	// says one is due. The returned settings let the polling worker adapt
	// its own cadence.
	SendReminders(ctx context.Context) (*dto.ReminderCheckResponse, error)

	GetReminderFrequency(ctx context.Context, userID uint) (*dto.ReminderFrequencyResponse, error)
	SetReminderFrequency(ctx context.Context, userID uint, frequency string) (*dto.ReminderFrequencyResponse, error)
}

type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	orderRepo        repository.OrderRepository
	mailer           client.Mailer
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	mailer client.Mailer,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		orderRepo:        orderRepo,
		mailer:           mailer,
		logger:           logger,
	}
}

func (s *notificationServiceImpl) Notify(ctx context.Context, tx *gorm.DB, userID uint, orderID *uint, notifType, title, message string) error {
	return s.notificationRepo.Create(ctx, tx, &model.Notification{
		UserID:  userID,
		OrderID: orderID,
		Type:    notifType,
		Title:   title,
		Message: message,
	})
}

func (s *notificationServiceImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id, userID uint) error {
	err := s.notificationRepo.MarkRead(ctx, id, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("notification %d: %w", id, err)
	}
	return err
}

func (s *notificationServiceImpl) SendReminders(ctx context.Context) (*dto.ReminderCheckResponse, error) {
	sellers, err := s.userRepo.SellersAwaitingShipment(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sellers awaiting shipment: %w", err)
	}

	resp := &dto.ReminderCheckResponse{
		Success:        true,
		SellerSettings: make([]dto.SellerReminderSetting, 0, len(sellers)),
	}

	now := time.Now()
	for _, seller := range sellers {
		resp.TotalSellersChecked++

		pending, err := s.orderRepo.CountPaidAwaitingShipment(ctx, seller.ID)
		if err != nil {
			s.logger.Error("count pending orders failed",
				zap.Uint("seller_id", seller.ID),
				zap.Error(err),
			)
			continue
		}

		freq := model.ReminderFrequency(seller.ReminderFrequency)
		resp.SellerSettings = append(resp.SellerSettings, dto.SellerReminderSetting{
			SellerID:          seller.ID,
			ReminderFrequency: seller.ReminderFrequency,
			PendingOrders:     int(pending),
		})

		interval, active := freq.Interval()
		if !active {
			continue
		}
		if seller.LastReminderSentAt != nil && now.Sub(*seller.LastReminderSentAt) < interval {
			continue
		}

		if err := s.emailSeller(ctx, seller, int(pending)); err != nil {
			s.logger.Warn("reminder email failed",
				zap.Uint("seller_id", seller.ID),
				zap.Error(err),
			)
			continue
		}

		if err := s.userRepo.SetLastReminderSent(ctx, seller.ID, now); err != nil {
			s.logger.Error("record reminder timestamp failed",
				zap.Uint("seller_id", seller.ID),
				zap.Error(err),
			)
		}
		resp.TotalEmailsSent++
	}

	return resp, nil
}

func (s *notificationServiceImpl) emailSeller(ctx context.Context, seller *model.User, pending int) error {
	if seller.Email == "" {
		return errors.New("seller has no email address")
	}

	subject := fmt.Sprintf("You have %d order(s) waiting to ship", pending)
	text := fmt.Sprintf("Hi %s, %d paid order(s) are waiting for you to ship. Please process them soon.", seller.Name, pending)
	html := fmt.Sprintf("<p>%s</p>", text)

	return s.mailer.Send(ctx, seller.Email, subject, html, text)
}

func (s *notificationServiceImpl) GetReminderFrequency(ctx context.Context, userID uint) (*dto.ReminderFrequencyResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	return &dto.ReminderFrequencyResponse{
		UserID:            user.ID,
		ReminderFrequency: user.ReminderFrequency,
	}, nil
}

func (s *notificationServiceImpl) SetReminderFrequency(ctx context.Context, userID uint, frequency string) (*dto.ReminderFrequencyResponse, error) {
	freq := model.ReminderFrequency(frequency)
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrequency, frequency)
	}

	if err := s.userRepo.UpdateReminderFrequency(ctx, userID, freq); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update reminder frequency: %w", err)
	}

	return &dto.ReminderFrequencyResponse{
		UserID:            userID,
		ReminderFrequency: frequency,
	}, nil
}
