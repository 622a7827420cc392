package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)

	// ActivateSubscription opens a one-month window for the user and clears
	// any running trial.
	ActivateSubscription(ctx context.Context, tx *gorm.DB, userID uint, tier string, start, end time.Time) error

	UpdateReminderFrequency(ctx context.Context, userID uint, frequency model.ReminderFrequency) error
	SetLastReminderSent(ctx context.Context, userID uint, at time.Time) error

	// SellersAwaitingShipment returns sellers with at least one paid order
	// that has not yet moved past the paid status.
	SellersAwaitingShipment(ctx context.Context) ([]*model.User, error)

	Delete(ctx context.Context, tx *gorm.DB, userID uint) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&user).Error

	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) ActivateSubscription(ctx context.Context, tx *gorm.DB, userID uint, tier string, start, end time.Time) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"is_subscribed":      true,
			"subscription_tier":  tier,
			"subscription_start": start,
			"subscription_end":   end,
			"is_trial":           false,
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepoImpl) UpdateReminderFrequency(ctx context.Context, userID uint, frequency model.ReminderFrequency) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reminder_frequency": string(frequency),
			"updated_at":         time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepoImpl) SetLastReminderSent(ctx context.Context, userID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_reminder_sent_at", at).Error
}

func (r *userRepoImpl) SellersAwaitingShipment(ctx context.Context) ([]*model.User, error) {
	var sellers []*model.User
	err := r.db.WithContext(ctx).
		Distinct("users.*").
		Joins("JOIN products ON products.seller_id = users.id").
		Joins("JOIN orders ON orders.product_id = products.id").
		Where("orders.payment_status = ?", model.PaymentStatusPaid).
		Where("orders.status = ?", model.StatusPaid).
		Find(&sellers).Error

	if err != nil {
		return nil, err
	}

	return sellers, nil
}

func (r *userRepoImpl) Delete(ctx context.Context, tx *gorm.DB, userID uint) error {
	return tx.WithContext(ctx).
		Where("id = ?", userID).
		Delete(&model.User{}).Error
}
