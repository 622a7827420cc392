package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error
	FindByID(ctx context.Context, id uint) (*model.Payment, error)
	FindByExternalBillID(ctx context.Context, billID string) (*model.Payment, error)

	// MarkCompleted sets paid fields only while the payment is still pending;
	// returns gorm.ErrRecordNotFound if it was already settled.
	MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID uint, paidAmount float64, paidAt time.Time) error
	MarkFailed(ctx context.Context, tx *gorm.DB, paymentID uint) error

	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, tx *gorm.DB, payment *model.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByID(ctx context.Context, id uint) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) FindByExternalBillID(ctx context.Context, billID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("external_bill_id = ?", billID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, paymentID uint, paidAmount float64, paidAt time.Time) error {
	result := tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Where("status = ?", model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":      model.PaymentStatusCompleted,
			"paid_amount": paidAmount,
			"paid_at":     paidAt,
			"updated_at":  time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentRepoImpl) MarkFailed(ctx context.Context, tx *gorm.DB, paymentID uint) error {
	return tx.WithContext(ctx).Model(&model.Payment{}).
		Where("id = ?", paymentID).
		Where("status = ?", model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusFailed,
			"updated_at": time.Now(),
		}).Error
}

func (r *paymentRepoImpl) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error {
	return tx.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.Payment{}).Error
}
