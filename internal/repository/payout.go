package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

var activePayoutStatuses = []string{
	model.PayoutStatusPending,
	model.PayoutStatusProcessing,
	model.PayoutStatusCompleted,
}

type PayoutRepository interface {
	// HasActive reports whether the order already has a payout in a live
	// state. Callers must run this and Create in the same transaction.
	HasActive(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, payout *model.Payout) error
	ListBySeller(ctx context.Context, sellerID uint) ([]*model.Payout, error)
	DeleteBySeller(ctx context.Context, tx *gorm.DB, sellerID uint) error
}

type payoutRepoImpl struct {
	db *gorm.DB
}

func NewPayoutRepository(db *gorm.DB) PayoutRepository {
	return &payoutRepoImpl{
		db: db,
	}
}

func (r *payoutRepoImpl) HasActive(ctx context.Context, tx *gorm.DB, orderID uint) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Payout{}).
		Where("order_id = ?", orderID).
		Where("status IN ?", activePayoutStatuses).
		Count(&count).Error

	return count > 0, err
}

func (r *payoutRepoImpl) Create(ctx context.Context, tx *gorm.DB, payout *model.Payout) error {
	return tx.WithContext(ctx).Create(payout).Error
}

func (r *payoutRepoImpl) ListBySeller(ctx context.Context, sellerID uint) ([]*model.Payout, error) {
	var payouts []*model.Payout
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at desc").
		Find(&payouts).Error

	if err != nil {
		return nil, err
	}

	return payouts, nil
}

func (r *payoutRepoImpl) DeleteBySeller(ctx context.Context, tx *gorm.DB, sellerID uint) error {
	return tx.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Delete(&model.Payout{}).Error
}
