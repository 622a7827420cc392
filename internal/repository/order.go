package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Order, error)
	FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Order, error)

	// UpdateStatus applies the given column updates only when the order is
	// still in expected status; returns gorm.ErrRecordNotFound when another
	// writer got there first.
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, expected model.OrderStatus, updates map[string]interface{}) error

	AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error
	ListHistory(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error)

	// FindStalePendingIDs returns ids of unpaid pending orders created before
	// the cutoff. Only ids: each order is re-read under its own transaction.
	FindStalePendingIDs(ctx context.Context, cutoff time.Time) ([]uint, error)

	// ListPayoutEligible returns the seller's paid orders in a fulfillment
	// status that do not yet have an active payout.
	ListPayoutEligible(ctx context.Context, sellerID uint) ([]*model.Order, error)

	CountPaidAwaitingShipment(ctx context.Context, sellerID uint) (int64, error)

	DeleteByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error
	DeleteHistoryByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error
	DeleteReceiptsByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByPaymentID(ctx context.Context, tx *gorm.DB, paymentID uint) (*model.Order, error) {
	var order model.Order
	err := tx.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, expected model.OrderStatus, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Where("status = ?", expected).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) AppendHistory(ctx context.Context, tx *gorm.DB, entry *model.OrderStatusHistory) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *orderRepoImpl) ListHistory(ctx context.Context, orderID uint) ([]*model.OrderStatusHistory, error) {
	var entries []*model.OrderStatusHistory
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at asc, id asc").
		Find(&entries).Error

	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *orderRepoImpl) FindStalePendingIDs(ctx context.Context, cutoff time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("status = ?", model.StatusPending).
		Where("payment_status = ?", model.PaymentStatusPending).
		Where("created_at < ?", cutoff).
		Pluck("id", &ids).Error

	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *orderRepoImpl) ListPayoutEligible(ctx context.Context, sellerID uint) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = orders.product_id").
		Where("products.seller_id = ?", sellerID).
		Where("orders.payment_status = ?", model.PaymentStatusPaid).
		Where("orders.status IN ?", []model.OrderStatus{
			model.StatusProcessing,
			model.StatusShipped,
			model.StatusDelivered,
		}).
		Where(`NOT EXISTS (
			SELECT 1 FROM payouts
			WHERE payouts.order_id = orders.id
			AND payouts.status IN ?
		)`, []string{
			model.PayoutStatusPending,
			model.PayoutStatusProcessing,
			model.PayoutStatusCompleted,
		}).
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepoImpl) CountPaidAwaitingShipment(ctx context.Context, sellerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Joins("JOIN products ON products.id = orders.product_id").
		Where("products.seller_id = ?", sellerID).
		Where("orders.payment_status = ?", model.PaymentStatusPaid).
		Where("orders.status = ?", model.StatusPaid).
		Count(&count).Error

	return count, err
}

func (r *orderRepoImpl) DeleteByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error {
	return tx.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&model.Order{}).Error
}

func (r *orderRepoImpl) DeleteHistoryByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error {
	return tx.WithContext(ctx).
		Where("order_id IN (?)", tx.Model(&model.Order{}).Select("id").Where("buyer_id = ?", buyerID)).
		Delete(&model.OrderStatusHistory{}).Error
}

func (r *orderRepoImpl) DeleteReceiptsByBuyer(ctx context.Context, tx *gorm.DB, buyerID uint) error {
	return tx.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&model.Receipt{}).Error
}
