package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/AfiqSafri/livesales-sub002/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Product, error)
	BelongsToSeller(ctx context.Context, productID, sellerID uint) (bool, error)

	// AdjustStock atomically applies the delta; a decrement that would drive
	// stock negative fails without writing.
	AdjustStock(ctx context.Context, tx *gorm.DB, productID uint, delta int) error

	DeleteBySeller(ctx context.Context, tx *gorm.DB, sellerID uint) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) BelongsToSeller(ctx context.Context, productID, sellerID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Where("seller_id = ?", sellerID).
		Count(&count).Error

	return count > 0, err
}

func (r *productRepoImpl) AdjustStock(ctx context.Context, tx *gorm.DB, productID uint, delta int) error {
	query := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID)

	if delta < 0 {
		query = query.Where("stock >= ?", -delta)
	}

	result := query.Updates(map[string]interface{}{
		"stock":      gorm.Expr("stock + ?", delta),
		"updated_at": time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", productID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *productRepoImpl) DeleteBySeller(ctx context.Context, tx *gorm.DB, sellerID uint) error {
	return tx.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Delete(&model.Product{}).Error
}
