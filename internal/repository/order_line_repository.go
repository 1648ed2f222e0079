package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type OrderLineRepository interface {
	Create(ctx context.Context, line *models.OrderLine) error
	GetByID(ctx context.Context, id uint) (*models.OrderLine, error)
	GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderLine, error)
	Delete(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) error
	CountByOrderID(ctx context.Context, orderID uint) (int64, error)
}

type orderLineRepository struct {
	db *gorm.DB
}

func NewOrderLineRepository(db *gorm.DB) OrderLineRepository {
	return &orderLineRepository{db: db}
}

func (r *orderLineRepository) Create(ctx context.Context, line *models.OrderLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *orderLineRepository) GetByID(ctx context.Context, id uint) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).First(&line, id).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *orderLineRepository) GetByOrderID(ctx context.Context, orderID uint) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id ASC").Find(&lines).Error
	return lines, err
}

func (r *orderLineRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.OrderLine{}, id).Error
}

// DeleteByIDs removes exactly the given lines.
func (r *orderLineRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.OrderLine{}).Error
}

func (r *orderLineRepository) CountByOrderID(ctx context.Context, orderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderLine{}).Where("order_id = ?", orderID).Count(&count).Error
	return count, err
}
