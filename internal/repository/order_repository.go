package repository

import (
	"context"
	"restaurant_pos/internal/models"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error)
	GetWithLines(ctx context.Context, id uint) (*models.Order, error)
	GetOpenByTable(ctx context.Context, tableNumber int) (*models.Order, error)
	ListOpen(ctx context.Context) ([]models.Order, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time, status string) ([]models.Order, error)
	AddToTotal(ctx context.Context, id uint, amount decimal.Decimal) error
	MarkClosed(ctx context.Context, id uint, closedAt time.Time) error
	Delete(ctx context.Context, id uint) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate locks the order row until the surrounding transaction
// ends. Call it inside Store.Transaction.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetWithLines(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLinesByID).
		Preload("Lines.Product").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetOpenByTable(ctx context.Context, tableNumber int) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLinesByID).
		Preload("Lines.Product").
		Where("table_number = ? AND status = ?", tableNumber, string(models.OrderOpen)).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListOpen(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", orderLinesByID).
		Where("status = ?", string(models.OrderOpen)).
		Order("table_number ASC").
		Find(&orders).Error
	return orders, err
}

// GetByDateRange returns orders created within [startDate, endDate], oldest
// first, with their lines. An empty status matches every order.
func (r *orderRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time, status string) ([]models.Order, error) {
	var orders []models.Order
	q := r.db.WithContext(ctx).
		Preload("Lines", orderLinesByID).
		Where("created_at BETWEEN ? AND ?", startDate, endDate)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at ASC").Order("id ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) AddToTotal(ctx context.Context, id uint, amount decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("total", gorm.Expr("total + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) MarkClosed(ctx context.Context, id uint, closedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":    string(models.OrderClosed),
			"closed_at": closedAt,
		}).Error
}

func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Order{}, id).Error
}

func orderLinesByID(db *gorm.DB) *gorm.DB {
	return db.Order("order_lines.id ASC")
}
