package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type ProductFilter struct {
	ActiveOnly bool
	Category   string
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) (bool, error)
	GetLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
	AdjustStock(ctx context.Context, id uint, delta int, allowNegative bool) (int, bool, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Order("name ASC")
	if filter.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete reports whether a row was removed.
func (r *productRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

func (r *productRepository) GetLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("track_stock = ? AND active = ? AND stock <= ?", true, true, threshold).
		Order("stock ASC").Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// AdjustStock adds delta to the product's stock in a single UPDATE and
// returns the resulting stock. When allowNegative is false the update only
// applies if the result stays at or above zero; ok is false when nothing
// was updated (missing product or not enough stock).
func (r *productRepository) AdjustStock(ctx context.Context, id uint, delta int, allowNegative bool) (int, bool, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id)
	if !allowNegative {
		q = q.Where("stock + ? >= 0", delta)
	}
	res := q.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, false, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, false, nil
	}

	var stock int
	err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Pluck("stock", &stock).Error
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}
