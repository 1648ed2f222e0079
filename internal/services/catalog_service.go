package services

import (
	"context"
	"fmt"
	"log"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"strings"

	"github.com/shopspring/decimal"
)

// ProductInput carries the editable catalog fields. Nil flags keep the
// current value on update and default to true on create.
type ProductInput struct {
	Name       string
	Price      decimal.Decimal
	CostPrice  decimal.Decimal
	Stock      int
	TrackStock *bool
	Category   string
	Supplier   string
	Active     *bool
}

type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ListStockMovements(ctx context.Context, productID uint) ([]models.StockMovement, error)
	ListLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)
}

type catalogService struct {
	store *repository.Store
	cache ReportCache
}

func NewCatalogService(store *repository.Store, cache ReportCache) CatalogService {
	if cache == nil {
		cache = noopCache{}
	}
	return &catalogService{store: store, cache: cache}
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	return s.store.Products.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.store.Products.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "product", id)
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:       strings.TrimSpace(input.Name),
		Price:      input.Price,
		CostPrice:  input.CostPrice,
		Stock:      input.Stock,
		TrackStock: boolOr(input.TrackStock, true),
		Category:   strings.TrimSpace(input.Category),
		Supplier:   strings.TrimSpace(input.Supplier),
		Active:     boolOr(input.Active, true),
	}
	if err := s.store.Products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.invalidateReports(ctx)
	return product, nil
}

// UpdateProduct replaces the editable fields. A stock change is recorded
// as an adjustment movement in the same transaction.
func (s *catalogService) UpdateProduct(ctx context.Context, id uint, input ProductInput) (*models.Product, error) {
	if err := validateProduct(input); err != nil {
		return nil, err
	}

	var updated *models.Product
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		product, err := tx.Products.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, "product", id)
		}

		before := product.Stock
		product.Name = strings.TrimSpace(input.Name)
		product.Price = input.Price
		product.CostPrice = input.CostPrice
		product.Stock = input.Stock
		product.TrackStock = boolOr(input.TrackStock, product.TrackStock)
		product.Category = strings.TrimSpace(input.Category)
		product.Supplier = strings.TrimSpace(input.Supplier)
		product.Active = boolOr(input.Active, product.Active)

		if err := tx.Products.Update(ctx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		if delta := product.Stock - before; delta != 0 {
			movement := &models.StockMovement{
				ProductID:   product.ID,
				Kind:        string(models.MovementAdjustment),
				Delta:       delta,
				StockBefore: before,
				StockAfter:  product.Stock,
				Reason:      "catalog edit",
			}
			if err := tx.Movements.Create(ctx, movement); err != nil {
				return fmt.Errorf("failed to record stock adjustment: %w", err)
			}
		}

		updated = product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReports(ctx)
	return updated, nil
}

// DeleteProduct removes the product unconditionally. Order lines keep their
// name and price snapshot and lose the product reference.
func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	deleted, err := s.store.Products.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	if !deleted {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}

	s.invalidateReports(ctx)
	return nil
}

func (s *catalogService) ListStockMovements(ctx context.Context, productID uint) ([]models.StockMovement, error) {
	return s.store.Movements.GetByProductID(ctx, productID)
}

// ListLowStock returns active tracked products at or below threshold,
// emptiest first.
func (s *catalogService) ListLowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	return s.store.Products.GetLowStock(ctx, threshold, limit)
}

func (s *catalogService) invalidateReports(ctx context.Context) {
	if err := s.cache.InvalidateReports(ctx); err != nil {
		log.Printf("Warning: failed to invalidate report cache: %v", err)
	}
}

func validateProduct(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return validationError("name is required")
	}
	if input.Price.IsNegative() {
		return validationError("price must not be negative")
	}
	if input.CostPrice.IsNegative() {
		return validationError("cost price must not be negative")
	}
	return nil
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
