package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories bound to one connection or transaction.
type Store struct {
	db         *gorm.DB
	Products   ProductRepository
	Orders     OrderRepository
	OrderLines OrderLineRepository
	Movements  StockMovementRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Products:   NewProductRepository(db),
		Orders:     NewOrderRepository(db),
		OrderLines: NewOrderLineRepository(db),
		Movements:  NewStockMovementRepository(db),
	}
}

// Transaction runs fn against a Store bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
