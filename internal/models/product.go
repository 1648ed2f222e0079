package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	Name       string          `json:"name" gorm:"not null;index"`
	Price      decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	CostPrice  decimal.Decimal `json:"costPrice" gorm:"type:decimal(10,2);not null"`
	Stock      int             `json:"stock" gorm:"not null"`
	TrackStock bool            `json:"trackStock" gorm:"not null"`
	Category   string          `json:"category" gorm:"index"`
	Supplier   string          `json:"supplier"`
	Active     bool            `json:"active" gorm:"not null"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// IsLowStock reports whether a tracked product sits at or below threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.TrackStock && p.Stock <= threshold
}
