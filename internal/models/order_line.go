package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine keeps a name and price snapshot so historical tabs survive
// later catalog edits and product deletion.
type OrderLine struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	OrderID     uint            `json:"orderId" gorm:"not null;index"`
	ProductID   *uint           `json:"productId" gorm:"index"`
	ProductName string          `json:"productName" gorm:"not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(10,2);not null"`
	Note        string          `json:"note" gorm:"type:text"`
	CreatedAt   time.Time       `json:"createdAt"`
	Product     *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:SET NULL"`
}

// Subtotal is quantity times the pinned unit price.
func (l *OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
