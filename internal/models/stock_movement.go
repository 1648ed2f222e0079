package models

import "time"

// StockMovement records every stock change made on a product.
// Delta is signed: negative for sales, positive for restocks.
type StockMovement struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProductID   uint      `json:"productId" gorm:"not null;index"`
	OrderID     *uint     `json:"orderId" gorm:"index"`
	OrderLineID *uint     `json:"orderLineId"`
	Kind        string    `json:"kind" gorm:"size:16;not null"` // sale, restock, adjustment
	Delta       int       `json:"delta" gorm:"not null"`
	StockBefore int       `json:"stockBefore"`
	StockAfter  int       `json:"stockAfter"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}

type MovementKind string

const (
	MovementSale       MovementKind = "sale"
	MovementRestock    MovementKind = "restock"
	MovementAdjustment MovementKind = "adjustment"
)
