package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Reference    string          `json:"reference" gorm:"size:36;uniqueIndex;not null"`
	TableNumber  int             `json:"tableNumber" gorm:"not null;index"`
	CustomerName string          `json:"customerName" gorm:"not null"`
	Status       string          `json:"status" gorm:"size:16;not null;index"` // OPEN, CLOSED
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	ClosedAt     *time.Time      `json:"closedAt"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Lines        []OrderLine     `json:"lines" gorm:"foreignKey:OrderID"`
}

type OrderStatus string

const (
	OrderOpen   OrderStatus = "OPEN"
	OrderClosed OrderStatus = "CLOSED"
)

func (o *Order) IsOpen() bool {
	return o.Status == string(OrderOpen)
}

// BeforeCreate assigns the public ticket reference.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.Reference == "" {
		o.Reference = uuid.NewString()
	}
	return nil
}
