package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"restaurant_pos/internal/models"
	"restaurant_pos/pkg/whatsapp"
	"strings"
	"sync"
	"time"
)

var ErrAlertsDisabled = errors.New("whatsapp alerts are not configured")

type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) (*whatsapp.SendMessageResponse, error)
}

type StockAlertService struct {
	sender  MessageSender
	phone   string
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewStockAlertService sends low-stock warnings to phone. Messages go out in
// the background so a slow gateway never holds up a sale.
func NewStockAlertService(sender MessageSender, phone string) *StockAlertService {
	return &StockAlertService{sender: sender, phone: phone, timeout: 20 * time.Second}
}

func (s *StockAlertService) NotifyLowStock(_ context.Context, product models.Product) {
	if s.sender == nil || s.phone == "" {
		return
	}

	message := LowStockMessage(product)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.sender.SendTextMessage(ctx, s.phone, message); err != nil {
			log.Printf("Warning: low stock alert for product %d failed: %v", product.ID, err)
		}
	}()
}

// Wait blocks until every queued alert has been attempted.
func (s *StockAlertService) Wait() {
	s.wg.Wait()
}

// SendDigest sends the list of low products right away and reports the
// gateway error, if any.
func (s *StockAlertService) SendDigest(ctx context.Context, products []models.Product) error {
	if s.sender == nil || s.phone == "" {
		return ErrAlertsDisabled
	}
	_, err := s.sender.SendTextMessage(ctx, s.phone, LowStockDigest(products))
	return err
}

func LowStockMessage(product models.Product) string {
	if product.Stock <= 0 {
		return fmt.Sprintf("⚠️ %s is out of stock (%d left).", product.Name, product.Stock)
	}
	return fmt.Sprintf("⚠️ Low stock: %s has %d left.", product.Name, product.Stock)
}

func LowStockDigest(products []models.Product) string {
	if len(products) == 0 {
		return "✅ No products are running low."
	}
	var b strings.Builder
	b.WriteString("📦 Low stock:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "• %s: %d\n", p.Name, p.Stock)
	}
	return strings.TrimRight(b.String(), "\n")
}
