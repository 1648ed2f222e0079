package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderOptions struct {
	// AllowNegativeStock lets a sale take a tracked product below zero.
	AllowNegativeStock  bool
	LowStockThreshold   int
	DefaultCustomerName string
}

type OrderService interface {
	ListOpenOrders(ctx context.Context) ([]models.Order, error)
	OpenTable(ctx context.Context, tableNumber int, customerName string) (*models.Order, error)
	GetOpenOrderByTable(ctx context.Context, tableNumber int) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	CloseOrder(ctx context.Context, id uint) (*models.Order, error)
	ReleaseTable(ctx context.Context, id uint) error
	AddItem(ctx context.Context, orderID, productID uint, quantity int, note string) (*models.OrderLine, error)
	RemoveItem(ctx context.Context, lineID uint) error
}

// StockAlerter is told when a sale takes a tracked product to or below the
// low-stock threshold.
type StockAlerter interface {
	NotifyLowStock(ctx context.Context, product models.Product)
}

type orderService struct {
	store     *repository.Store
	cache     ReportCache
	publisher events.Publisher
	alerter   StockAlerter
	opts      OrderOptions
	now       func() time.Time
}

func NewOrderService(store *repository.Store, cache ReportCache, publisher events.Publisher, alerter StockAlerter, opts OrderOptions) OrderService {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.DefaultCustomerName == "" {
		opts.DefaultCustomerName = "Cliente"
	}
	return &orderService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		alerter:   alerter,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *orderService) ListOpenOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.Orders.ListOpen(ctx)
}

// OpenTable creates the OPEN order for a table. A second open order for the
// same table is refused by the idx_orders_open_table unique index.
func (s *orderService) OpenTable(ctx context.Context, tableNumber int, customerName string) (*models.Order, error) {
	if tableNumber < 1 {
		return nil, validationError("table number must be positive")
	}
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		customerName = s.opts.DefaultCustomerName
	}

	order := &models.Order{
		TableNumber:  tableNumber,
		CustomerName: customerName,
		Status:       string(models.OrderOpen),
		Total:        decimal.Zero,
	}
	if err := s.store.Orders.Create(ctx, order); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("table %d: %w", tableNumber, ErrTableOccupied)
		}
		return nil, fmt.Errorf("failed to open table %d: %w", tableNumber, err)
	}
	order.Lines = []models.OrderLine{}

	s.afterWrite(ctx, events.New(events.OrderOpened, order))
	return order, nil
}

func (s *orderService) GetOpenOrderByTable(ctx context.Context, tableNumber int) (*models.Order, error) {
	order, err := s.store.Orders.GetOpenByTable(ctx, tableNumber)
	if err != nil {
		return nil, lookupError(err, "open order for table", tableNumber)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.Orders.GetWithLines(ctx, id)
	if err != nil {
		return nil, lookupError(err, "order", id)
	}
	return order, nil
}

// CloseOrder moves an order to CLOSED. The total is kept as is and closing
// an already closed order changes nothing.
func (s *orderService) CloseOrder(ctx context.Context, id uint) (*models.Order, error) {
	var closed *models.Order
	changed := false
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "order", id)
		}
		if !order.IsOpen() {
			closed = order
			return nil
		}

		if err := tx.Orders.MarkClosed(ctx, id, s.now()); err != nil {
			return fmt.Errorf("failed to close order %d: %w", id, err)
		}
		closed, err = tx.Orders.GetByID(ctx, id)
		if err != nil {
			return lookupError(err, "order", id)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.afterWrite(ctx, events.New(events.OrderClosed, closed))
	}
	return closed, nil
}

// ReleaseTable cancels an open order: every line is restocked and removed,
// then the order itself is deleted so the table is free again.
func (s *orderService) ReleaseTable(ctx context.Context, id uint) error {
	var released *models.Order
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			return lookupError(err, "order", id)
		}
		if !order.IsOpen() {
			return fmt.Errorf("order %d: %w", id, ErrOrderClosed)
		}

		lines, err := tx.OrderLines.GetByOrderID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load lines of order %d: %w", id, err)
		}
		ids := make([]uint, 0, len(lines))
		for i := range lines {
			if err := restock(ctx, tx, order, &lines[i], "table released"); err != nil {
				return err
			}
			ids = append(ids, lines[i].ID)
		}
		if err := tx.OrderLines.DeleteByIDs(ctx, ids); err != nil {
			return fmt.Errorf("failed to delete lines of order %d: %w", id, err)
		}
		// A line that was never restocked must not vanish with the order.
		remaining, err := tx.OrderLines.CountByOrderID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count lines of order %d: %w", id, err)
		}
		if remaining > 0 {
			return fmt.Errorf("order %d gained %d lines during release", id, remaining)
		}
		if err := tx.Orders.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete order %d: %w", id, err)
		}

		order.Lines = lines
		released = order
		return nil
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, events.New(events.OrderReleased, released))
	return nil
}

// AddItem appends a line priced at the product's current sale price, adds
// its subtotal to the order total and takes the quantity out of stock for
// tracked products. All of it commits or none of it does.
func (s *orderService) AddItem(ctx context.Context, orderID, productID uint, quantity int, note string) (*models.OrderLine, error) {
	if quantity < 1 {
		return nil, validationError("quantity must be at least 1")
	}

	var line *models.OrderLine
	var lowStock *models.Product
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return lookupError(err, "order", orderID)
		}
		if !order.IsOpen() {
			return fmt.Errorf("order %d: %w", orderID, ErrOrderClosed)
		}

		product, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			return lookupError(err, "product", productID)
		}

		line = &models.OrderLine{
			OrderID:     order.ID,
			ProductID:   &product.ID,
			ProductName: product.Name,
			Quantity:    quantity,
			UnitPrice:   product.Price,
			Note:        strings.TrimSpace(note),
		}
		if err := tx.OrderLines.Create(ctx, line); err != nil {
			return fmt.Errorf("failed to create order line: %w", err)
		}

		if err := tx.Orders.AddToTotal(ctx, order.ID, line.Subtotal()); err != nil {
			return fmt.Errorf("failed to update total of order %d: %w", order.ID, err)
		}

		if !product.TrackStock {
			return nil
		}
		after, ok, err := tx.Products.AdjustStock(ctx, product.ID, -quantity, s.opts.AllowNegativeStock)
		if err != nil {
			return fmt.Errorf("failed to update stock of product %d: %w", product.ID, err)
		}
		if !ok {
			return fmt.Errorf("product %q has %d left: %w", product.Name, product.Stock, ErrInsufficientStock)
		}

		movement := &models.StockMovement{
			ProductID:   product.ID,
			OrderID:     &order.ID,
			OrderLineID: &line.ID,
			Kind:        string(models.MovementSale),
			Delta:       -quantity,
			StockBefore: after + quantity,
			StockAfter:  after,
			Reason:      fmt.Sprintf("table %d", order.TableNumber),
		}
		if err := tx.Movements.Create(ctx, movement); err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}

		if movement.StockBefore > s.opts.LowStockThreshold && after <= s.opts.LowStockThreshold {
			product.Stock = after
			lowStock = product
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, events.New(events.OrderItemAdded, line))
	if lowStock != nil {
		s.publish(ctx, events.New(events.ProductLowStock, lowStock))
		if s.alerter != nil {
			s.alerter.NotifyLowStock(ctx, *lowStock)
		}
	}
	return line, nil
}

// RemoveItem deletes a line, takes its subtotal off the order total and
// puts the quantity back for products that still exist and track stock.
func (s *orderService) RemoveItem(ctx context.Context, lineID uint) error {
	var removed *models.OrderLine
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		line, err := tx.OrderLines.GetByID(ctx, lineID)
		if err != nil {
			return lookupError(err, "order line", lineID)
		}
		order, err := tx.Orders.GetByIDForUpdate(ctx, line.OrderID)
		if err != nil {
			return lookupError(err, "order", line.OrderID)
		}
		if !order.IsOpen() {
			return fmt.Errorf("order %d: %w", order.ID, ErrOrderClosed)
		}
		// Re-read under the order lock; a concurrent remove or release may
		// already have taken the line.
		line, err = tx.OrderLines.GetByID(ctx, lineID)
		if err != nil {
			return lookupError(err, "order line", lineID)
		}

		if err := tx.Orders.AddToTotal(ctx, order.ID, line.Subtotal().Neg()); err != nil {
			return fmt.Errorf("failed to update total of order %d: %w", order.ID, err)
		}
		if err := restock(ctx, tx, order, line, "item removed"); err != nil {
			return err
		}
		if err := tx.OrderLines.Delete(ctx, line.ID); err != nil {
			return fmt.Errorf("failed to delete order line %d: %w", line.ID, err)
		}

		removed = line
		return nil
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, events.New(events.OrderItemRemoved, removed))
	return nil
}

// restock returns a line's quantity to its product. Deleted products and
// products that do not track stock are skipped.
func restock(ctx context.Context, tx *repository.Store, order *models.Order, line *models.OrderLine, reason string) error {
	if line.ProductID == nil {
		return nil
	}
	product, err := tx.Products.GetByID(ctx, *line.ProductID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load product %d: %w", *line.ProductID, err)
	}
	if !product.TrackStock {
		return nil
	}

	after, ok, err := tx.Products.AdjustStock(ctx, product.ID, line.Quantity, true)
	if err != nil {
		return fmt.Errorf("failed to restock product %d: %w", product.ID, err)
	}
	if !ok {
		return nil
	}

	movement := &models.StockMovement{
		ProductID:   product.ID,
		OrderID:     &order.ID,
		OrderLineID: &line.ID,
		Kind:        string(models.MovementRestock),
		Delta:       line.Quantity,
		StockBefore: after - line.Quantity,
		StockAfter:  after,
		Reason:      fmt.Sprintf("%s, table %d", reason, order.TableNumber),
	}
	if err := tx.Movements.Create(ctx, movement); err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// afterWrite runs the post-commit side effects. Their failures are logged
// and never undo the committed write.
func (s *orderService) afterWrite(ctx context.Context, event events.Event) {
	if err := s.cache.InvalidateReports(ctx); err != nil {
		log.Printf("Warning: failed to invalidate report cache: %v", err)
	}
	s.publish(ctx, event)
}

func (s *orderService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("Warning: failed to publish %s: %v", event.Type, err)
	}
}
