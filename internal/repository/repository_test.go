package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAdjustStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	p := &models.Product{Name: "Tea", Price: decimal.NewFromInt(3), Stock: 2, TrackStock: true, Active: true}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	after, ok, err := repo.AdjustStock(ctx, p.ID, -2, false)
	if err != nil || !ok || after != 0 {
		t.Fatalf("expected stock 0, got %d ok=%v err=%v", after, ok, err)
	}

	_, ok, err = repo.AdjustStock(ctx, p.ID, -1, false)
	if err != nil || ok {
		t.Fatalf("expected guarded update to be refused, ok=%v err=%v", ok, err)
	}

	after, ok, err = repo.AdjustStock(ctx, p.ID, -1, true)
	if err != nil || !ok || after != -1 {
		t.Fatalf("expected stock -1, got %d ok=%v err=%v", after, ok, err)
	}

	if _, ok, _ := repo.AdjustStock(ctx, 9999, 1, true); ok {
		t.Fatal("missing product must not report an update")
	}
}

func TestGetLowStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	for _, p := range []models.Product{
		{Name: "B", Stock: 1, TrackStock: true, Active: true},
		{Name: "A", Stock: 1, TrackStock: true, Active: true},
		{Name: "Zero", Stock: 0, TrackStock: true, Active: true},
		{Name: "Plenty", Stock: 30, TrackStock: true, Active: true},
		{Name: "Untracked", Stock: 0, TrackStock: false, Active: true},
		{Name: "Inactive", Stock: 0, TrackStock: true, Active: false},
	} {
		p := p
		if err := repo.Create(ctx, &p); err != nil {
			t.Fatalf("create %s: %v", p.Name, err)
		}
	}

	low, err := repo.GetLowStock(ctx, 5, 2)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(low) != 2 || low[0].Name != "Zero" || low[1].Name != "A" {
		t.Fatalf("unexpected low stock: %+v", low)
	}
}

func TestOrderTotalsAndRange(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	inside := &models.Order{TableNumber: 1, CustomerName: "A", Status: string(models.OrderClosed), CreatedAt: day.Add(10 * time.Hour)}
	outside := &models.Order{TableNumber: 2, CustomerName: "B", Status: string(models.OrderClosed), CreatedAt: day.AddDate(0, 0, 1).Add(time.Hour)}
	for _, o := range []*models.Order{inside, outside} {
		if err := orders.Create(ctx, o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := orders.AddToTotal(ctx, inside.ID, decimal.RequireFromString("12.50")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := orders.AddToTotal(ctx, inside.ID, decimal.RequireFromString("-2.50")); err != nil {
		t.Fatalf("subtract: %v", err)
	}
	if err := orders.AddToTotal(ctx, 9999, decimal.NewFromInt(1)); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}

	found, err := orders.GetByDateRange(ctx, day, day.AddDate(0, 0, 1).Add(-time.Nanosecond), "")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(found) != 1 || found[0].ID != inside.ID || !found[0].Total.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected range result: %+v", found)
	}

	open, err := orders.GetByDateRange(ctx, day, day.AddDate(0, 0, 2), string(models.OrderOpen))
	if err != nil || len(open) != 0 {
		t.Fatalf("expected no open orders, got %d (%v)", len(open), err)
	}
}

func TestStoreTransactionRollsBack(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.Transaction(ctx, func(tx *Store) error {
		if err := tx.Products.Create(ctx, &models.Product{Name: "Ghost", TrackStock: true, Active: true}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	products, _ := store.Products.List(ctx, ProductFilter{})
	if len(products) != 0 {
		t.Fatalf("expected rollback, found %d products", len(products))
	}
}

func TestGetByIDForUpdateLocksRow(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=pos dbname=pos sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	var query string
	db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		query = tx.Statement.SQL.String()
	})

	NewOrderRepository(db).GetByIDForUpdate(context.Background(), 1)
	if !strings.Contains(query, "FOR UPDATE") {
		t.Fatalf("expected a row lock, got %q", query)
	}
}

func TestGetByIDForUpdateOnSQLite(t *testing.T) {
	db := setupTestDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()

	order := &models.Order{TableNumber: 1, CustomerName: "A", Status: string(models.OrderOpen)}
	if err := orders.Create(ctx, order); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := NewStore(db).Transaction(ctx, func(tx *Store) error {
		got, err := tx.Orders.GetByIDForUpdate(ctx, order.ID)
		if err != nil {
			return err
		}
		if got.Reference != order.Reference {
			t.Errorf("unexpected order %+v", got)
		}
		_, err = tx.Orders.GetByIDForUpdate(ctx, 9999)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("expected record not found, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestDeleteByIDsLeavesOtherLines(t *testing.T) {
	db := setupTestDB(t)
	lines := NewOrderLineRepository(db)
	ctx := context.Background()

	var ids []uint
	for i := 1; i <= 3; i++ {
		l := &models.OrderLine{OrderID: 1, ProductName: "Item", Quantity: i, UnitPrice: decimal.NewFromInt(1)}
		if err := lines.Create(ctx, l); err != nil {
			t.Fatalf("create line: %v", err)
		}
		ids = append(ids, l.ID)
	}

	if err := lines.DeleteByIDs(ctx, ids[:2]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := lines.DeleteByIDs(ctx, nil); err != nil {
		t.Fatalf("empty delete: %v", err)
	}
	count, err := lines.CountByOrderID(ctx, 1)
	if err != nil || count != 1 {
		t.Fatalf("expected one line left, got %d (%v)", count, err)
	}
	if _, err := lines.GetByID(ctx, ids[2]); err != nil {
		t.Fatalf("untouched line missing: %v", err)
	}
}
