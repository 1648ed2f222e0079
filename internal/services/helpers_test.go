package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/events"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestStore(t *testing.T) (*gorm.DB, *repository.Store) {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, repository.NewStore(db)
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int, track bool) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CostPrice:  decimal.Zero,
		Stock:      stock,
		TrackStock: track,
		Active:     true,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return p
}

func reloadProduct(t *testing.T, db *gorm.DB, id uint) models.Product {
	t.Helper()
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		t.Fatalf("reload product %d: %v", id, err)
	}
	return p
}

func reloadOrder(t *testing.T, db *gorm.DB, id uint) models.Order {
	t.Helper()
	var o models.Order
	if err := db.First(&o, id).Error; err != nil {
		t.Fatalf("reload order %d: %v", id, err)
	}
	return o
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingAlerter struct {
	products []models.Product
}

func (r *recordingAlerter) NotifyLowStock(_ context.Context, p models.Product) {
	r.products = append(r.products, p)
}

type memoryCache struct {
	data        map[string]Report
	invalidated int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string]Report{}} }

func (m *memoryCache) GetReport(_ context.Context, key string, dest interface{}) (bool, error) {
	r, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(dest.(*Report)) = r
	return true, nil
}

func (m *memoryCache) SetReport(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.data[key] = *(value.(*Report))
	return nil
}

func (m *memoryCache) InvalidateReports(context.Context) error {
	m.invalidated++
	m.data = map[string]Report{}
	return nil
}
