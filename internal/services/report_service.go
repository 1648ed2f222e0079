package services

import (
	"context"
	"fmt"
	"log"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 10
	dayKeyLayout      = "2006-01-02"
	dayLabelLayout    = "02/01"
)

type ReportOptions struct {
	Location          *time.Location
	LowStockThreshold int
	LowStockLimit     int
	CacheTTL          time.Duration
	// Now is the clock used for the default "today" range. Defaults to time.Now.
	Now func() time.Time
}

// ReportQuery selects orders by creation time. A nil bound defaults to the
// matching edge of the current day; an empty Status matches every order.
type ReportQuery struct {
	Start  *time.Time
	End    *time.Time
	Status string
}

type DayBucket struct {
	Date    string          `json:"date"`
	Label   string          `json:"label"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type ProductRanking struct {
	ProductID *uint           `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID           uint            `json:"id"`
	Reference    string          `json:"reference"`
	TableNumber  int             `json:"tableNumber"`
	CustomerName string          `json:"customerName"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type Report struct {
	Start         time.Time        `json:"start"`
	End           time.Time        `json:"end"`
	Status        string           `json:"status,omitempty"`
	Revenue       decimal.Decimal  `json:"revenue"`
	OrderCount    int              `json:"orderCount"`
	AverageTicket decimal.Decimal  `json:"averageTicket"`
	Days          []DayBucket      `json:"days"`
	TopProducts   []ProductRanking `json:"topProducts"`
	RecentOrders  []RecentOrder    `json:"recentOrders"`
	LowStock      []models.Product `json:"lowStock"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

type ReportService interface {
	Build(ctx context.Context, query ReportQuery) (*Report, error)
}

type reportService struct {
	store *repository.Store
	cache ReportCache
	opts  ReportOptions
}

func NewReportService(store *repository.Store, cache ReportCache, opts ReportOptions) ReportService {
	if cache == nil {
		cache = noopCache{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.LowStockLimit <= 0 {
		opts.LowStockLimit = 5
	}
	return &reportService{store: store, cache: cache, opts: opts}
}

func (s *reportService) Build(ctx context.Context, query ReportQuery) (*Report, error) {
	start, end := s.resolveRange(query)
	if end.Before(start) {
		return nil, validationError("end must not be before start")
	}
	status := strings.ToUpper(strings.TrimSpace(query.Status))
	if status != "" && status != string(models.OrderOpen) && status != string(models.OrderClosed) {
		return nil, validationError("unknown status %q", query.Status)
	}

	key := fmt.Sprintf("%s:%s:%s", start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339), status)
	var cached Report
	if found, err := s.cache.GetReport(ctx, key, &cached); err != nil {
		log.Printf("Warning: report cache read failed: %v", err)
	} else if found {
		return &cached, nil
	}

	orders, err := s.store.Orders.GetByDateRange(ctx, start, end, status)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	lowStock, err := s.store.Products.GetLowStock(ctx, s.opts.LowStockThreshold, s.opts.LowStockLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock products: %w", err)
	}

	report := Summarize(orders, s.opts.Location, s.opts.Now())
	report.Start = start
	report.End = end
	report.Status = status
	report.LowStock = lowStock
	if report.LowStock == nil {
		report.LowStock = []models.Product{}
	}

	if s.opts.CacheTTL > 0 {
		if err := s.cache.SetReport(ctx, key, report, s.opts.CacheTTL); err != nil {
			log.Printf("Warning: report cache write failed: %v", err)
		}
	}
	return report, nil
}

// resolveRange fills missing bounds with the start and end of the current
// day in the report location.
func (s *reportService) resolveRange(query ReportQuery) (time.Time, time.Time) {
	dayStart, dayEnd := DayBounds(s.opts.Now(), s.opts.Location)
	start, end := dayStart, dayEnd
	if query.Start != nil {
		start = query.Start.In(s.opts.Location)
	}
	if query.End != nil {
		end = query.End.In(s.opts.Location)
	}
	return start, end
}

// DayBounds returns midnight and the last nanosecond of t's day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Summarize aggregates orders into revenue, count, average ticket, per-day
// buckets, best sellers and the most recently touched orders. When there
// are no orders a single empty bucket for now's day is returned.
func Summarize(orders []models.Order, loc *time.Location, now time.Time) *Report {
	report := &Report{
		Revenue:       decimal.Zero,
		AverageTicket: decimal.Zero,
		OrderCount:    len(orders),
		GeneratedAt:   now,
	}

	buckets := map[string]*DayBucket{}
	type rankKey struct {
		productID uint
		name      string
	}
	ranking := map[rankKey]*ProductRanking{}

	for _, order := range orders {
		report.Revenue = report.Revenue.Add(order.Total)

		day := order.CreatedAt.In(loc)
		key := day.Format(dayKeyLayout)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &DayBucket{Date: key, Label: day.Format(dayLabelLayout), Revenue: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.Revenue = bucket.Revenue.Add(order.Total)
		bucket.Orders++

		for _, line := range order.Lines {
			rk := rankKey{name: line.ProductName}
			if line.ProductID != nil {
				rk.productID = *line.ProductID
			}
			entry, ok := ranking[rk]
			if !ok {
				entry = &ProductRanking{ProductID: line.ProductID, Name: line.ProductName, Revenue: decimal.Zero}
				ranking[rk] = entry
			}
			entry.Quantity += line.Quantity
			entry.Revenue = entry.Revenue.Add(line.Subtotal())
		}
	}

	if report.OrderCount > 0 {
		report.AverageTicket = report.Revenue.Div(decimal.NewFromInt(int64(report.OrderCount))).Round(2)
	}

	report.Days = make([]DayBucket, 0, len(buckets))
	for _, b := range buckets {
		report.Days = append(report.Days, *b)
	}
	sort.Slice(report.Days, func(i, j int) bool { return report.Days[i].Date < report.Days[j].Date })
	if len(report.Days) == 0 {
		today := now.In(loc)
		report.Days = append(report.Days, DayBucket{
			Date:    today.Format(dayKeyLayout),
			Label:   today.Format(dayLabelLayout),
			Revenue: decimal.Zero,
		})
	}

	report.TopProducts = make([]ProductRanking, 0, len(ranking))
	for _, r := range ranking {
		report.TopProducts = append(report.TopProducts, *r)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.Name < b.Name
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	recent := make([]models.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UpdatedAt.After(recent[j].UpdatedAt) })
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	report.RecentOrders = make([]RecentOrder, 0, len(recent))
	for _, o := range recent {
		report.RecentOrders = append(report.RecentOrders, RecentOrder{
			ID:           o.ID,
			Reference:    o.Reference,
			TableNumber:  o.TableNumber,
			CustomerName: o.CustomerName,
			Status:       o.Status,
			Total:        o.Total,
			UpdatedAt:    o.UpdatedAt,
		})
	}

	return report
}
