package services

import (
	"context"
	"time"
)

// ReportCache stores built reports between writes.
type ReportCache interface {
	GetReport(ctx context.Context, key string, dest interface{}) (bool, error)
	SetReport(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidateReports(ctx context.Context) error
}

type noopCache struct{}

func (noopCache) GetReport(context.Context, string, interface{}) (bool, error) { return false, nil }
func (noopCache) SetReport(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (noopCache) InvalidateReports(context.Context) error { return nil }
