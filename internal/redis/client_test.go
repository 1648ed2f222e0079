package redis

import (
	"context"
	"os"
	"testing"
	"time"
)

type cachedReport struct {
	Revenue    string `json:"revenue"`
	OrderCount int    `json:"orderCount"`
}

// Runs against a real server; set REDIS_URL (use a scratch database) to enable.
func setupTestClient(t *testing.T) *Client {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	c, err := Initialize(url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		c.InvalidateReports(context.Background())
		c.Close()
	})
	return c
}

func TestReportRoundTripAndPrefix(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	var got cachedReport
	if found, err := c.GetReport(ctx, t.Name(), &got); err != nil || found {
		t.Fatalf("expected a miss, got found=%v err=%v", found, err)
	}

	want := cachedReport{Revenue: "30.00", OrderCount: 2}
	if err := c.SetReport(ctx, t.Name(), want, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	found, err := c.GetReport(ctx, t.Name(), &got)
	if err != nil || !found || got != want {
		t.Fatalf("expected %+v, got %+v found=%v err=%v", want, got, found, err)
	}

	if n, err := c.rdb.Exists(ctx, reportPrefix+t.Name()).Result(); err != nil || n != 1 {
		t.Fatalf("expected key under %q prefix, exists=%d err=%v", reportPrefix, n, err)
	}
	if ttl := c.rdb.TTL(ctx, reportPrefix+t.Name()).Val(); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %s", ttl)
	}
}

func TestInvalidateReportsKeepsOtherKeys(t *testing.T) {
	c := setupTestClient(t)
	ctx := context.Background()

	other := "pos-test:" + t.Name()
	if err := c.rdb.Set(ctx, other, "keep", time.Minute).Err(); err != nil {
		t.Fatalf("set other key: %v", err)
	}
	t.Cleanup(func() { c.rdb.Del(context.Background(), other) })

	for _, key := range []string{"a:b:", "c:d:CLOSED", "e:f:OPEN"} {
		if err := c.SetReport(ctx, key, cachedReport{OrderCount: 1}, time.Minute); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	if err := c.InvalidateReports(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	keys, err := c.rdb.Keys(ctx, reportPrefix+"*").Result()
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected no report keys, got %v (%v)", keys, err)
	}
	if val := c.rdb.Get(ctx, other).Val(); val != "keep" {
		t.Fatalf("unrelated key was removed, got %q", val)
	}
	if err := c.InvalidateReports(ctx); err != nil {
		t.Fatalf("invalidate with nothing cached: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
