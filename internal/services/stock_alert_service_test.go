package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"restaurant_pos/internal/models"
	"restaurant_pos/pkg/whatsapp"
)

type fakeSender struct {
	mu       sync.Mutex
	phones   []string
	messages []string
	err      error
}

func (f *fakeSender) SendTextMessage(_ context.Context, phone, message string) (*whatsapp.SendMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phones = append(f.phones, phone)
	f.messages = append(f.messages, message)
	if f.err != nil {
		return nil, f.err
	}
	return &whatsapp.SendMessageResponse{Success: true}, nil
}

func TestNotifyLowStockSendsInBackground(t *testing.T) {
	sender := &fakeSender{}
	alerts := NewStockAlertService(sender, "5511999990000")

	alerts.NotifyLowStock(context.Background(), models.Product{ID: 1, Name: "Wine", Stock: 3})
	alerts.NotifyLowStock(context.Background(), models.Product{ID: 2, Name: "Beer", Stock: 0})
	alerts.Wait()

	if len(sender.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.messages))
	}
	for _, phone := range sender.phones {
		if phone != "5511999990000" {
			t.Fatalf("unexpected phone %q", phone)
		}
	}
}

func TestNotifyLowStockFailureIsSwallowed(t *testing.T) {
	sender := &fakeSender{err: errors.New("gateway down")}
	alerts := NewStockAlertService(sender, "5511999990000")
	alerts.NotifyLowStock(context.Background(), models.Product{ID: 1, Name: "Wine", Stock: 3})
	alerts.Wait()
	if len(sender.messages) != 1 {
		t.Fatalf("expected one attempt, got %d", len(sender.messages))
	}
}

func TestAlertsDisabledWithoutPhone(t *testing.T) {
	sender := &fakeSender{}
	alerts := NewStockAlertService(sender, "")
	alerts.NotifyLowStock(context.Background(), models.Product{Name: "Wine"})
	alerts.Wait()
	if len(sender.messages) != 0 {
		t.Fatal("no message expected without a phone")
	}
	if err := alerts.SendDigest(context.Background(), nil); !errors.Is(err, ErrAlertsDisabled) {
		t.Fatalf("expected ErrAlertsDisabled, got %v", err)
	}
}

func TestLowStockMessages(t *testing.T) {
	if msg := LowStockMessage(models.Product{Name: "Wine", Stock: 2}); !strings.Contains(msg, "Wine has 2 left") {
		t.Fatalf("unexpected message %q", msg)
	}
	if msg := LowStockMessage(models.Product{Name: "Wine", Stock: 0}); !strings.Contains(msg, "out of stock") {
		t.Fatalf("unexpected message %q", msg)
	}
	digest := LowStockDigest([]models.Product{{Name: "Wine", Stock: 2}, {Name: "Beer", Stock: -1}})
	if !strings.Contains(digest, "• Wine: 2") || !strings.Contains(digest, "• Beer: -1") {
		t.Fatalf("unexpected digest %q", digest)
	}
	if digest := LowStockDigest(nil); !strings.Contains(digest, "No products") {
		t.Fatalf("unexpected empty digest %q", digest)
	}
}
