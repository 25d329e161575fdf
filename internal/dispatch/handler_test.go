package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
)

func TestWebhookHandler_Success(t *testing.T) {
	var gotID, gotQueue, gotAttempt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Requeue-Id")
		gotQueue = r.Header.Get("X-Requeue-Queue")
		gotAttempt = r.Header.Get("X-Requeue-Attempt")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	msg := domain.NewMessage("orders", []byte("payload"))
	msg.Attempts = 2

	h := NewWebhookHandler(srv.URL)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if gotID != msg.ID.String() {
		t.Errorf("Expected id header %s, got %s", msg.ID, gotID)
	}
	if gotQueue != "orders" {
		t.Errorf("Expected queue header orders, got %s", gotQueue)
	}
	if gotAttempt != "2" {
		t.Errorf("Expected attempt header 2, got %s", gotAttempt)
	}
}

func TestWebhookHandler_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h := NewWebhookHandler(srv.URL)
	err := h.Handle(context.Background(), domain.NewMessage("orders", nil))
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
}

func TestWebhookHandler_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	h := NewWebhookHandler(srv.URL)
	err := h.Handle(ctx, domain.NewMessage("orders", nil))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected context.DeadlineExceeded, got %v", err)
	}
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.HandlerConfig
		wantErr bool
	}{
		{"webhook", config.HandlerConfig{Type: config.HandlerWebhook, URL: "http://localhost:9000"}, false},
		{"webhook without url", config.HandlerConfig{Type: config.HandlerWebhook}, true},
		{"log", config.HandlerConfig{Type: config.HandlerLog}, false},
		{"unknown", config.HandlerConfig{Type: "smtp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHandler(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewHandler error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
