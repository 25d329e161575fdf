package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vietddude/requeue/internal/core/config"
	"github.com/vietddude/requeue/internal/core/domain"
)

// Handler delivers a single message. A nil return acknowledges the
// message, context.DeadlineExceeded marks it pending, any other error
// marks it failed.
type Handler interface {
	Handle(ctx context.Context, msg *domain.Message) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg *domain.Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *domain.Message) error {
	return f(ctx, msg)
}

// NewHandler constructs the handler declared by a queue's configuration.
func NewHandler(cfg config.HandlerConfig) (Handler, error) {
	switch cfg.Type {
	case config.HandlerWebhook:
		if cfg.URL == "" {
			return nil, fmt.Errorf("webhook handler requires a url")
		}
		return NewWebhookHandler(cfg.URL), nil
	case config.HandlerLog:
		return LogHandler{}, nil
	default:
		return nil, fmt.Errorf("unknown handler type %q", cfg.Type)
	}
}

// WebhookHandler POSTs message payloads to an HTTP endpoint.
type WebhookHandler struct {
	url    string
	client *http.Client
}

// NewWebhookHandler creates a webhook handler. Per-message timeouts come
// from the request context, not the client.
func NewWebhookHandler(url string) *WebhookHandler {
	return &WebhookHandler{
		url:    url,
		client: http.DefaultClient,
	}
}

func (h *WebhookHandler) Handle(ctx context.Context, msg *domain.Message) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(msg.Payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("X-Requeue-Id", msg.ID.String())
	req.Header.Set("X-Requeue-Queue", msg.Queue)
	req.Header.Set("X-Requeue-Attempt", strconv.Itoa(msg.Attempts))
	for k, v := range msg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// LogHandler logs each message and acknowledges it. Useful for wiring
// tests and draining queues.
type LogHandler struct{}

func (LogHandler) Handle(ctx context.Context, msg *domain.Message) error {
	slog.Debug("Message received", "queue", msg.Queue, "id", msg.ID, "bytes", len(msg.Payload))
	return nil
}
