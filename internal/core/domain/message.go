package domain

import (
	"github.com/google/uuid"
)

// Message represents a single queued message instance.
type Message struct {
	ID         uuid.UUID         `json:"id"`
	Queue      string            `json:"queue"`
	Payload    []byte            `json:"payload"`
	Headers    map[string]string `json:"headers,omitempty"`
	EnqueuedAt int64             `json:"enqueued_at"`
	Attempts   int               `json:"attempts"`
}

// NewMessage creates a message with a fresh identity.
func NewMessage(queue string, payload []byte) *Message {
	return &Message{
		ID:      uuid.New(),
		Queue:   queue,
		Payload: payload,
	}
}
