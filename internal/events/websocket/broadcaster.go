package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"roombook/internal/events"
)

var ErrDropped = errors.New("websocket broadcast queue full, event dropped")

// Message is the envelope sent to clients.
type Message struct {
	Type      events.Type  `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   events.Event `json:"payload"`
}

// Broadcaster adapts the hub to events.Publisher.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) Publish(_ context.Context, e events.Event) error {
	data, err := json.Marshal(Message{
		Type:      e.Type,
		Timestamp: e.At,
		Payload:   e,
	})
	if err != nil {
		return err
	}
	if !b.hub.Broadcast(data) {
		return ErrDropped
	}
	return nil
}

// Close is a no-op; the hub shuts down with the context passed to Run.
func (b *Broadcaster) Close() error {
	return nil
}
