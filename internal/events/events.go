// Package events carries change notifications about the reservation set to
// interested consumers such as connected UIs or a message broker.
package events

import (
	"context"
	"errors"
	"time"

	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/google/uuid"
)

type Type string

const (
	TypeReservationCreated Type = "reservation.created"
	TypeReservationUpdated Type = "reservation.updated"
	TypeReservationRemoved Type = "reservation.removed"
	TypeReservationsLoaded Type = "reservations.loaded"
	TypeAutoSaved          Type = "reservations.autosaved"
)

type Event struct {
	ID          uuid.UUID          `json:"id"`
	Type        Type               `json:"type"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
	Previous    *model.Reservation `json:"previous,omitempty"`
	Count       int                `json:"count,omitempty"`
	Path        string             `json:"path,omitempty"`
	At          time.Time          `json:"at"`
}

func New(t Type) Event {
	return Event{
		ID:   uuid.New(),
		Type: t,
		At:   time.Now().UTC(),
	}
}

func ReservationEvent(t Type, r model.Reservation) Event {
	e := New(t)
	e.Reservation = &r
	return e
}

// Key is used to route an event; events about one room share a key.
func (e Event) Key() string {
	if e.Reservation != nil {
		return e.Reservation.Room
	}
	return string(e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Emitter publishes events on behalf of the service. Each publish is bounded
// by the timeout and failures are logged, never returned.
type Emitter struct {
	publisher Publisher
	timeout   time.Duration
	log       *logger.Logger
}

func NewEmitter(p Publisher, timeout time.Duration, log *logger.Logger) *Emitter {
	if p == nil {
		p = Nop{}
	}
	return &Emitter{
		publisher: p,
		timeout:   timeout,
		log:       log.Component("events"),
	}
}

func (em *Emitter) Emit(ctx context.Context, e Event) {
	ctx = context.WithoutCancel(ctx)
	if em.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, em.timeout)
		defer cancel()
	}

	if err := em.publisher.Publish(ctx, e); err != nil {
		em.log.Error("Failed to publish event",
			"event_id", e.ID,
			"event_type", e.Type,
			"error", err,
		)
	}
}

func (em *Emitter) Close() error {
	return em.publisher.Close()
}
