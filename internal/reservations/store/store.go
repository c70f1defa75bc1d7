package store

import (
	"sort"
	"sync"

	"roombook/internal/catalogue"
	reserrors "roombook/internal/reservations/errors"
	"roombook/internal/reservations/validator"
	"roombook/pkg/model"
	"roombook/pkg/timeutil"
)

// Store is the authoritative, insertion-ordered set of reservations. All
// mutation goes through one lock; reads return copies.
type Store struct {
	mu           sync.RWMutex
	reservations []model.Reservation

	catalogue *catalogue.Catalogue
	validator *validator.ReservationValidator
}

func New(cat *catalogue.Catalogue, v *validator.ReservationValidator) *Store {
	return &Store{
		catalogue: cat,
		validator: v,
	}
}

func (s *Store) Catalogue() *catalogue.Catalogue {
	return s.catalogue
}

func (s *Store) room(name string) *model.Room {
	room, ok := s.catalogue.Get(name)
	if !ok {
		return nil
	}
	return &room
}

// Add validates the proposal against the current set and appends it when accepted.
func (s *Store) Add(p model.Proposal) (model.ID, validator.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.validator.Validate(s.room(p.Room), p, s.reservations, nil)
	if !res.Ok() {
		return model.ID{}, res
	}

	r := p.Reservation()
	s.reservations = append(s.reservations, r)
	return r.ID(), res
}

// Edit replaces the fields of the reservation identified by id, keeping its
// room and its position. The returned id reflects the edited values.
func (s *Store) Edit(id model.ID, u model.Update) (model.ID, validator.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.ID{}, validator.Result{}, reserrors.ErrNotFound
	}

	current := s.reservations[i]
	edited := u.Apply(current)
	p := model.Proposal{
		Room:       current.Room,
		Date:       edited.Date,
		StartTime:  edited.StartTime,
		EndTime:    edited.EndTime,
		ReservedBy: edited.ReservedBy,
		Type:       edited.Type,
	}

	res := s.validator.Validate(s.room(current.Room), p, s.reservations, &id)
	if !res.Ok() {
		return id, res, nil
	}

	s.reservations[i] = edited
	return edited.ID(), res, nil
}

// Remove reports whether a reservation with the given id was removed.
// Removing an unknown id is a no-op.
func (s *Store) Remove(id model.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
	return true
}

func (s *Store) Get(id model.ID) (model.Reservation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Reservation{}, false
	}
	return s.reservations[i], true
}

func (s *Store) ForDate(d timeutil.Date) []model.Reservation {
	return s.filter(func(r model.Reservation) bool { return r.Date == d })
}

func (s *Store) ForRoom(name string) []model.Reservation {
	return s.filter(func(r model.Reservation) bool { return r.Room == name })
}

// Snapshot copies every reservation in insertion order.
func (s *Store) Snapshot() []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reservations)
}

// ReplaceAll swaps the whole set. Every reservation must name a catalogued
// room; otherwise nothing changes.
func (s *Store) ReplaceAll(list []model.Reservation) error {
	for _, r := range list {
		if !s.catalogue.Has(r.Room) {
			return &reserrors.UnknownRoomError{Room: r.Room}
		}
	}

	replacement := make([]model.Reservation, len(list))
	copy(replacement, list)

	s.mu.Lock()
	s.reservations = replacement
	s.mu.Unlock()
	return nil
}

// Interval is a half-open [Start, End) window of a day.
type Interval struct {
	Start timeutil.TimeOfDay `json:"start_time"`
	End   timeutil.TimeOfDay `json:"end_time"`
}

// FreeIntervals returns the maximal windows of business hours in which room
// has no reservation on date.
func (s *Store) FreeIntervals(room string, date timeutil.Date) []Interval {
	booked := s.filter(func(r model.Reservation) bool {
		return r.Room == room && r.Date == date
	})
	sort.Slice(booked, func(i, j int) bool {
		return booked[i].StartTime.Before(booked[j].StartTime)
	})

	var free []Interval
	cursor := timeutil.OpeningTime
	for _, r := range booked {
		if cursor.Before(r.StartTime) {
			free = append(free, Interval{Start: cursor, End: r.StartTime})
		}
		if r.EndTime.After(cursor) {
			cursor = r.EndTime
		}
	}
	if cursor.Before(timeutil.ClosingTime) {
		free = append(free, Interval{Start: cursor, End: timeutil.ClosingTime})
	}
	return free
}

func (s *Store) filter(keep func(model.Reservation) bool) []model.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Reservation, 0)
	for _, r := range s.reservations {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) indexOf(id model.ID) int {
	for i, r := range s.reservations {
		if r.ID() == id {
			return i
		}
	}
	return -1
}
