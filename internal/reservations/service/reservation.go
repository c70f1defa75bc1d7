package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"roombook/internal/catalogue"
	"roombook/internal/events"
	"roombook/internal/grid"
	"roombook/internal/reservations/codec"
	reserrors "roombook/internal/reservations/errors"
	"roombook/internal/reservations/store"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/sanitizer"
	"roombook/pkg/timeutil"
)

// FileResult describes a completed save or load.
type FileResult struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

type Stats struct {
	Rooms        int `json:"rooms"`
	Reservations int `json:"reservations"`
}

// ReservationService is the command surface used by the UI. Rejections are
// returned as *apperrors.AppError values carrying the user-facing message.
type ReservationService interface {
	Rooms(ctx context.Context) []model.Room
	Room(ctx context.Context, name string) (model.Room, error)
	EndOptions(ctx context.Context, room string, start timeutil.TimeOfDay) ([]timeutil.TimeOfDay, error)
	FreeIntervals(ctx context.Context, room string, date timeutil.Date) ([]store.Interval, error)

	Add(ctx context.Context, p model.Proposal) (model.Reservation, error)
	Edit(ctx context.Context, id model.ID, u model.Update) (model.Reservation, error)
	Remove(ctx context.Context, id model.ID) bool

	ForDate(ctx context.Context, date timeutil.Date) []model.Reservation
	ForRoom(ctx context.Context, room string) []model.Reservation
	Snapshot(ctx context.Context) []model.Reservation
	Grid(ctx context.Context, date timeutil.Date) *grid.Grid

	Save(ctx context.Context, path string) (FileResult, error)
	Load(ctx context.Context, path string) (FileResult, error)
	AutoSaved(path string, count int)

	Stats(ctx context.Context) Stats
}

type reservationService struct {
	store   *store.Store
	emitter *events.Emitter
	log     *logger.Logger
}

func NewReservationService(st *store.Store, emitter *events.Emitter, log *logger.Logger) ReservationService {
	if emitter == nil {
		emitter = events.NewEmitter(nil, 0, log)
	}
	return &reservationService{
		store:   st,
		emitter: emitter,
		log:     log.Component("reservations"),
	}
}

func (s *reservationService) catalogue() *catalogue.Catalogue {
	return s.store.Catalogue()
}

func (s *reservationService) Rooms(_ context.Context) []model.Room {
	return s.catalogue().All()
}

func (s *reservationService) Room(_ context.Context, name string) (model.Room, error) {
	name = sanitizer.SanitizeRoomName(name)
	room, ok := s.catalogue().Get(name)
	if !ok {
		return model.Room{}, apperrors.NotFoundWithID("Room", name)
	}
	return room, nil
}

func (s *reservationService) EndOptions(ctx context.Context, name string, start timeutil.TimeOfDay) ([]timeutil.TimeOfDay, error) {
	room, err := s.Room(ctx, name)
	if err != nil {
		return nil, err
	}
	options := room.EndOptions(start)
	if options == nil {
		options = []timeutil.TimeOfDay{}
	}
	return options, nil
}

func (s *reservationService) FreeIntervals(ctx context.Context, name string, date timeutil.Date) ([]store.Interval, error) {
	room, err := s.Room(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.store.FreeIntervals(room.Name, date), nil
}

func (s *reservationService) Add(ctx context.Context, p model.Proposal) (model.Reservation, error) {
	p.Room = sanitizer.SanitizeRoomName(p.Room)
	p.ReservedBy = sanitizer.SanitizeReservedBy(p.ReservedBy)

	id, res := s.store.Add(p)
	if !res.Ok() {
		s.log.Info("Reservation rejected",
			"room", p.Room,
			"date", p.Date,
			"start_time", p.StartTime,
			"end_time", p.EndTime,
			"reason", res.Message(),
		)
		return model.Reservation{}, apperrors.Validation(res.Message(), nil)
	}

	created, ok := s.store.Get(id)
	if !ok {
		// removed again between the two calls
		created = p.Reservation()
	}

	s.log.Info("Reservation created",
		"id", id.String(),
		"reserved_by", created.ReservedBy,
		"type", created.Type,
	)
	s.emitter.Emit(ctx, events.ReservationEvent(events.TypeReservationCreated, created))
	return created, nil
}

func (s *reservationService) Edit(ctx context.Context, id model.ID, u model.Update) (model.Reservation, error) {
	u.ReservedBy = sanitizer.SanitizeReservedBy(u.ReservedBy)

	previous, ok := s.store.Get(id)
	if !ok {
		return model.Reservation{}, apperrors.NotFoundWithID("Reservation", id.String())
	}

	newID, res, err := s.store.Edit(id, u)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return model.Reservation{}, apperrors.NotFoundWithID("Reservation", id.String())
		}
		return model.Reservation{}, apperrors.Internal("Failed to update reservation", err)
	}
	if !res.Ok() {
		s.log.Info("Reservation update rejected",
			"id", id.String(),
			"reason", res.Message(),
		)
		return model.Reservation{}, apperrors.Validation(res.Message(), nil)
	}

	updated := u.Apply(previous)
	if current, ok := s.store.Get(newID); ok {
		updated = current
	}

	s.log.Info("Reservation updated",
		"id", id.String(),
		"new_id", newID.String(),
	)
	e := events.ReservationEvent(events.TypeReservationUpdated, updated)
	e.Previous = &previous
	s.emitter.Emit(ctx, e)
	return updated, nil
}

func (s *reservationService) Remove(ctx context.Context, id model.ID) bool {
	existing, found := s.store.Get(id)
	if !found || !s.store.Remove(id) {
		s.log.Debug("Nothing to remove", "id", id.String())
		return false
	}

	s.log.Info("Reservation removed", "id", id.String())
	s.emitter.Emit(ctx, events.ReservationEvent(events.TypeReservationRemoved, existing))
	return true
}

func (s *reservationService) ForDate(_ context.Context, date timeutil.Date) []model.Reservation {
	return s.store.ForDate(date)
}

func (s *reservationService) ForRoom(_ context.Context, room string) []model.Reservation {
	return s.store.ForRoom(sanitizer.SanitizeRoomName(room))
}

func (s *reservationService) Snapshot(_ context.Context) []model.Reservation {
	return s.store.Snapshot()
}

func (s *reservationService) Grid(_ context.Context, date timeutil.Date) *grid.Grid {
	return grid.Build(s.store, s.catalogue().Names(), date)
}

func (s *reservationService) Save(_ context.Context, path string) (FileResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FileResult{}, apperrors.InvalidInput("File path is required")
	}

	snapshot := s.store.Snapshot()
	written, err := codec.Save(path, snapshot)
	if err != nil {
		s.log.Error("Failed to save reservations", "path", written, "error", err)
		return FileResult{}, persistenceError("save", written, err)
	}

	s.log.Info("Reservations saved", "path", written, "count", len(snapshot))
	return FileResult{Path: written, Count: len(snapshot)}, nil
}

// Load replaces the whole reservation set with the contents of path. On any
// failure the current set is left untouched.
func (s *reservationService) Load(ctx context.Context, path string) (FileResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FileResult{}, apperrors.InvalidInput("File path is required")
	}
	path = codec.WithExtension(path)

	loaded, err := codec.Load(path, s.catalogue())
	if err == nil {
		err = s.store.ReplaceAll(loaded)
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Warn("Reservation file not found", "path", path)
			return FileResult{}, apperrors.NotFoundWithID("Reservation file", path)
		}
		s.log.Error("Failed to load reservations", "path", path, "error", err)
		return FileResult{}, persistenceError("load", path, err)
	}

	s.log.Info("Reservations loaded", "path", path, "count", len(loaded))
	e := events.New(events.TypeReservationsLoaded)
	e.Path = path
	e.Count = len(loaded)
	s.emitter.Emit(ctx, e)
	return FileResult{Path: path, Count: len(loaded)}, nil
}

// AutoSaved is registered as the auto-save callback.
func (s *reservationService) AutoSaved(path string, count int) {
	e := events.New(events.TypeAutoSaved)
	e.Path = path
	e.Count = count
	s.emitter.Emit(context.Background(), e)
}

func (s *reservationService) Stats(_ context.Context) Stats {
	return Stats{
		Rooms:        s.catalogue().Len(),
		Reservations: s.store.Len(),
	}
}

func persistenceError(op, path string, err error) *apperrors.AppError {
	var malformed *reserrors.MalformedError
	if errors.As(err, &malformed) {
		return apperrors.InvalidInput(malformed.Error()).WithDetails(map[string]any{
			"path": path,
			"line": malformed.Line,
		})
	}

	var unknown *reserrors.UnknownRoomError
	if errors.As(err, &unknown) {
		return apperrors.InvalidInput(unknown.Error()).WithDetails(map[string]any{
			"path": path,
			"room": unknown.Room,
			"line": unknown.Line,
		})
	}

	cause := err
	var ioErr *reserrors.IOError
	if errors.As(err, &ioErr) {
		cause = ioErr.Err
	}
	return apperrors.Internal(fmt.Sprintf("Could not %s %s: %v", op, path, cause), err)
}
