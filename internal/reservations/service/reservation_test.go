package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"roombook/internal/catalogue"
	"roombook/internal/events"
	"roombook/internal/reservations/store"
	"roombook/internal/reservations/validator"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = timeutil.NewDate(2099, time.January, 10)

func at(hour int) timeutil.TimeOfDay { return timeutil.NewTimeOfDay(hour, 0) }

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Type
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func setup(t *testing.T) (ReservationService, *store.Store, *recorder) {
	t.Helper()
	cat := catalogue.New(
		model.NewClassroom("C1", 20, true, true),
		model.NewLaboratory("L1", 16, true, true),
	)
	st := store.New(cat, validator.NewReservationValidator(timeutil.RealClock{}))
	rec := &recorder{}
	svc := NewReservationService(st, events.NewEmitter(rec, time.Second, logger.Discard()), logger.Discard())
	return svc, st, rec
}

func proposal(room string, start, end int, name string) model.Proposal {
	return model.Proposal{
		Room:       room,
		Date:       day,
		StartTime:  at(start),
		EndTime:    at(end),
		ReservedBy: name,
		Type:       model.ReservationLesson,
	}
}

func requireAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestAdd(t *testing.T) {
	svc, _, rec := setup(t)
	ctx := context.Background()

	created, err := svc.Add(ctx, proposal(" C1 ", 9, 11, "  Alice Smith \t"))
	require.NoError(t, err)
	assert.Equal(t, "C1", created.Room)
	assert.Equal(t, "Alice Smith", created.ReservedBy)

	require.Equal(t, []events.Type{events.TypeReservationCreated}, rec.types())
	assert.Equal(t, created, *rec.last().Reservation)

	_, err = svc.Add(ctx, proposal("C1", 10, 11, "Eve"))
	appErr := requireAppError(t, err, apperrors.CodeValidation)
	assert.Equal(t, validator.MsgConflict, appErr.Message)
	assert.Len(t, rec.types(), 1, "rejections emit nothing")
}

func TestAdd_ValidatesNameAsTyped(t *testing.T) {
	svc, st, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		reservedBy string
		want       string
	}{
		{"too long with double space", strings.Repeat("a", 24) + "  " + strings.Repeat("b", 25), "Name must not exceed 50 characters"},
		{"inner tab", "Mary\tAnn", validator.MsgNameInvalidChars},
		{"control character", "Al\x00ice", validator.MsgNameInvalidChars},
		{"only whitespace", " \t ", validator.MsgNameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, proposal("C1", 9, 11, tt.reservedBy))
			appErr := requireAppError(t, err, apperrors.CodeValidation)
			assert.Equal(t, tt.want, appErr.Message)
		})
	}
	assert.Zero(t, st.Len())

	r, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)
	u := model.UpdateOf(r)
	u.ReservedBy = "Mary\tAnn"
	_, err = svc.Edit(ctx, r.ID(), u)
	appErr := requireAppError(t, err, apperrors.CodeValidation)
	assert.Equal(t, validator.MsgNameInvalidChars, appErr.Message)
}

func TestAdd_UnknownRoom(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Add(context.Background(), proposal("Z9", 9, 11, "Alice"))
	appErr := requireAppError(t, err, apperrors.CodeValidation)
	assert.Equal(t, validator.MsgRoomNotSelected, appErr.Message)
}

func TestEdit(t *testing.T) {
	svc, st, rec := setup(t)
	ctx := context.Background()

	original, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)

	u := model.UpdateOf(original)
	u.StartTime, u.EndTime = at(13), at(15)
	updated, err := svc.Edit(ctx, original.ID(), u)
	require.NoError(t, err)
	assert.Equal(t, at(13), updated.StartTime)
	assert.Equal(t, "C1", updated.Room)

	e := rec.last()
	assert.Equal(t, events.TypeReservationUpdated, e.Type)
	require.NotNil(t, e.Previous)
	assert.Equal(t, original, *e.Previous)

	_, ok := st.Get(original.ID())
	assert.False(t, ok, "old identity is gone")
}

func TestEdit_Errors(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Edit(ctx, model.ID{Room: "C1", Date: day, Start: at(9)}, model.Update{})
	requireAppError(t, err, apperrors.CodeNotFound)

	a, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)
	_, err = svc.Add(ctx, proposal("C1", 11, 13, "Bob"))
	require.NoError(t, err)

	u := model.UpdateOf(a)
	u.EndTime = at(12)
	_, err = svc.Edit(ctx, a.ID(), u)
	requireAppError(t, err, apperrors.CodeValidation)
}

func TestRemove(t *testing.T) {
	svc, _, rec := setup(t)
	ctx := context.Background()

	r, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)

	assert.True(t, svc.Remove(ctx, r.ID()))
	assert.Equal(t, events.TypeReservationRemoved, rec.last().Type)

	assert.False(t, svc.Remove(ctx, r.ID()), "second remove is a no-op")
	assert.Len(t, rec.types(), 2)
}

func TestRoomQueries(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	assert.Len(t, svc.Rooms(ctx), 2)

	_, err := svc.Room(ctx, "Z9")
	requireAppError(t, err, apperrors.CodeNotFound)

	options, err := svc.EndOptions(ctx, "L1", at(14))
	require.NoError(t, err)
	assert.Equal(t, []timeutil.TimeOfDay{at(16), at(18)}, options)

	options, err = svc.EndOptions(ctx, "C1", at(19))
	require.NoError(t, err)
	assert.Empty(t, options)

	_, err = svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)
	free, err := svc.FreeIntervals(ctx, "C1", day)
	require.NoError(t, err)
	assert.Equal(t, []store.Interval{
		{Start: at(8), End: at(9)},
		{Start: at(11), End: at(18)},
	}, free)

	g := svc.Grid(ctx, day)
	assert.Equal(t, []string{"C1", "L1"}, g.Columns[1:])
	assert.NotNil(t, g.Row(at(10)).Column("C1"))

	assert.Len(t, svc.ForDate(ctx, day), 1)
	assert.Len(t, svc.ForRoom(ctx, "L1"), 0)
	assert.Equal(t, Stats{Rooms: 2, Reservations: 1}, svc.Stats(ctx))
}

func TestSaveAndLoad(t *testing.T) {
	svc, _, rec := setup(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)
	b, err := svc.Add(ctx, proposal("L1", 8, 10, "Dana"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "week")
	saved, err := svc.Save(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, path+".resv", saved.Path)
	assert.Equal(t, 2, saved.Count)

	other, _, rec2 := setup(t)
	loaded, err := other.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, FileResult{Path: path + ".resv", Count: 2}, loaded)
	assert.Equal(t, []model.Reservation{a, b}, other.Snapshot(ctx))

	e := rec2.last()
	assert.Equal(t, events.TypeReservationsLoaded, e.Type)
	assert.Equal(t, 2, e.Count)
	assert.Len(t, rec.types(), 2, "saving emits nothing")
}

func TestLoad_FailuresKeepState(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	existing, err := svc.Add(ctx, proposal("C1", 9, 11, "Alice"))
	require.NoError(t, err)

	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.resv")
	require.NoError(t, os.WriteFile(malformed, []byte("RESERVATION\nroom C1\nEND\n"), 0o644))

	unknown := filepath.Join(dir, "unknown.resv")
	require.NoError(t, os.WriteFile(unknown, []byte(
		"RESERVATION\nroom=Z9\ndate=2099-01-10\nstartTime=09:00\nendTime=11:00\nreservedBy=Bob\ntype=EXAM\nEND\n",
	), 0o644))

	record := "RESERVATION\nroom=C1\ndate=2099-01-10\nstartTime=%02d:00\nendTime=%02d:00\nreservedBy=Bob\ntype=EXAM\nEND\n"
	overlapping := filepath.Join(dir, "overlap.resv")
	require.NoError(t, os.WriteFile(overlapping, []byte(
		fmt.Sprintf(record, 9, 11)+"\n"+fmt.Sprintf(record, 10, 12),
	), 0o644))

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing file", filepath.Join(dir, "nope"), apperrors.CodeNotFound},
		{"malformed", malformed, apperrors.CodeInvalidInput},
		{"unknown room", unknown, apperrors.CodeInvalidInput},
		{"overlapping records", overlapping, apperrors.CodeInvalidInput},
		{"empty path", "  ", apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(ctx, tt.path)
			requireAppError(t, err, tt.code)
			assert.Equal(t, []model.Reservation{existing}, svc.Snapshot(ctx))
		})
	}
}

func TestLoad_MalformedReportsLine(t *testing.T) {
	svc, _, _ := setup(t)

	path := filepath.Join(t.TempDir(), "bad.resv")
	require.NoError(t, os.WriteFile(path, []byte("RESERVATION\nroom C1\nEND\n"), 0o644))

	_, err := svc.Load(context.Background(), path)
	appErr := requireAppError(t, err, apperrors.CodeInvalidInput)
	assert.Equal(t, 2, appErr.Details["line"])
}

func TestSave_IOError(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Save(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "x"))
	appErr := requireAppError(t, err, apperrors.CodeInternal)
	assert.Contains(t, appErr.Message, "Could not save")
}

func TestAutoSaved(t *testing.T) {
	svc, _, rec := setup(t)

	svc.AutoSaved("autosave.resv", 3)

	e := rec.last()
	assert.Equal(t, events.TypeAutoSaved, e.Type)
	assert.Equal(t, "autosave.resv", e.Path)
	assert.Equal(t, 3, e.Count)
}
