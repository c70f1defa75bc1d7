package autosave

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"roombook/internal/catalogue"
	"roombook/internal/reservations/codec"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	reservations []model.Reservation
	calls        atomic.Int32
}

func (s *staticSource) Snapshot() []model.Reservation {
	s.calls.Add(1)
	out := make([]model.Reservation, len(s.reservations))
	copy(out, s.reservations)
	return out
}

type blockingSource struct {
	entered chan struct{}
	release chan struct{}
}

func (s *blockingSource) Snapshot() []model.Reservation {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return nil
}

func sample() []model.Reservation {
	return []model.Reservation{{
		Room:       "C1",
		Date:       timeutil.NewDate(2099, time.January, 10),
		StartTime:  timeutil.NewTimeOfDay(9, 0),
		EndTime:    timeutil.NewTimeOfDay(11, 0),
		ReservedBy: "Alice",
		Type:       model.ReservationLesson,
	}}
}

func TestNew_Defaults(t *testing.T) {
	task := New(Config{}, &staticSource{}, logger.Discard())
	assert.Equal(t, "autosave.resv", task.Path())
	assert.Equal(t, time.Minute, task.cfg.Interval)
	assert.Equal(t, 60*time.Second, task.cfg.ShutdownTimeout)

	task = New(Config{Path: "backup"}, &staticSource{}, logger.Discard())
	assert.Equal(t, "backup.resv", task.Path())
}

func TestSaveNow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.resv")
	source := &staticSource{reservations: sample()}
	task := New(Config{Path: path}, source, logger.Discard())

	var savedPath string
	var savedCount int
	task.OnSaved(func(p string, n int) {
		savedPath, savedCount = p, n
	})

	count, err := task.SaveNow()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, path, savedPath)
	assert.Equal(t, 1, savedCount)

	cat := catalogue.New(model.NewClassroom("C1", 20, true, true))
	loaded, err := codec.Load(path, cat)
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)
}

func TestStart_SavesPeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.resv")
	source := &staticSource{reservations: sample()}
	task := New(Config{Path: path, Interval: time.Second, ShutdownTimeout: time.Second}, source, logger.Discard())

	require.NoError(t, task.Start())
	assert.ErrorIs(t, task.Start(), ErrAlreadyStarted)

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	assert.True(t, task.Stop())
	assert.True(t, task.Stop(), "stopping twice is a no-op")
}

func TestStart_AfterStopSchedulesOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autosave.resv")
	task := New(Config{Path: path, Interval: time.Hour, ShutdownTimeout: time.Second}, &staticSource{}, logger.Discard())

	require.NoError(t, task.Start())
	assert.True(t, task.Stop())
	assert.Empty(t, task.cron.Entries())

	require.NoError(t, task.Start())
	assert.Len(t, task.cron.Entries(), 1)
	assert.True(t, task.Stop())
}

func TestRun_ErrorsAreNotPropagated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "autosave.resv")
	source := &staticSource{reservations: sample()}
	task := New(Config{Path: path}, source, logger.Discard())

	called := false
	task.OnSaved(func(string, int) { called = true })

	assert.NotPanics(t, task.run)
	assert.False(t, called)
	assert.Equal(t, int32(1), source.calls.Load())
}

func TestStop_AbandonsSlowSave(t *testing.T) {
	source := &blockingSource{entered: make(chan struct{}, 1), release: make(chan struct{})}
	defer close(source.release)

	path := filepath.Join(t.TempDir(), "autosave.resv")
	task := New(Config{Path: path, Interval: time.Second, ShutdownTimeout: 100 * time.Millisecond}, source, logger.Discard())
	require.NoError(t, task.Start())

	select {
	case <-source.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("auto-save never ran")
	}

	start := time.Now()
	assert.False(t, task.Stop(), "in-flight save should exceed the timeout")
	assert.Less(t, time.Since(start), 2*time.Second)
}
