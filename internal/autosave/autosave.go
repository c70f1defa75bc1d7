package autosave

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook/internal/reservations/codec"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/robfig/cron/v3"
)

const (
	DefaultPath            = "autosave" + codec.Extension
	DefaultInterval        = time.Minute
	DefaultShutdownTimeout = 60 * time.Second
)

var ErrAlreadyStarted = errors.New("auto-save already started")

// Source provides the reservations to persist. Implementations must return a
// copy taken under their own lock.
type Source interface {
	Snapshot() []model.Reservation
}

// SavedFunc is called after every successful save.
type SavedFunc func(path string, count int)

type Config struct {
	Path            string
	Interval        time.Duration
	ShutdownTimeout time.Duration
}

// Task periodically writes a snapshot of the reservation set to a fixed file.
// At most one save runs at a time; a tick that arrives while a save is still
// running is skipped.
type Task struct {
	cron   *cron.Cron
	source Source
	cfg    Config
	log    *logger.Logger

	mu      sync.Mutex
	started bool
	entry   cron.EntryID
	onSaved SavedFunc
}

func New(cfg Config, source Source, log *logger.Logger) *Task {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	cfg.Path = codec.WithExtension(cfg.Path)

	log = log.Component("autosave")
	cl := cronLogger{log: log}

	return &Task{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		source: source,
		cfg:    cfg,
		log:    log,
	}
}

// OnSaved registers a callback for successful saves. It must be set before Start.
func (t *Task) OnSaved(fn SavedFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSaved = fn
}

func (t *Task) Path() string {
	return t.cfg.Path
}

func (t *Task) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return ErrAlreadyStarted
	}

	schedule := fmt.Sprintf("@every %s", t.cfg.Interval)
	entry, err := t.cron.AddFunc(schedule, t.run)
	if err != nil {
		return fmt.Errorf("failed to schedule auto-save: %w", err)
	}
	t.entry = entry
	t.cron.Start()
	t.started = true

	t.log.Info("Auto-save started",
		"path", t.cfg.Path,
		"interval", t.cfg.Interval,
	)
	return nil
}

// Stop prevents further saves and waits up to the shutdown timeout for an
// in-flight save. It reports whether the wait completed in time; when it did
// not, the save is abandoned. A stopped task can be started again.
func (t *Task) Stop() bool {
	t.mu.Lock()
	if !t.started {
		t.mu.Unlock()
		return true
	}
	t.started = false
	entry := t.entry
	t.mu.Unlock()

	t.log.Info("Stopping auto-save", "timeout", t.cfg.ShutdownTimeout)
	ctx := t.cron.Stop()
	t.cron.Remove(entry)

	timer := time.NewTimer(t.cfg.ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		t.log.Info("Auto-save stopped")
		return true
	case <-timer.C:
		t.log.Warn("Auto-save did not finish before the shutdown timeout, abandoning it",
			"timeout", t.cfg.ShutdownTimeout,
		)
		return false
	}
}

// SaveNow writes the current snapshot immediately, outside the schedule.
func (t *Task) SaveNow() (int, error) {
	reservations := t.source.Snapshot()
	path, err := codec.Save(t.cfg.Path, reservations)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	onSaved := t.onSaved
	t.mu.Unlock()
	if onSaved != nil {
		onSaved(path, len(reservations))
	}
	return len(reservations), nil
}

func (t *Task) run() {
	start := time.Now()
	count, err := t.SaveNow()
	if err != nil {
		t.log.Error("Auto-save failed",
			"path", t.cfg.Path,
			"error", err,
		)
		return
	}
	t.log.Debug("Auto-save completed",
		"path", t.cfg.Path,
		"count", count,
		"duration", time.Since(start),
	)
}

type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
