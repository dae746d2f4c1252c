package storage

import (
	"log/slog"
	"sync"
	"time"
)

// Flusher debounces state saves. Every edit marks the roster dirty;
// the actual disk write happens once things settle, so a burst of
// edits costs one write.
type Flusher struct {
	delay  time.Duration
	save   func() error
	logger *slog.Logger

	mu     sync.Mutex
	timer  *time.Timer
	closed bool
}

// NewFlusher creates a flusher calling save after delay of quiet.
func NewFlusher(delay time.Duration, save func() error, logger *slog.Logger) *Flusher {
	return &Flusher{delay: delay, save: save, logger: logger}
}

// Trigger schedules a save, resetting the quiet-period timer.
func (f *Flusher) Trigger() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, f.flush)
}

func (f *Flusher) flush() {
	if err := f.save(); err != nil {
		f.logger.Error("debounced save failed", "error", err)
	}
}

// Close stops the timer and runs one final synchronous save so no
// pending edit is lost at shutdown.
func (f *Flusher) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	pending := f.timer != nil && f.timer.Stop()
	f.timer = nil
	f.mu.Unlock()

	if pending {
		f.flush()
	}
}
