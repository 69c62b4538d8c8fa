package editor

import (
	"context"
	"sync"
	"time"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

// DefaultAutosaveDelay is the debounce window between the last edit and the write.
const DefaultAutosaveDelay = 1500 * time.Millisecond

const writeTimeout = 30 * time.Second

// SaveFunc persists a full snapshot and returns the stored document.
type SaveFunc func(ctx context.Context, snapshot resumes.Resume) (resumes.Resume, error)

// SaveStatus describes the autosaver's progress.
type SaveStatus struct {
	IsSaving    bool
	Pending     bool
	LastSavedAt time.Time
	LastError   error
}

// Autosaver debounces snapshots for one document and writes them from a
// single goroutine. A newer snapshot replaces a pending one, so the last
// merged state wins. The id returned by the first successful write is
// stamped on every later snapshot.
type Autosaver struct {
	save    SaveFunc
	delay   time.Duration
	onSaved func(resumes.Resume)

	mu          sync.Mutex
	pending     *resumes.Resume
	timer       *time.Timer
	savedID     string
	saving      bool
	lastSavedAt time.Time
	lastErr     error
	closed      bool
	closeOnce   sync.Once

	kick    chan struct{}
	flushes chan chan error
	done    chan struct{}
	stopped chan struct{}
}

// NewAutosaver starts the writer goroutine. onSaved may be nil.
func NewAutosaver(save SaveFunc, delay time.Duration, onSaved func(resumes.Resume)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	a := &Autosaver{
		save:    save,
		delay:   delay,
		onSaved: onSaved,
		kick:    make(chan struct{}, 1),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go a.run()
	return a
}

// Schedule queues snapshot for writing after the debounce delay. It returns
// ErrSessionClosed once the autosaver has been closed.
func (a *Autosaver) Schedule(snapshot resumes.Resume) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrSessionClosed
	}
	snap := snapshot.Clone()
	a.pending = &snap
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
		return nil
	}
	a.timer.Reset(a.delay)
	return nil
}

// Flush writes any pending snapshot now and waits for it. Writes already in
// progress finish first.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrSessionClosed
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()

	reply := make(chan error, 1)
	select {
	case a.flushes <- reply:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes and stops the writer. Later schedules are ignored.
func (a *Autosaver) Close(ctx context.Context) error {
	var err error
	a.closeOnce.Do(func() {
		err = a.Flush(ctx)
		a.mu.Lock()
		a.closed = true
		if a.timer != nil {
			a.timer.Stop()
		}
		a.mu.Unlock()
		close(a.done)
		<-a.stopped
	})
	return err
}

func (a *Autosaver) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}

// Status reports whether a write is running or queued.
func (a *Autosaver) Status() SaveStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return SaveStatus{
		IsSaving:    a.saving,
		Pending:     a.pending != nil,
		LastSavedAt: a.lastSavedAt,
		LastError:   a.lastErr,
	}
}

func (a *Autosaver) fire() {
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

func (a *Autosaver) run() {
	defer close(a.stopped)
	for {
		select {
		case <-a.kick:
			a.writePending()
		case reply := <-a.flushes:
			reply <- a.writePending()
		case <-a.done:
			return
		}
	}
}

// writePending runs only on the writer goroutine.
func (a *Autosaver) writePending() error {
	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	if snap == nil {
		a.mu.Unlock()
		return nil
	}
	if a.savedID != "" {
		snap.ID = a.savedID
	}
	a.saving = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	saved, err := a.save(ctx, *snap)
	cancel()

	a.mu.Lock()
	a.saving = false
	if err != nil {
		a.lastErr = err
		// keep the failed snapshot for the next flush unless a newer one arrived
		if a.pending == nil {
			a.pending = snap
		}
		a.mu.Unlock()
		metrics.IncAutosaveFailure()
		telemetry.Warn("editor.autosave.failed", map[string]any{
			"resume_id": snap.ID,
			"error":     err.Error(),
		})
		return err
	}
	a.lastErr = nil
	a.lastSavedAt = time.Now().UTC()
	if a.savedID == "" {
		a.savedID = saved.ID
	}
	a.mu.Unlock()

	metrics.IncAutosaveWrite()
	if a.onSaved != nil {
		a.onSaved(saved)
	}
	return nil
}
