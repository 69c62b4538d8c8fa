package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/resumes"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/validation"
)

const (
	DefaultIdleTimeout        = 30 * time.Minute
	DefaultMaxSessionsPerUser = 5

	maxJanitorInterval = time.Minute
	minJanitorInterval = 10 * time.Millisecond
)

// ResumeStore is what the editor needs from the resume service.
type ResumeStore interface {
	Get(ctx context.Context, userID, id string) (resumes.Resume, error)
	Save(ctx context.Context, userID string, r resumes.Resume) (resumes.Resume, error)
	CanCreate(ctx context.Context, userID string) (bool, error)
}

// Option tunes a Manager.
type Option func(*Manager)

// WithIdleTimeout closes sessions that see no request for d. Zero disables
// expiry.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idle = d }
}

// WithMaxSessionsPerUser bounds the open sessions of one user.
func WithMaxSessionsPerUser(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.maxPerUser = n
		}
	}
}

// WithWriteThrough makes every edit durable before the request returns.
// Used where the process may be frozen between requests.
func WithWriteThrough() Option {
	return func(m *Manager) { m.writeThrough = true }
}

// Manager owns the open editing sessions. At most one session is open per
// user and resume, so all writes to a document go through one autosaver.
type Manager struct {
	store        ResumeStore
	delay        time.Duration
	validator    *validation.Validator
	idle         time.Duration
	maxPerUser   int
	writeThrough bool
	now          func() time.Time

	mu       sync.Mutex
	closed   bool
	sessions map[string]*Session
	byUser   map[string]map[string]*Session

	stop        chan struct{}
	stopOnce    sync.Once
	janitorDone chan struct{}
}

func NewManager(store ResumeStore, delay time.Duration, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		delay:      delay,
		validator:  validation.New(),
		idle:       DefaultIdleTimeout,
		maxPerUser: DefaultMaxSessionsPerUser,
		now:        time.Now,
		sessions:   make(map[string]*Session),
		byUser:     make(map[string]map[string]*Session),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.idle > 0 {
		interval := m.idle / 2
		if interval > maxJanitorInterval {
			interval = maxJanitorInterval
		}
		if interval < minJanitorInterval {
			interval = minJanitorInterval
		}
		m.janitorDone = make(chan struct{})
		go m.janitor(interval)
	}
	return m
}

// Open starts a session on an existing resume, or on an empty draft when
// resumeID is blank. A blank id requires room in the user's quota. Opening a
// resume that already has a session returns that session.
func (m *Manager) Open(ctx context.Context, userID, resumeID string) (*Session, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	var draft resumes.Resume
	if resumeID = strings.TrimSpace(resumeID); resumeID != "" {
		if sess := m.reuse(userID, resumeID); sess != nil {
			return sess, nil
		}
		existing, err := m.store.Get(ctx, userID, resumeID)
		if err != nil {
			return nil, err
		}
		draft = existing
	} else {
		ok, err := m.store.CanCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUpgradeRequired
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrSessionClosed
	}
	if draft.ID != "" {
		if sess := m.findLocked(userID, draft.ID); sess != nil {
			sess.lastSeen = m.now()
			return sess, nil
		}
	}
	if len(m.byUser[userID]) >= m.maxPerUser {
		return nil, ErrTooManySessions
	}

	save := func(ctx context.Context, snapshot resumes.Resume) (resumes.Resume, error) {
		return m.store.Save(ctx, userID, snapshot)
	}
	sess := newSession(uuid.NewString(), userID, draft, m.validator, save, m.delay)
	sess.writeThrough = m.writeThrough
	sess.lastSeen = m.now()
	m.addLocked(sess)

	telemetry.Info("editor.session.open", map[string]any{
		"session_id": sess.ID,
		"user_id":    userID,
		"resume_id":  draft.ID,
	})
	return sess, nil
}

func (m *Manager) reuse(userID, resumeID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess := m.findLocked(userID, resumeID)
	if sess != nil {
		sess.lastSeen = m.now()
	}
	return sess
}

func (m *Manager) findLocked(userID, resumeID string) *Session {
	for _, sess := range m.byUser[userID] {
		if sess.ResumeID() == resumeID {
			return sess
		}
	}
	return nil
}

func (m *Manager) addLocked(sess *Session) {
	m.sessions[sess.ID] = sess
	own := m.byUser[sess.UserID]
	if own == nil {
		own = make(map[string]*Session)
		m.byUser[sess.UserID] = own
	}
	own[sess.ID] = sess
}

func (m *Manager) removeLocked(sess *Session) {
	delete(m.sessions, sess.ID)
	if own := m.byUser[sess.UserID]; own != nil {
		delete(own, sess.ID)
		if len(own) == 0 {
			delete(m.byUser, sess.UserID)
		}
	}
}

// Get returns the caller's session and marks it as used.
func (m *Manager) Get(userID, sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[sessionID]
	if !ok || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = m.now()
	return sess, nil
}

// Close flushes and removes the caller's session.
func (m *Manager) Close(ctx context.Context, userID, sessionID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[sessionID]
	if !ok || sess.UserID != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	m.removeLocked(sess)
	m.mu.Unlock()
	return sess.Close(ctx)
}

// CloseIdle flushes and removes sessions not used within the idle timeout.
func (m *Manager) CloseIdle(ctx context.Context) int {
	if m.idle <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var expired []*Session
	for _, sess := range m.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			m.removeLocked(sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		closeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := sess.Close(closeCtx)
		cancel()
		fields := map[string]any{
			"session_id": sess.ID,
			"user_id":    sess.UserID,
			"resume_id":  sess.ResumeID(),
		}
		if err != nil {
			fields["error"] = err.Error()
			telemetry.Warn("editor.session.expire_failed", fields)
			continue
		}
		metrics.IncSessionExpired()
		telemetry.Info("editor.session.expired", fields)
	}
	return len(expired)
}

func (m *Manager) janitor(interval time.Duration) {
	defer close(m.janitorDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.CloseIdle(context.Background())
		case <-m.stop:
			return
		}
	}
}

// Shutdown stops expiry, then flushes and closes every open session. Later
// opens fail.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stop) })
	if m.janitorDone != nil {
		<-m.janitorDone
	}

	m.mu.Lock()
	m.closed = true
	open := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		open = append(open, sess)
		m.removeLocked(sess)
	}
	m.mu.Unlock()

	var errs []error
	for _, sess := range open {
		if err := sess.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len reports the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
