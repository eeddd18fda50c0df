// Package session manages the time-boxed registration window opened by a
// QR-code token: validation, persistence across reloads, countdown and expiry.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"kayit/internal/backend"
	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
	"kayit/internal/ttlcache"
)

// DefaultWindow is how long a validated token stays usable.
const DefaultWindow = 10 * time.Minute

const keyPrefix = "token_expiry_"

// TokenValidator asks the backend whether a token is live.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (backend.TokenValidation, error)
}

// persisted is the cache entry that lets a reload resume the countdown
// without revalidating.
type persisted struct {
	ExpiryTime   time.Time `json:"expiryTime"`
	CustomerCode string    `json:"customerCode,omitempty"`
}

// Manager opens sessions and keeps one *Session per token in process.
type Manager struct {
	validator TokenValidator
	cache     *ttlcache.Typed[persisted]
	window    time.Duration
	clock     func() time.Time
	logger    *slog.Logger
	metrics   *metrics.Metrics

	group    singleflight.Group
	mu       sync.Mutex
	sessions map[string]*Session
}

// Option configures a Manager.
type Option func(*Manager)

// WithWindow sets the registration window length.
func WithWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.window = d
		}
	}
}

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) Option {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// NewManager creates a manager persisting expiry into store.
func NewManager(validator TokenValidator, store ttlcache.Store, opts ...Option) *Manager {
	m := &Manager{
		validator: validator,
		window:    DefaultWindow,
		clock:     time.Now,
		logger:    logger.Discard(),
		sessions:  make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = ttlcache.NewTyped[persisted](store, keyPrefix, m.logger)
	return m
}

// Window returns the configured registration window.
func (m *Manager) Window() time.Duration {
	return m.window
}

// Open returns the session for token, validating it if needed. A persisted,
// unexpired entry resumes the existing window without a backend call.
// Concurrent opens of the same token share one validation.
func (m *Manager) Open(ctx context.Context, token string) *Session {
	if s, ok := m.lookup(token); ok {
		return s
	}
	v, _, _ := m.group.Do(token, func() (any, error) {
		if s, ok := m.lookup(token); ok {
			return s, nil
		}
		s := m.open(context.WithoutCancel(ctx), token)
		if s.State().Status != StatusInvalid {
			m.register(s)
		}
		return s, nil
	})
	return v.(*Session)
}

// Lookup returns an already opened session without validating.
func (m *Manager) Lookup(token string) (*Session, bool) {
	return m.lookup(token)
}

func (m *Manager) open(ctx context.Context, token string) *Session {
	s := newSession(token, m.clock, m.expired)
	log := m.logger.With("token_fp", logger.Fingerprint(token))

	if p, ok := m.cache.Get(ctx, token); ok {
		st := s.activate(m.clock(), p.ExpiryTime, p.CustomerCode)
		m.metrics.IncSessionOpened(string(st.Status), "cache")
		log.InfoContext(ctx, "registration session resumed", "remaining_seconds", st.RemainingSeconds)
		return s
	}

	res, err := m.validator.ValidateToken(ctx, token)
	now := m.clock()
	if err != nil {
		st := s.reject(now, backend.MessageOf(err))
		m.metrics.IncSessionOpened(string(st.Status), "backend")
		log.WarnContext(ctx, "registration token validation failed",
			"category", backend.CategoryOf(err), "error", err)
		return s
	}
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "registration link is not valid"
		}
		st := s.reject(now, msg)
		m.metrics.IncSessionOpened(string(st.Status), "backend")
		log.InfoContext(ctx, "registration token rejected", "message", msg)
		return s
	}

	expiresAt := now.Add(m.window)
	st := s.activate(now, expiresAt, res.CustomerCode)
	if st.Status == StatusValid {
		m.cache.Set(ctx, token, persisted{ExpiryTime: expiresAt, CustomerCode: res.CustomerCode}, m.window)
	}
	m.metrics.IncSessionOpened(string(st.Status), "backend")
	log.InfoContext(ctx, "registration session opened", "expires_at", expiresAt)
	return s
}

// expired drops the persisted entry once a session's window has closed.
func (m *Manager) expired(ctx context.Context, s *Session) {
	m.cache.Remove(ctx, s.Token())
	m.metrics.IncSessionExpired()
	m.logger.InfoContext(ctx, "registration session expired", "token_fp", logger.Fingerprint(s.Token()))
}

func (m *Manager) lookup(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruneLocked(m.clock())
	s, ok := m.sessions[token]
	return s, ok
}

func (m *Manager) register(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token()] = s
}

// pruneLocked forgets expired sessions one window after their expiry. Until
// then a reopen reports expired instead of starting a fresh window.
func (m *Manager) pruneLocked(now time.Time) {
	for token, s := range m.sessions {
		st := s.Tick(now)
		if st.Status == StatusExpired && !now.Before(st.ExpiresAt.Add(m.window)) {
			delete(m.sessions, token)
		}
	}
}

// Len reports how many sessions are registered.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
