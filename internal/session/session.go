package session

import (
	"context"
	"math"
	"sync"
	"time"
)

// Status is the lifecycle position of a registration session.
type Status string

const (
	StatusValidating Status = "validating"
	StatusValid      Status = "valid"
	StatusInvalid    Status = "invalid"
	StatusExpired    Status = "expired"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusInvalid || s == StatusExpired
}

// State is a point-in-time view of a session. RemainingSeconds is positive
// exactly when Status is StatusValid.
type State struct {
	Token            string    `json:"-"`
	Status           Status    `json:"status"`
	ExpiresAt        time.Time `json:"expiresAt,omitzero"`
	RemainingSeconds int       `json:"remainingSeconds"`
	CustomerCode     string    `json:"customerCode,omitempty"`
	Message          string    `json:"message,omitempty"`
}

// Remaining is the time left until expiresAt, never negative.
func Remaining(now, expiresAt time.Time) time.Duration {
	if d := expiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// remainingSeconds rounds up so a session with any time left shows at least 1.
func remainingSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

// Session is one token's registration window. It is safe for concurrent use;
// the countdown stream and the submit handler share the same instance.
type Session struct {
	token string
	clock func() time.Time

	mu           sync.Mutex
	status       Status
	expiresAt    time.Time
	customerCode string
	message      string
	onExpire     func(ctx context.Context, s *Session)
}

func newSession(token string, clock func() time.Time, onExpire func(context.Context, *Session)) *Session {
	return &Session{
		token:    token,
		clock:    clock,
		status:   StatusValidating,
		onExpire: onExpire,
	}
}

func (s *Session) Token() string {
	return s.token
}

// State returns the current view, expiring the session first if its window
// has closed since the last read.
func (s *Session) State() State {
	return s.Tick(s.clock())
}

// Tick recomputes the remaining time at now. Reaching zero moves the session
// to expired and drops its persisted entry; ticks on a session that is not
// valid change nothing.
func (s *Session) Tick(now time.Time) State {
	s.mu.Lock()
	fire := false
	if s.status == StatusValid && Remaining(now, s.expiresAt) == 0 {
		s.status = StatusExpired
		fire = true
	}
	st := s.snapshotLocked(now)
	s.mu.Unlock()

	if fire {
		s.fireExpire(context.Background())
	}
	return st
}

// Expire forces the session to expired, for example when the backend rejects
// a write because the link is no longer live. Invalid sessions stay invalid.
func (s *Session) Expire(ctx context.Context) {
	s.mu.Lock()
	if s.status.Terminal() {
		s.mu.Unlock()
		return
	}
	wasValid := s.status == StatusValid
	s.status = StatusExpired
	s.mu.Unlock()

	if wasValid {
		s.fireExpire(ctx)
	}
}

// Run calls fn with the current state, then again every interval until the
// session is terminal or ctx is done.
func (s *Session) Run(ctx context.Context, interval time.Duration, fn func(State)) {
	st := s.State()
	fn(st)
	if st.Status.Terminal() {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			st = s.Tick(s.clock())
			fn(st)
			if st.Status.Terminal() {
				return
			}
		}
	}
}

// activate applies a successful validation. It only takes effect while the
// session is still validating, and a window that has already closed yields
// expired rather than valid.
func (s *Session) activate(now, expiresAt time.Time, customerCode string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusValidating {
		return s.snapshotLocked(now)
	}
	s.customerCode = customerCode
	s.expiresAt = expiresAt
	if Remaining(now, expiresAt) == 0 {
		s.status = StatusExpired
	} else {
		s.status = StatusValid
	}
	return s.snapshotLocked(now)
}

// reject applies a failed validation.
func (s *Session) reject(now time.Time, message string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusValidating {
		s.status = StatusInvalid
		s.message = message
	}
	return s.snapshotLocked(now)
}

func (s *Session) snapshotLocked(now time.Time) State {
	st := State{
		Token:        s.token,
		Status:       s.status,
		CustomerCode: s.customerCode,
		Message:      s.message,
	}
	if !s.expiresAt.IsZero() {
		st.ExpiresAt = s.expiresAt
	}
	if s.status == StatusValid {
		st.RemainingSeconds = remainingSeconds(Remaining(now, s.expiresAt))
	}
	return st
}

func (s *Session) fireExpire(ctx context.Context) {
	if s.onExpire != nil {
		s.onExpire(ctx, s)
	}
}
