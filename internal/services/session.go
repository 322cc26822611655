package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"podsafe/internal/models"
	"podsafe/pkg/classifier"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Phase is the lifecycle position of a Session.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// UIState is a snapshot of what a client should render.
// Result is set only in PhaseSuccess and Message only in PhaseFailure.
type UIState struct {
	Phase   Phase              `json:"phase"`
	Result  *classifier.Result `json:"result,omitempty"`
	CheckID *uuid.UUID         `json:"check_id,omitempty"`
	Message string             `json:"message,omitempty"`
	Seq     uint64             `json:"seq"`
}

// Loading reports whether a submission is in flight; clients disable submit while it is.
func (s UIState) Loading() bool { return s.Phase == PhaseLoading }

// Session owns one UIState and moves it through
// Idle -> Loading -> Success|Failure. Every submission gets a new sequence
// number and only the response carrying the latest one is applied.
type Session struct {
	ID uuid.UUID

	checker Checker
	base    context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	mu     sync.Mutex
	seq    uint64
	state  UIState
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates an idle session.
func NewSession(checker Checker) *Session {
	base, stop := context.WithCancel(context.Background())
	return &Session{
		ID:      uuid.New(),
		checker: checker,
		base:    base,
		stop:    stop,
		state:   UIState{Phase: PhaseIdle},
	}
}

// State returns the current snapshot.
func (s *Session) State() UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit starts checking description and returns the Loading state. An
// in-flight submission is cancelled and its late response is discarded.
// A blank description is rejected without touching the state.
func (s *Session) Submit(description string) (UIState, error) {
	if strings.TrimSpace(description) == "" {
		return s.State(), fmt.Errorf("%w: description is blank", models.ErrValidation)
	}

	s.mu.Lock()
	if s.base.Err() != nil {
		s.mu.Unlock()
		return s.State(), fmt.Errorf("session %s is closed", s.ID)
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	ctx, cancel := context.WithCancel(s.base)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.state = UIState{Phase: PhaseLoading, Seq: seq}
	st := s.state
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()
		check, err := s.checker.Check(ctx, CheckParams{Input: description, Raw: true})
		s.settle(seq, check, err)
	}()
	return st, nil
}

func (s *Session) settle(seq uint64, check *models.Check, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		log.WithFields(log.Fields{"session_id": s.ID, "seq": seq, "latest": s.seq}).Debug("Discarding stale check response")
		return
	}
	s.cancel = nil

	next := UIState{Seq: seq}
	if check != nil {
		id := check.ID
		next.CheckID = &id
	}
	if err != nil {
		next.Phase = PhaseFailure
		next.Message = UserMessage(err)
	} else {
		next.Phase = PhaseSuccess
		next.Result = &classifier.Result{Keywords: check.Keywords, IsForKids: check.IsForKids}
	}
	s.state = next
}

// Wait blocks until the latest submission settles or ctx is done, and returns
// the state at that point. An idle or settled session returns immediately.
func (s *Session) Wait(ctx context.Context) (UIState, error) {
	for {
		s.mu.Lock()
		st, done := s.state, s.done
		s.mu.Unlock()

		if st.Phase != PhaseLoading || done == nil {
			return st, nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return s.State(), ctx.Err()
		}
	}
}

// Close cancels any in-flight submission and waits for it to exit.
func (s *Session) Close() {
	s.mu.Lock()
	s.stop()
	s.mu.Unlock()
	s.wg.Wait()
}

// Default bounds for a SessionRegistry.
const (
	DefaultMaxSessions    = 1000
	DefaultSessionIdleTTL = 30 * time.Minute
)

type registryEntry struct {
	sess     *Session
	lastUsed time.Time
}

// SessionRegistry holds sessions for the HTTP API. Sessions untouched for
// longer than the idle TTL are dropped, and at most maxSessions are kept;
// creating one past the cap evicts the least recently used.
type SessionRegistry struct {
	checker     Checker
	maxSessions int
	idleTTL     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*registryEntry
}

func NewSessionRegistry(checker Checker) *SessionRegistry {
	return &SessionRegistry{
		checker:     checker,
		maxSessions: DefaultMaxSessions,
		idleTTL:     DefaultSessionIdleTTL,
		now:         time.Now,
		sessions:    make(map[uuid.UUID]*registryEntry),
	}
}

// WithLimits overrides the size cap and idle TTL. Non-positive values keep
// the current setting.
func (r *SessionRegistry) WithLimits(maxSessions int, idleTTL time.Duration) *SessionRegistry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if maxSessions > 0 {
		r.maxSessions = maxSessions
	}
	if idleTTL > 0 {
		r.idleTTL = idleTTL
	}
	return r
}

// Create registers a new idle session.
func (r *SessionRegistry) Create() *Session {
	sess := NewSession(r.checker)

	r.mu.Lock()
	now := r.now()
	evicted := r.pruneLocked(now)
	for len(r.sessions) >= r.maxSessions {
		evicted = append(evicted, r.evictOldestLocked())
	}
	r.sessions[sess.ID] = &registryEntry{sess: sess, lastUsed: now}
	r.mu.Unlock()

	closeAll(evicted)
	return sess
}

// Get returns the session with id, if any, and marks it used.
func (r *SessionRegistry) Get(id uuid.UUID) (*Session, bool) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, false
	}
	now := r.now()
	if now.Sub(e.lastUsed) > r.idleTTL {
		delete(r.sessions, id)
		r.mu.Unlock()
		log.Debugf("session %s expired after %s idle", id, r.idleTTL)
		e.sess.Close()
		return nil, false
	}
	e.lastUsed = now
	r.mu.Unlock()
	return e.sess, true
}

// Len reports how many sessions are held.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Remove closes and forgets the session. It reports whether it existed.
func (r *SessionRegistry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		e.sess.Close()
	}
	return ok
}

// Close shuts down every session.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*registryEntry)
	r.mu.Unlock()
	for _, e := range sessions {
		e.sess.Close()
	}
}

func (r *SessionRegistry) pruneLocked(now time.Time) []*Session {
	var expired []*Session
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.idleTTL {
			delete(r.sessions, id)
			expired = append(expired, e.sess)
		}
	}
	return expired
}

func (r *SessionRegistry) evictOldestLocked() *Session {
	var oldestID uuid.UUID
	var oldest *registryEntry
	for id, e := range r.sessions {
		if oldest == nil || e.lastUsed.Before(oldest.lastUsed) {
			oldestID, oldest = id, e
		}
	}
	delete(r.sessions, oldestID)
	log.Debugf("session %s evicted, registry at capacity %d", oldestID, r.maxSessions)
	return oldest.sess
}

func closeAll(sessions []*Session) {
	for _, sess := range sessions {
		sess.Close()
	}
}
