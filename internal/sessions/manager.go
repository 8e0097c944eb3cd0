// Package sessions manages live call sessions: one dialogue engine per
// active call, addressed by UUID over the HTTP intake surface.
package sessions

import (
	"context"
	"sync"
	"time"

	callservice "callintake_backend/internal/calls/service"
	"callintake_backend/internal/calls/transport"
	"callintake_backend/internal/dialogue"
	"callintake_backend/platform/apperr"
	"callintake_backend/platform/logger"

	"github.com/google/uuid"
)

// session is one live call. The mutex serializes turns: utterances within a
// call are sequential even if a client retries concurrently.
type session struct {
	mu         sync.Mutex
	engine     *dialogue.Engine
	startedAt  time.Time
	lastActive time.Time
}

// Manager owns the live sessions and finalizes them into call records.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[uuid.UUID]*session
	newEngine func() (*dialogue.Engine, error)
	calls     *callservice.Service
	log       *logger.Logger
	idleTTL   time.Duration
	now       func() time.Time
}

// NewManager creates a session manager. newEngine builds a fresh dialogue
// engine per call; idleTTL bounds how long an abandoned call lingers.
func NewManager(newEngine func() (*dialogue.Engine, error), calls *callservice.Service, log *logger.Logger, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions:  make(map[uuid.UUID]*session),
		newEngine: newEngine,
		calls:     calls,
		log:       log,
		idleTTL:   idleTTL,
		now:       time.Now,
	}
}

// Start opens a new call session and returns its ID with the greeting line.
func (m *Manager) Start(_ context.Context) (uuid.UUID, string, error) {
	engine, err := m.newEngine()
	if err != nil {
		return uuid.UUID{}, "", apperr.Wrap(apperr.KindInternal, "failed to start call session", err)
	}

	id := uuid.New()
	now := m.now()

	m.mu.Lock()
	m.sessions[id] = &session{engine: engine, startedAt: now, lastActive: now}
	m.mu.Unlock()

	m.log.CallEvent("call started", id.String(), string(dialogue.StageGreeting))
	return id, engine.Greeting(), nil
}

// Turn processes one caller utterance and returns the assistant reply with
// the resulting call state.
func (m *Manager) Turn(_ context.Context, id uuid.UUID, text string) (string, dialogue.CallState, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return "", dialogue.CallState{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastActive = m.now()
	reply := sess.engine.ProcessInput(text)
	state := sess.engine.Snapshot()

	m.log.CallEvent("turn processed", id.String(), string(state.Stage))
	if state.Escalated {
		m.log.EmergencyDetected(id.String(), state.Context.Confidence, string(state.Stage), true)
	}

	return reply, state, nil
}

// State returns the session's current call state.
func (m *Manager) State(_ context.Context, id uuid.UUID) (dialogue.CallState, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return dialogue.CallState{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.Snapshot(), nil
}

// End finalizes the session into a persisted call record and removes it.
func (m *Manager) End(ctx context.Context, id uuid.UUID) (transport.CallRecord, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return transport.CallRecord{}, apperr.NotFound("session not found")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	record, err := m.calls.Finalize(ctx, sess.engine.Snapshot(), sess.engine.EmergencySummary(), sess.startedAt, m.now())
	if err != nil {
		return transport.CallRecord{}, err
	}

	m.log.CallEvent("call ended", id.String(), string(record.Outcome))
	return record, nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until the context is cancelled. Abandoned calls
// are finalized so their records are not lost.
func (m *Manager) Run(ctx context.Context) {
	interval := m.idleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *Manager) sweep(ctx context.Context) {
	cutoff := m.now().Add(-m.idleTTL)

	m.mu.Lock()
	var idle []uuid.UUID
	for id, sess := range m.sessions {
		sess.mu.Lock()
		if sess.lastActive.Before(cutoff) {
			idle = append(idle, id)
		}
		sess.mu.Unlock()
	}
	m.mu.Unlock()

	for _, id := range idle {
		if _, err := m.End(ctx, id); err != nil {
			m.log.Error("failed to finalize idle session", "session", id.String(), "error", err)
			continue
		}
		m.log.Info("idle session finalized", "session", id.String())
	}
}

func (m *Manager) lookup(id uuid.UUID) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, apperr.NotFound("session not found")
	}
	return sess, nil
}
