// Package assistant implements the wake-word triggered session state
// machine that turns captured utterances into spoken replies.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"VoiceChat/internal/abort"
	"VoiceChat/internal/audio"
	"VoiceChat/internal/config"
	"VoiceChat/internal/detect"
	"VoiceChat/internal/stt"
)

// State describes what the assistant is currently doing, for status
// consumers.
type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

// Asker produces a reply for a transcribed question.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Speaker speaks replies and can be interrupted.
type Speaker interface {
	Speak(text string) error
	Stop()
}

// Notifier receives assistant state transitions. Implementations must
// not block.
type Notifier interface {
	Publish(state State)
}

// Deps are the collaborators a session needs.
type Deps struct {
	VAD         detect.VoiceDetector
	StopWord    detect.StopDetector
	Transcriber stt.Transcriber
	Dialogue    Asker
	Speaker     Speaker
	Notifier    Notifier // optional
	Logger      *slog.Logger
}

// Manager owns the single active session slot. Exactly one session may
// exist at a time; TryStart, Active and StopActive are the only
// mutation points.
type Manager struct {
	deps Deps
	cfg  config.Config

	// base context derived once from the root scope; asynchronous
	// session work inherits it so shutdown cancels in-flight calls
	ctx context.Context

	mu     sync.Mutex
	active *Session
}

// NewManager creates a session manager bound to the root scope.
func NewManager(d Deps, cfg config.Config, scope *abort.Scope) *Manager {
	return &Manager{
		deps: d,
		cfg:  cfg,
		ctx:  scope.Context(),
	}
}

// TryStart creates a new session seeded with the frame that woke the
// assistant. Starting a second session while one is active is a
// contract violation and fails fast.
func (m *Manager) TryStart(initial audio.Frame) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, fmt.Errorf("session already running: previous session must be stopped before starting a new one")
	}

	s := &Session{
		id:      time.Now().UnixNano(),
		manager: m,
		frames:  []audio.Frame{initial},
	}
	m.active = s

	m.deps.Logger.Info("started assistant session", "session_id", s.id)
	m.notify(StateListening)
	return s, nil
}

// Active returns the currently active session, or nil.
func (m *Manager) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// StopActive terminates the active session, if any.
func (m *Manager) StopActive() {
	if s := m.Active(); s != nil {
		s.stop()
	}
}

// clear releases the slot if s is still the active session.
func (m *Manager) clear(s *Session) {
	m.mu.Lock()
	cleared := m.active != nil && m.active.id == s.id
	if cleared {
		m.active = nil
	}
	m.mu.Unlock()

	if cleared {
		m.notify(StateIdle)
	}
}

// isActive reports whether s is still the globally active session.
// Re-evaluated after every asynchronous resume, never cached.
func (m *Manager) isActive(s *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active != nil && m.active.id == s.id
}

func (m *Manager) notify(state State) {
	if m.deps.Notifier != nil {
		m.deps.Notifier.Publish(state)
	}
}
