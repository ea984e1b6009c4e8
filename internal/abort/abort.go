// Package abort implements a tree of cancellation scopes. Cancelling a
// scope cancels all of its descendants, existing and future, but never
// its parent or siblings.
package abort

import (
	"context"
	"errors"
	"sync"
)

// ErrAborted is returned by operations that were cut short by a
// cancelled scope.
var ErrAborted = errors.New("the operation was aborted")

// IsAborted reports whether err was caused by a cancelled scope or a
// cancelled context.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}

// Scope is a node in the cancellation tree. The zero value is not
// usable; create scopes with NewRootScope and Scope.NewChild.
type Scope struct {
	mu        sync.Mutex
	cancelled bool
	listeners []func()
	done      chan struct{}
}

// NewRootScope creates a scope with no parent.
func NewRootScope() *Scope {
	return &Scope{done: make(chan struct{})}
}

// NewChild creates a scope that is cancelled when s is cancelled.
// If s is already cancelled the child is returned already cancelled.
func (s *Scope) NewChild() *Scope {
	child := NewRootScope()
	s.OnCancel(child.Cancel)
	return child
}

// Cancel marks the scope cancelled and synchronously invokes every
// registered listener. Calling Cancel more than once is a no-op.
func (s *Scope) Cancel() {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		return
	}
	s.cancelled = true
	listeners := s.listeners
	s.listeners = nil
	close(s.done)
	s.mu.Unlock()

	// Listeners run outside the lock so they may inspect the scope,
	// but before Cancel returns so a cancel-then-check caller never
	// sees a stale state.
	for _, fn := range listeners {
		fn()
	}
}

// Cancelled reports whether the scope has been cancelled.
func (s *Scope) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// OnCancel registers fn to run when the scope is cancelled. If the
// scope is already cancelled, fn runs immediately.
func (s *Scope) OnCancel(fn func()) {
	s.mu.Lock()
	if s.cancelled {
		s.mu.Unlock()
		fn()
		return
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Done returns a channel that is closed when the scope is cancelled.
func (s *Scope) Done() <-chan struct{} {
	return s.done
}

// Err returns ErrAborted if the scope is cancelled, nil otherwise.
func (s *Scope) Err() error {
	if s.Cancelled() {
		return ErrAborted
	}
	return nil
}

// Context returns a context that is cancelled when the scope is
// cancelled, for handing to network calls and subprocesses.
func (s *Scope) Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	s.OnCancel(cancel)
	return ctx
}
