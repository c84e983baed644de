// Package slots guarantees single-flight requests per named slot: beginning a
// request cancels whatever request the slot currently holds, and only the
// slot's current request may commit results.
package slots

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is the cancellation cause of a token replaced by a newer one.
var ErrSuperseded = errors.New("request superseded")

type Token struct {
	ID     string
	Slot   string
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// Context bounds the lifetime of the request the token was issued for.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Superseded reports whether a newer request for the same slot replaced t.
func (t *Token) Superseded() bool {
	return errors.Is(context.Cause(t.ctx), ErrSuperseded)
}

type Manager struct {
	mu     sync.Mutex
	active map[string]*Token
}

func NewManager() *Manager {
	return &Manager{
		active: make(map[string]*Token),
	}
}

// Begin cancels the slot's current token, if any, and installs a fresh one
// derived from parent.
func (m *Manager) Begin(parent context.Context, slot string) *Token {
	ctx, cancel := context.WithCancelCause(parent)
	token := &Token{
		ID:     uuid.NewString(),
		Slot:   slot,
		ctx:    ctx,
		cancel: cancel,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if previous, ok := m.active[slot]; ok {
		previous.cancel(ErrSuperseded)
		slog.Debug("Request superseded", "slot", slot, "previous", previous.ID, "current", token.ID)
	}
	m.active[slot] = token

	return token
}

// Commit runs fn only if t is still current and its context is not done. No
// Begin on the same manager can interleave with fn.
func (m *Manager) Commit(t *Token, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active[t.Slot] != t || t.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Complete returns the slot to idle if t is current, running fn first.
// The token's context is released either way.
func (m *Manager) Complete(t *Token, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	defer t.cancel(context.Canceled)

	if m.active[t.Slot] != t {
		return false
	}
	if fn != nil {
		fn()
	}
	delete(m.active, t.Slot)
	return true
}

// WhenIdle runs fn only if no token holds slot. No Begin can interleave with fn.
func (m *Manager) WhenIdle(slot string, fn func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.active[slot]; ok {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// IsCancellation reports whether err belongs to a request that was abandoned:
// the token was superseded, or its parent was cancelled. Deadlines are
// timeouts, not cancellations.
func IsCancellation(t *Token, err error) bool {
	if err == nil {
		return false
	}
	if t.Superseded() {
		return true
	}
	return errors.Is(t.ctx.Err(), context.Canceled) && errors.Is(err, context.Canceled)
}
