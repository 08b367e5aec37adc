// Package shutdown holds the hook an application installs to react when its
// license stops being valid.
package shutdown

import "sync"

// Handler reacts to a license becoming invalid. reason carries the server
// status and message.
type Handler func(reason string)

// NoopHandler ignores the notification. Requests are still rejected by the gate.
func NoopHandler(string) {}

// Manager handles termination behavior
type Manager struct {
	handler Handler
	mu      sync.RWMutex
}

// New creates a termination manager with the no-op handler
func New() *Manager {
	return &Manager{
		handler: NoopHandler,
	}
}

// SetHandler updates the termination handler. A nil handler is ignored.
func (m *Manager) SetHandler(handler Handler) {
	if handler == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Terminate invokes the termination handler
func (m *Manager) Terminate(reason string) {
	m.mu.RLock()
	handler := m.handler
	m.mu.RUnlock()

	handler(reason)
}
