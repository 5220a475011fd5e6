package mqtt

import "sync"

// ConnectionState reflects the last transport liveness report
type ConnectionState int

const (
	// Disconnected is the initial state and the state after any failed
	// connect or non-clean disconnect
	Disconnected ConnectionState = iota
	// Connected is entered on a successful connect callback
	Connected
)

// String returns the string representation of the state
func (s ConnectionState) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// StateTracker owns the connection state exclusively. The transport's
// background goroutine mutates it through the callback methods; the
// sampling/consuming loops only ever read it. The mutex is the sole
// synchronization across that boundary.
type StateTracker struct {
	mu    sync.RWMutex
	state ConnectionState
}

// NewStateTracker creates a tracker in the Disconnected state
func NewStateTracker() *StateTracker {
	return &StateTracker{state: Disconnected}
}

// OnConnect records a successful connect callback
func (t *StateTracker) OnConnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Connected
}

// OnConnectFailed records a connect callback with a non-zero result code
func (t *StateTracker) OnConnectFailed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Disconnected
}

// OnConnectionLost records a disconnect callback with a non-zero reason
func (t *StateTracker) OnConnectionLost() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Disconnected
}

// IsConnected reports the last known transport state
func (t *StateTracker) IsConnected() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state == Connected
}

// State returns the current state value
func (t *StateTracker) State() ConnectionState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}
