package input

import (
	"log/slog"
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/action"
)

// DefaultDebounce is the minimum time between two triggers of the same action.
const DefaultDebounce = 300 * time.Millisecond

// Manager dispatches host actions to registered callbacks
type Manager struct {
	handlers      map[action.Action][]func()
	lastTriggered map[action.Action]time.Time
	debounce      time.Duration
}

// NewManager creates a manager; a zero debounce disables debouncing.
func NewManager(debounce time.Duration) *Manager {
	return &Manager{
		handlers:      make(map[action.Action][]func()),
		lastTriggered: make(map[action.Action]time.Time),
		debounce:      debounce,
	}
}

// On registers a callback for an action
func (m *Manager) On(act action.Action, callback func()) {
	m.handlers[act] = append(m.handlers[act], callback)
}

// Trigger runs the callbacks registered for act. It returns false if nothing
// is registered or the trigger was debounced.
func (m *Manager) Trigger(act action.Action) bool {
	if m.debounce > 0 {
		now := time.Now()
		if last, ok := m.lastTriggered[act]; ok && now.Sub(last) < m.debounce {
			slog.Debug("Action debounced", "action", act)
			return false
		}
		m.lastTriggered[act] = now
	}

	callbacks := m.handlers[act]
	if len(callbacks) == 0 {
		slog.Debug("No handler for action", "action", act)
		return false
	}
	for _, cb := range callbacks {
		cb()
	}
	return true
}
