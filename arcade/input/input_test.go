package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
)

func TestManager_Trigger(t *testing.T) {
	m := NewManager(0)
	calls := 0
	m.On(action.PauseToggle, func() { calls++ })
	m.On(action.PauseToggle, func() { calls++ })

	assert.True(t, m.Trigger(action.PauseToggle))
	assert.Equal(t, 2, calls, "every registered callback runs")
	assert.False(t, m.Trigger(action.Quit), "unregistered action")
}

func TestManager_Debouncing(t *testing.T) {
	tests := []struct {
		name           string
		timeBetween    time.Duration
		expectDebounce bool
	}{
		{name: "rapid repeat is debounced", timeBetween: 5 * time.Millisecond, expectDebounce: true},
		{name: "slow repeat passes", timeBetween: 80 * time.Millisecond, expectDebounce: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(50 * time.Millisecond)
			m.On(action.MenuOpen, func() {})

			assert.True(t, m.Trigger(action.MenuOpen), "first trigger always passes")
			time.Sleep(tt.timeBetween)
			if tt.expectDebounce {
				assert.False(t, m.Trigger(action.MenuOpen))
			} else {
				assert.True(t, m.Trigger(action.MenuOpen))
			}
		})
	}
}

func TestManager_DebounceIsPerAction(t *testing.T) {
	m := NewManager(time.Second)
	m.On(action.MenuOpen, func() {})
	m.On(action.QuickLoad, func() {})

	assert.True(t, m.Trigger(action.MenuOpen))
	assert.True(t, m.Trigger(action.QuickLoad))
	assert.False(t, m.Trigger(action.MenuOpen))
}

func key(code int, down bool, held time.Duration) event.Key {
	return event.Key{DeviceID: 1, Source: device.Gamepad, Code: code, Down: down, Held: held}
}

func TestShortcuts(t *testing.T) {
	tests := []struct {
		name    string
		attract bool
		ev      event.Key
		act     action.Action
		consume bool
	}{
		{"plain press", false, key(keycode.ButtonA, true, 0), action.None, false},
		{"short start", false, key(keycode.ButtonStart, true, time.Second), action.None, false},
		{"long start quits", false, key(keycode.ButtonStart, true, LongPress), action.Quit, true},
		{"long L1 restarts", false, key(keycode.ButtonL1, true, 6*time.Second), action.Restart, true},
		{"long A ignored", false, key(keycode.ButtonA, true, 6*time.Second), action.None, false},
		{"select release opens menu", false, key(keycode.ButtonSelect, false, 0), action.MenuOpen, false},
		{"select press passes", false, key(keycode.ButtonSelect, true, 0), action.None, false},
		{"attract press quits", true, key(keycode.ButtonA, true, 0), action.Quit, true},
		{"attract release passes", true, key(keycode.ButtonA, false, 0), action.None, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Shortcuts{Attract: tt.attract}
			act, consume := s.Inspect(tt.ev)
			assert.Equal(t, tt.act, act)
			assert.Equal(t, tt.consume, consume)
		})
	}
}

func TestShortcuts_RestartOnce(t *testing.T) {
	s := &Shortcuts{}
	held := key(keycode.ButtonL1, true, LongPress)

	act, _ := s.Inspect(held)
	assert.Equal(t, action.Restart, act)

	act, consume := s.Inspect(held)
	assert.Equal(t, action.None, act)
	assert.False(t, consume)

	s.Rearm()
	act, _ = s.Inspect(held)
	assert.Equal(t, action.Restart, act)
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, "menu-open", action.MenuOpen.String())
	assert.Equal(t, action.FastForwardToggle, action.Parse("fast-forward-toggle"))
	assert.Equal(t, action.None, action.Parse("bogus"))
	assert.Equal(t, "unknown", action.Action(99).String())
}
