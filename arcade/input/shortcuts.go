package input

import (
	"log/slog"
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
)

// LongPress is how long Start or L1 must be held to quit or restart.
const LongPress = 5 * time.Second

// Shortcuts recognizes host gestures on the raw key stream before the keys
// reach the translator.
type Shortcuts struct {
	// Attract makes any key press quit the session.
	Attract bool

	restarting bool
}

// Inspect returns the action a key event triggers, if any, and whether the
// event is consumed and must not reach the translator.
func (s *Shortcuts) Inspect(ev event.Key) (action.Action, bool) {
	if ev.Down {
		if s.Attract {
			slog.Info("Key pressed in attract mode, quitting")
			return action.Quit, true
		}
		if ev.Held >= LongPress {
			switch {
			case ev.Code == keycode.ButtonStart:
				slog.Info("Long press on Start, quitting")
				return action.Quit, true
			case ev.Code == keycode.ButtonL1 && !s.restarting:
				slog.Info("Long press on L1, restarting")
				s.restarting = true
				return action.Restart, true
			}
		}
		return action.None, false
	}

	// The release still goes to the translator so Select is not left held.
	if ev.Code == keycode.ButtonSelect {
		return action.MenuOpen, false
	}
	return action.None, false
}

// Rearm allows another long-press restart.
func (s *Shortcuts) Rearm() {
	s.restarting = false
}
