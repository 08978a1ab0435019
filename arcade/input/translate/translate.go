// Package translate turns raw device events into logical controller state
// using the current mapping table.
package translate

import (
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/mapping"
)

// DeadZone is the normalized band around zero in which a synthesized button
// stays released.
const DeadZone = 0.25

// Sink receives logical controller state.
type Sink interface {
	SetButtonState(index, code int, pressed bool)
	SetAxisState(index, code int, value float32)
}

// Translator forwards events matching the published table to a Sink.
type Translator struct {
	store *mapping.Store
	sink  Sink
}

func New(store *mapping.Store, sink Sink) *Translator {
	return &Translator{store: store, sink: sink}
}

// OnKey forwards the button state for every mapping of (deviceID, keyCode)
// and reports whether any matched.
func (t *Translator) OnKey(deviceID, keyCode int, pressed bool) bool {
	handled := false
	for _, m := range t.store.Load().Buttons {
		if m.DeviceID != deviceID || m.DeviceButton != keyCode {
			continue
		}
		t.sink.SetButtonState(m.ControllerIndex, m.Button, pressed)
		handled = true
	}
	return handled
}

// OnAxis forwards one raw axis sample. Button pairs are level-triggered:
// both buttons are sent on every sample.
func (t *Translator) OnAxis(deviceID, axisCode int, raw float32) {
	for _, m := range t.store.Load().Axes {
		if m.DeviceID != deviceID || m.DeviceAxis != axisCode {
			continue
		}
		t.forward(m, m.Normalize(raw))
	}
}

func (t *Translator) forward(m mapping.AxisMapping, v float32) {
	if m.Mode() == mapping.Direct {
		t.sink.SetAxisState(m.ControllerIndex, m.Axis, v)
		return
	}
	t.sink.SetButtonState(m.ControllerIndex, m.NegativeButton, v <= -DeadZone)
	t.sink.SetButtonState(m.ControllerIndex, m.PositiveButton, v >= DeadZone)
}

// IsControllerKey reports whether a key event comes from a gamepad, d-pad or
// joystick source.
func IsControllerKey(s device.Source) bool {
	return s.Has(device.Gamepad) || s.Has(device.DPad) || s.Has(device.Joystick)
}

// HandleKey drops key repeats and non-controller sources, then translates.
func (t *Translator) HandleKey(ev event.Key) bool {
	if ev.Repeat != 0 || !IsControllerKey(ev.Source) {
		return false
	}
	return t.OnKey(ev.DeviceID, ev.Code, ev.Down)
}

// HandleMotion translates a joystick motion sample. It returns false for
// motion from other sources, leaving them to the host's default handling.
func (t *Translator) HandleMotion(ev event.Motion) bool {
	if ev.Source&device.Joystick == 0 {
		return false
	}
	for _, m := range t.store.Load().Axes {
		if m.DeviceID != ev.DeviceID {
			continue
		}
		raw, ok := ev.Axes[m.DeviceAxis]
		if !ok {
			continue
		}
		t.forward(m, m.Normalize(raw))
	}
	return true
}
