package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
	"github.com/valerio/go-arcadehost/arcade/input/mapping"
	"github.com/valerio/go-arcadehost/arcade/profile"
)

type buttonCall struct {
	index, code int
	pressed     bool
}

type axisCall struct {
	index, code int
	value       float32
}

// recordingSink captures every forward in order.
type recordingSink struct {
	buttons []buttonCall
	axes    []axisCall
}

func (r *recordingSink) SetButtonState(index, code int, pressed bool) {
	r.buttons = append(r.buttons, buttonCall{index, code, pressed})
}

func (r *recordingSink) SetAxisState(index, code int, value float32) {
	r.axes = append(r.axes, axisCall{index, code, value})
}

func newTranslator(table *mapping.Table) (*Translator, *recordingSink) {
	store := mapping.NewStore()
	store.Swap(table)
	sink := &recordingSink{}
	return New(store, sink), sink
}

func TestScenarioStandardProfile(t *testing.T) {
	resolver := profile.Tables{"Standard": {Buttons: map[string]int{"Cross": 2}, Axes: map[string]int{"LeftX": 0}}}
	pad := device.Device{ID: 5, Sources: device.Gamepad, MotionRanges: []device.MotionRange{{Axis: 0, Min: 0, Max: 255}}}
	tr, sink := newTranslator(mapping.NewBuilder(resolver).Build("Standard", []device.Device{pad}))

	tr.OnAxis(5, 0, 255)
	require.Len(t, sink.axes, 1)
	assert.Equal(t, 0, sink.axes[0].index)
	assert.Equal(t, 0, sink.axes[0].code)
	assert.InDelta(t, 1.0, sink.axes[0].value, 1e-6)

	handled := tr.OnKey(5, 96, true)
	assert.True(t, handled)
	assert.Equal(t, []buttonCall{{0, 2, true}}, sink.buttons)
}

func TestOnKeyUnmatched(t *testing.T) {
	tr, sink := newTranslator(&mapping.Table{Buttons: []mapping.ButtonMapping{{DeviceID: 1, DeviceButton: 96, Button: 14}}})

	assert.False(t, tr.OnKey(2, 96, true), "other device")
	assert.False(t, tr.OnKey(1, 97, true), "other key")
	assert.Empty(t, sink.buttons)
}

func TestOnKeyFansOutToAllMatches(t *testing.T) {
	tr, sink := newTranslator(&mapping.Table{Buttons: []mapping.ButtonMapping{
		{DeviceID: 1, DeviceButton: 96, Button: 14},
		{DeviceID: 1, DeviceButton: 96, Button: 3},
	}})

	assert.True(t, tr.OnKey(1, 96, false))
	assert.Equal(t, []buttonCall{{0, 14, false}, {0, 3, false}}, sink.buttons)
}

func TestNormalizationRange(t *testing.T) {
	r := &device.MotionRange{Axis: 0, Min: -32768, Max: 32767}
	tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{mapping.NewDirect(1, 0, r, 0, 0)}})

	tr.OnAxis(1, 0, -32768)
	tr.OnAxis(1, 0, 32767)
	tr.OnAxis(1, 0, -0.5)

	require.Len(t, sink.axes, 3)
	assert.InDelta(t, -1.0, sink.axes[0].value, 1e-6)
	assert.InDelta(t, 1.0, sink.axes[1].value, 1e-6)
	assert.InDelta(t, 0.0, sink.axes[2].value, 1e-6)
}

func TestButtonPairDeadZone(t *testing.T) {
	tests := []struct {
		name     string
		value    float32
		negative bool
		positive bool
	}{
		{"positive threshold", 0.25, false, true},
		{"negative threshold", -0.25, true, false},
		{"inside positive", 0.24, false, false},
		{"inside negative", -0.24, false, false},
		{"centre", 0, false, false},
		{"full positive", 1, false, true},
		{"full negative", -1, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No range: the sample is already normalized.
			tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{
				mapping.NewButtonPair(1, keycode.AxisHatX, nil, 0, 5, 7),
			}})

			tr.OnAxis(1, keycode.AxisHatX, tt.value)

			assert.Equal(t, []buttonCall{{0, 7, tt.negative}, {0, 5, tt.positive}}, sink.buttons)
		})
	}
}

func TestButtonPairDeadZoneWithRange(t *testing.T) {
	r := &device.MotionRange{Axis: keycode.AxisHatY, Min: -1, Max: 1}
	tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{mapping.NewButtonPair(1, keycode.AxisHatY, r, 0, 6, 4)}})

	tr.OnAxis(1, keycode.AxisHatY, 0.25)
	assert.Equal(t, []buttonCall{{0, 4, false}, {0, 6, true}}, sink.buttons)
}

func TestButtonPairIsLevelTriggered(t *testing.T) {
	tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{mapping.NewButtonPair(1, 15, nil, 0, 5, 7)}})

	for i := 0; i < 3; i++ {
		tr.OnAxis(1, 15, 1)
	}

	assert.Len(t, sink.buttons, 6, "identical states are re-sent on every sample")
}

func TestTriggerAsButton(t *testing.T) {
	// A [0,1] trigger at rest normalizes to -1; both polarities target L2.
	r := &device.MotionRange{Axis: keycode.AxisLTrigger, Min: 0, Max: 1}
	tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{mapping.NewButtonPair(1, keycode.AxisLTrigger, r, 0, 8, 8)}})

	tr.OnAxis(1, keycode.AxisLTrigger, 1)
	assert.Equal(t, []buttonCall{{0, 8, false}, {0, 8, true}}, sink.buttons, "last write leaves L2 pressed")
}

func TestHandleKeyFiltersRepeatsAndSources(t *testing.T) {
	tr, sink := newTranslator(&mapping.Table{Buttons: []mapping.ButtonMapping{{DeviceID: 1, DeviceButton: 96, Button: 14}}})

	assert.False(t, tr.HandleKey(event.Key{DeviceID: 1, Source: device.Gamepad, Code: 96, Down: true, Repeat: 1}))
	assert.False(t, tr.HandleKey(event.Key{DeviceID: 1, Source: device.Keyboard, Code: 96, Down: true}))
	assert.Empty(t, sink.buttons)

	assert.True(t, tr.HandleKey(event.Key{DeviceID: 1, Source: device.Gamepad | device.Keyboard, Code: 96, Down: true}))
	assert.True(t, tr.HandleKey(event.Key{DeviceID: 1, Source: device.DPad, Code: 96, Down: false}))
	assert.Equal(t, []buttonCall{{0, 14, true}, {0, 14, false}}, sink.buttons)
}

func TestHandleMotion(t *testing.T) {
	r := &device.MotionRange{Axis: 0, Min: -1, Max: 1}
	tr, sink := newTranslator(&mapping.Table{Axes: []mapping.AxisMapping{
		mapping.NewDirect(1, keycode.AxisX, r, 0, 0),
		mapping.NewDirect(1, keycode.AxisY, r, 0, 1),
		mapping.NewDirect(2, keycode.AxisX, r, 0, 0),
	}})

	assert.False(t, tr.HandleMotion(event.Motion{DeviceID: 1, Source: device.Touchscreen, Axes: map[int]float32{0: 1}}))
	assert.Empty(t, sink.axes)

	assert.True(t, tr.HandleMotion(event.Motion{DeviceID: 1, Source: device.Joystick, Axes: map[int]float32{keycode.AxisX: 1}}))
	require.Len(t, sink.axes, 1, "only axes present in the sample are forwarded")
	assert.Equal(t, 0, sink.axes[0].code)

	assert.True(t, tr.HandleMotion(event.Motion{DeviceID: 3, Source: device.Joystick, Axes: map[int]float32{keycode.AxisX: 1}}))
	assert.Len(t, sink.axes, 1, "unknown device produces no effect")
}

func TestStaleDeviceAfterRebuild(t *testing.T) {
	store := mapping.NewStore()
	sink := &recordingSink{}
	tr := New(store, sink)
	b := mapping.NewBuilder(profile.Builtin{})

	pad := device.Device{ID: 4, Sources: device.Gamepad}
	store.Swap(b.Build("AnalogController", []device.Device{pad}))
	assert.True(t, tr.OnKey(4, keycode.ButtonA, true))

	store.Swap(b.Build("AnalogController", nil))
	assert.False(t, tr.OnKey(4, keycode.ButtonA, false))
	assert.Len(t, sink.buttons, 1)
}
