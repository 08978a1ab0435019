package mapping

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
	"github.com/valerio/go-arcadehost/arcade/profile"
)

var standard = profile.Tables{
	"Standard": {
		Buttons: map[string]int{"Cross": 2},
		Axes:    map[string]int{"LeftX": 0},
	},
}

func TestBuildScenario(t *testing.T) {
	pad := device.Device{
		ID:           5,
		Sources:      device.Gamepad,
		MotionRanges: []device.MotionRange{{Axis: keycode.AxisX, Min: 0, Max: 255}},
	}

	table := NewBuilder(standard).Build("Standard", []device.Device{pad})

	require.Len(t, table.Buttons, 1)
	assert.Equal(t, ButtonMapping{DeviceID: 5, DeviceButton: 96, ControllerIndex: 0, Button: 2}, table.Buttons[0])

	require.Len(t, table.Axes, 1)
	ax := table.Axes[0]
	assert.Equal(t, 5, ax.DeviceID)
	assert.Equal(t, 0, ax.DeviceAxis)
	assert.Equal(t, 0, ax.ControllerIndex)
	assert.Equal(t, Direct, ax.Mode())
	assert.Equal(t, 0, ax.Axis)
	require.NotNil(t, ax.Range)
	assert.Equal(t, float32(0), ax.Range.Min)
	assert.Equal(t, float32(255), ax.Range.Max)
}

func TestBuildSkipsNonJoysticks(t *testing.T) {
	devices := []device.Device{
		{ID: 1, Sources: device.Keyboard},
		{ID: 2, Sources: device.Touchscreen, MotionRanges: []device.MotionRange{{Axis: keycode.AxisX, Min: 0, Max: 1}}},
		{ID: -1, Sources: device.Gamepad},
	}

	table := NewBuilder(profile.Builtin{}).Build("AnalogController", devices)
	assert.True(t, table.Empty())
}

func TestBuildAnalogGamepad(t *testing.T) {
	full := []device.MotionRange{
		{Axis: keycode.AxisX, Min: -1, Max: 1},
		{Axis: keycode.AxisY, Min: -1, Max: 1},
		{Axis: keycode.AxisZ, Min: -1, Max: 1},
		{Axis: keycode.AxisRZ, Min: -1, Max: 1},
		{Axis: keycode.AxisLTrigger, Min: 0, Max: 1},
		{Axis: keycode.AxisRTrigger, Min: 0, Max: 1},
		{Axis: keycode.AxisHatX, Min: -1, Max: 1},
		{Axis: keycode.AxisHatY, Min: -1, Max: 1},
	}
	pad := device.Device{ID: 9, Sources: device.Gamepad | device.Joystick, MotionRanges: full}

	table := NewBuilder(profile.Builtin{}).Build("AnalogController", []device.Device{pad})

	assert.Len(t, table.Buttons, len(buttonBindings), "every logical button resolves on an analog pad")

	byAxis := map[int]AxisMapping{}
	for _, m := range table.Axes {
		byAxis[m.DeviceAxis] = m
	}
	require.Len(t, byAxis, len(full))

	assert.Equal(t, Direct, byAxis[keycode.AxisZ].Mode())
	assert.Equal(t, 2, byAxis[keycode.AxisZ].Axis, "Z drives RightX")
	assert.Equal(t, 3, byAxis[keycode.AxisRZ].Axis, "RZ drives RightY")

	// The analog profile has no L2 axis, so the trigger falls back to a button.
	lt := byAxis[keycode.AxisLTrigger]
	assert.Equal(t, ButtonPair, lt.Mode())
	assert.Equal(t, 8, lt.NegativeButton)
	assert.Equal(t, 8, lt.PositiveButton)

	hatX := byAxis[keycode.AxisHatX]
	assert.Equal(t, ButtonPair, hatX.Mode())
	assert.Equal(t, 7, hatX.NegativeButton, "left")
	assert.Equal(t, 5, hatX.PositiveButton, "right")

	hatY := byAxis[keycode.AxisHatY]
	assert.Equal(t, 4, hatY.NegativeButton, "up")
	assert.Equal(t, 6, hatY.PositiveButton, "down")
}

func TestBuildTriggerAsAxis(t *testing.T) {
	r := profile.Tables{"Racer": {Axes: map[string]int{"L2": 7}, Buttons: map[string]int{"L2": 1}}}
	pad := device.Device{ID: 1, Sources: device.Joystick, MotionRanges: []device.MotionRange{{Axis: keycode.AxisLTrigger, Min: 0, Max: 1}}}

	table := NewBuilder(r).Build("Racer", []device.Device{pad})

	require.Len(t, table.Axes, 1)
	assert.Equal(t, Direct, table.Axes[0].Mode())
	assert.Equal(t, 7, table.Axes[0].Axis)
}

func TestBuildDegenerateAndMissingRanges(t *testing.T) {
	pad := device.Device{
		ID:      3,
		Sources: device.Gamepad,
		MotionRanges: []device.MotionRange{
			{Axis: keycode.AxisX, Min: 1, Max: 1},
			{Axis: keycode.AxisY, Min: 1, Max: -1},
		},
	}

	table := NewBuilder(profile.Builtin{}).Build("AnalogController", []device.Device{pad})

	assert.Empty(t, table.Axes)
	assert.NotEmpty(t, table.Buttons, "a device without usable axes still maps buttons")
	for _, m := range table.Axes {
		assert.Greater(t, m.Range.Max, m.Range.Min)
	}
}

func TestBuildHatNeedsBothPolarities(t *testing.T) {
	r := profile.Tables{"Half": {Buttons: map[string]int{"Left": 1}}}
	pad := device.Device{ID: 1, Sources: device.DPad, MotionRanges: []device.MotionRange{{Axis: keycode.AxisHatX, Min: -1, Max: 1}}}

	table := NewBuilder(r).Build("Half", []device.Device{pad})
	assert.Empty(t, table.Axes)
}

func TestBuildUnknownProfileMapsNothing(t *testing.T) {
	pad := device.Device{ID: 1, Sources: device.Gamepad, MotionRanges: []device.MotionRange{{Axis: keycode.AxisX, Min: -1, Max: 1}}}

	table := NewBuilder(profile.Builtin{}).Build("NoSuchController", []device.Device{pad})
	assert.True(t, table.Empty())
}

func TestBuildIsIdempotent(t *testing.T) {
	devices := []device.Device{
		{ID: 1, Sources: device.Gamepad, MotionRanges: []device.MotionRange{{Axis: keycode.AxisX, Min: -1, Max: 1}, {Axis: keycode.AxisHatY, Min: -1, Max: 1}}},
		{ID: 2, Sources: device.DPad},
	}
	b := NewBuilder(profile.Builtin{})

	first := b.Build("AnalogController", devices)
	second := b.Build("AnalogController", devices)

	assert.ElementsMatch(t, first.Buttons, second.Buttons)
	assert.ElementsMatch(t, first.Axes, second.Axes)
}

func TestNormalize(t *testing.T) {
	m := NewDirect(1, 0, &device.MotionRange{Axis: 0, Min: 0, Max: 255}, 0, 0)

	assert.InDelta(t, -1.0, m.Normalize(0), 1e-6)
	assert.InDelta(t, 1.0, m.Normalize(255), 1e-6)
	assert.InDelta(t, 0.0, m.Normalize(127.5), 1e-6)

	raw := NewDirect(1, 0, nil, 0, 0)
	assert.Equal(t, float32(0.42), raw.Normalize(0.42))
}

func TestStoreSwap(t *testing.T) {
	s := NewStore()
	assert.NotNil(t, s.Load())
	assert.True(t, s.Load().Empty())

	next := &Table{Buttons: []ButtonMapping{{DeviceID: 1}}}
	prev := s.Swap(next)
	assert.True(t, prev.Empty())
	assert.Same(t, next, s.Load())

	s.Swap(nil)
	assert.True(t, s.Load().Empty())
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore()
	full := &Table{Buttons: make([]ButtonMapping, 14), Axes: make([]AxisMapping, 4)}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				tb := s.Load()
				if !tb.Empty() {
					assert.Len(t, tb.Buttons, 14)
					assert.Len(t, tb.Axes, 4)
				}
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.Swap(full)
		s.Swap(&Table{})
	}
	wg.Wait()
}
