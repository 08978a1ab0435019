//go:build linux

package pads

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/valerio/go-arcadehost/arcade/input/keycode"
)

// keyCodes maps kernel gamepad buttons to host key codes by position, so
// BTN_WEST is the left face button whatever its label.
var keyCodes = map[evdev.EvCode]int{
	evdev.BTN_SOUTH:      keycode.ButtonA,
	evdev.BTN_EAST:       keycode.ButtonB,
	evdev.BTN_WEST:       keycode.ButtonX,
	evdev.BTN_NORTH:      keycode.ButtonY,
	evdev.BTN_TL:         keycode.ButtonL1,
	evdev.BTN_TR:         keycode.ButtonR1,
	evdev.BTN_TL2:        keycode.ButtonL2,
	evdev.BTN_TR2:        keycode.ButtonR2,
	evdev.BTN_SELECT:     keycode.ButtonSelect,
	evdev.BTN_START:      keycode.ButtonStart,
	evdev.BTN_DPAD_UP:    keycode.DPadUp,
	evdev.BTN_DPAD_DOWN:  keycode.DPadDown,
	evdev.BTN_DPAD_LEFT:  keycode.DPadLeft,
	evdev.BTN_DPAD_RIGHT: keycode.DPadRight,
}

// axisCodes maps kernel absolute axes to host axis ids. Right sticks report
// on ABS_RX/ABS_RY and analog triggers on ABS_Z/ABS_RZ under xpad and
// hid-playstation.
var axisCodes = map[evdev.EvCode]int{
	evdev.ABS_X:     keycode.AxisX,
	evdev.ABS_Y:     keycode.AxisY,
	evdev.ABS_RX:    keycode.AxisRX,
	evdev.ABS_RY:    keycode.AxisRY,
	evdev.ABS_Z:     keycode.AxisLTrigger,
	evdev.ABS_RZ:    keycode.AxisRTrigger,
	evdev.ABS_BRAKE: keycode.AxisLTrigger,
	evdev.ABS_GAS:   keycode.AxisRTrigger,
	evdev.ABS_HAT0X: keycode.AxisHatX,
	evdev.ABS_HAT0Y: keycode.AxisHatY,
}

func isDPadKey(code evdev.EvCode) bool {
	switch code {
	case evdev.BTN_DPAD_UP, evdev.BTN_DPAD_DOWN, evdev.BTN_DPAD_LEFT, evdev.BTN_DPAD_RIGHT:
		return true
	}
	return false
}
