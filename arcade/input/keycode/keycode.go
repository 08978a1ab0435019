// Package keycode holds the physical key and axis codes reported by host
// input devices. Values follow the host input subsystem's numbering so raw
// events can be matched without translation.
package keycode

// Key is a physical key code.
type Key = int

const (
	DPadUp       Key = 19
	DPadDown     Key = 20
	DPadLeft     Key = 21
	DPadRight    Key = 22
	Enter        Key = 66
	ButtonA      Key = 96
	ButtonB      Key = 97
	ButtonX      Key = 99
	ButtonY      Key = 100
	ButtonL1     Key = 102
	ButtonR1     Key = 103
	ButtonL2     Key = 104
	ButtonR2     Key = 105
	ButtonStart  Key = 108
	ButtonSelect Key = 109
)

// Axis is a physical motion axis id.
type Axis = int

const (
	AxisX        Axis = 0
	AxisY        Axis = 1
	AxisZ        Axis = 11
	AxisRX       Axis = 12
	AxisRY       Axis = 13
	AxisRZ       Axis = 14
	AxisHatX     Axis = 15
	AxisHatY     Axis = 16
	AxisLTrigger Axis = 17
	AxisRTrigger Axis = 18
)

var keyNames = map[Key]string{
	DPadUp:       "DPAD_UP",
	DPadDown:     "DPAD_DOWN",
	DPadLeft:     "DPAD_LEFT",
	DPadRight:    "DPAD_RIGHT",
	Enter:        "ENTER",
	ButtonA:      "BUTTON_A",
	ButtonB:      "BUTTON_B",
	ButtonX:      "BUTTON_X",
	ButtonY:      "BUTTON_Y",
	ButtonL1:     "BUTTON_L1",
	ButtonR1:     "BUTTON_R1",
	ButtonL2:     "BUTTON_L2",
	ButtonR2:     "BUTTON_R2",
	ButtonStart:  "BUTTON_START",
	ButtonSelect: "BUTTON_SELECT",
}

// KeyName returns a readable name for logging, or "" for unknown codes.
func KeyName(k Key) string {
	return keyNames[k]
}
