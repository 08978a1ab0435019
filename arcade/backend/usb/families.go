//go:build usb

package usb

import (
	"github.com/google/gousb"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
)

// family describes the axes a controller line reports, in host axis ids.
type family struct {
	Name   string
	Ranges []device.MotionRange
}

func (f family) device(id int) device.Device {
	return device.Device{
		ID:           id,
		Name:         f.Name,
		Sources:      device.Gamepad | device.DPad | device.Joystick,
		MotionRanges: append([]device.MotionRange(nil), f.Ranges...),
	}
}

type productID struct {
	vendor, product gousb.ID
}

var hat = []device.MotionRange{
	{Axis: keycode.AxisHatX, Min: -1, Max: 1},
	{Axis: keycode.AxisHatY, Min: -1, Max: 1},
}

func sticks(lo, hi float32) []device.MotionRange {
	return []device.MotionRange{
		{Axis: keycode.AxisX, Min: lo, Max: hi},
		{Axis: keycode.AxisY, Min: lo, Max: hi},
		{Axis: keycode.AxisZ, Min: lo, Max: hi},
		{Axis: keycode.AxisRZ, Min: lo, Max: hi},
	}
}

func triggers(hi float32) []device.MotionRange {
	return []device.MotionRange{
		{Axis: keycode.AxisLTrigger, Min: 0, Max: hi},
		{Axis: keycode.AxisRTrigger, Min: 0, Max: hi},
	}
}

func join(parts ...[]device.MotionRange) []device.MotionRange {
	var out []device.MotionRange
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var (
	xboxFamily = family{
		Name:   "Xbox controller",
		Ranges: join(sticks(-32768, 32767), triggers(255), hat),
	}
	playstationFamily = family{
		Name:   "PlayStation controller",
		Ranges: join(sticks(0, 255), triggers(255), hat),
	}
	switchProFamily = family{
		Name:   "Switch Pro controller",
		Ranges: join(sticks(-32768, 32767), hat),
	}
)

var families = map[productID]family{
	{0x045e, 0x028e}: xboxFamily,        // Xbox 360
	{0x045e, 0x02d1}: xboxFamily,        // Xbox One
	{0x045e, 0x02ea}: xboxFamily,        // Xbox One S
	{0x045e, 0x0b12}: xboxFamily,        // Xbox Series
	{0x054c, 0x05c4}: playstationFamily, // DualShock 4
	{0x054c, 0x09cc}: playstationFamily, // DualShock 4 v2
	{0x054c, 0x0ce6}: playstationFamily, // DualSense
	{0x057e, 0x2009}: switchProFamily,   // Switch Pro
	{0x057e, 0x2069}: switchProFamily,   // Switch 2 Pro
}

func lookupFamily(vendor, product gousb.ID) (family, bool) {
	f, ok := families[productID{vendor, product}]
	return f, ok
}
