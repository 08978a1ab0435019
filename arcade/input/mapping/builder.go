package mapping

import (
	"log/slog"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
	"github.com/valerio/go-arcadehost/arcade/profile"
)

// Only a single logical controller slot is driven.
const controllerIndex = 0

type buttonBinding struct {
	key  keycode.Key
	name string
}

var buttonBindings = []buttonBinding{
	{keycode.DPadUp, "Up"},
	{keycode.DPadRight, "Right"},
	{keycode.DPadDown, "Down"},
	{keycode.DPadLeft, "Left"},
	{keycode.ButtonL1, "L1"},
	{keycode.ButtonL2, "L2"},
	{keycode.ButtonSelect, "Select"},
	{keycode.ButtonStart, "Start"},
	{keycode.ButtonY, "Triangle"},
	{keycode.ButtonB, "Circle"},
	{keycode.ButtonA, "Cross"},
	{keycode.ButtonX, "Square"},
	{keycode.ButtonR1, "R1"},
	{keycode.ButtonR2, "R2"},
}

// axisBinding names the logical axis and/or the negative/positive button pair
// an axis drives. Empty names are not attempted.
type axisBinding struct {
	axis     keycode.Axis
	name     string
	negative string
	positive string
}

// Sticks may be reported as RX/RY or Z/RZ, so both are tried. Triggers try an
// analog axis first and fall back to a button.
var axisBindings = []axisBinding{
	{axis: keycode.AxisX, name: "LeftX"},
	{axis: keycode.AxisY, name: "LeftY"},
	{axis: keycode.AxisRX, name: "RightX"},
	{axis: keycode.AxisRY, name: "RightY"},
	{axis: keycode.AxisZ, name: "RightX"},
	{axis: keycode.AxisRZ, name: "RightY"},
	{axis: keycode.AxisLTrigger, name: "L2", negative: "L2", positive: "L2"},
	{axis: keycode.AxisRTrigger, name: "R2", negative: "R2", positive: "R2"},
	{axis: keycode.AxisHatX, negative: "Left", positive: "Right"},
	{axis: keycode.AxisHatY, negative: "Up", positive: "Down"},
}

// Builder resolves the fixed binding lists against a controller profile.
type Builder struct {
	resolver profile.Resolver
}

func NewBuilder(r profile.Resolver) *Builder {
	return &Builder{resolver: r}
}

// Build returns a fresh table for the given profile and device snapshot.
// Devices that are not joysticks contribute nothing.
func (b *Builder) Build(profileName string, devices []device.Device) *Table {
	t := &Table{}
	for _, d := range devices {
		if !device.IsJoystick(d) {
			continue
		}
		b.addButtons(t, profileName, d)
		b.addAxes(t, profileName, d)
	}
	return t
}

func (b *Builder) addButtons(t *Table, profileName string, d device.Device) {
	for _, bb := range buttonBindings {
		code, ok := b.resolver.ButtonCode(profileName, bb.name)
		if !ok || code < 0 {
			continue
		}
		t.Buttons = append(t.Buttons, ButtonMapping{
			DeviceID:        d.ID,
			DeviceButton:    bb.key,
			ControllerIndex: controllerIndex,
			Button:          code,
		})
	}
}

func (b *Builder) addAxes(t *Table, profileName string, d device.Device) {
	for _, ab := range axisBindings {
		r, ok := d.Range(ab.axis)
		if !ok {
			continue
		}
		if !r.Valid() {
			slog.Debug("Skipping degenerate motion range", "device", d.ID, "axis", ab.axis, "min", r.Min, "max", r.Max)
			continue
		}

		if ab.name != "" {
			if code, ok := b.resolver.AxisCode(profileName, ab.name); ok && code >= 0 {
				slog.Debug("Map axis", "device", d.ID, "axis", ab.axis, "code", code, "name", ab.name)
				t.Axes = append(t.Axes, NewDirect(d.ID, ab.axis, &r, controllerIndex, code))
				continue
			}
		}

		if ab.negative == "" || ab.positive == "" {
			continue
		}
		neg, nok := b.resolver.ButtonCode(profileName, ab.negative)
		pos, pok := b.resolver.ButtonCode(profileName, ab.positive)
		if !nok || !pok || neg < 0 || pos < 0 {
			continue
		}
		slog.Debug("Map axis to buttons", "device", d.ID, "axis", ab.axis, "negative", ab.negative, "positive", ab.positive)
		t.Axes = append(t.Axes, NewButtonPair(d.ID, ab.axis, &r, controllerIndex, pos, neg))
	}
}
