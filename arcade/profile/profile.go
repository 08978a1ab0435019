// Package profile resolves logical button and axis names ("Cross", "LeftX")
// into the code space of a controller profile.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Type is one of the supported controller profiles.
type Type int

const (
	None Type = iota
	Digital
	Analog
	NeGcon
)

var ErrUnknownProfile = errors.New("unknown controller profile")

var typeNames = []string{
	None:    "none",
	Digital: "DigitalController",
	Analog:  "AnalogController",
	NeGcon:  "NeGcon",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType matches a profile name case-insensitively. The empty string is None.
func ParseType(name string) (Type, error) {
	if name == "" {
		return None, nil
	}
	for i, n := range typeNames {
		if strings.EqualFold(n, name) {
			return Type(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Resolver maps a logical name within a named profile to a code. The second
// result is false when the profile does not support that name.
type Resolver interface {
	ButtonCode(profile, button string) (int, bool)
	AxisCode(profile, axis string) (int, bool)
}

// Table is the code space of a single profile.
type Table struct {
	Buttons map[string]int
	Axes    map[string]int
}

func (t Table) button(name string) (int, bool) {
	code, ok := t.Buttons[name]
	return code, ok
}

func (t Table) axis(name string) (int, bool) {
	code, ok := t.Axes[name]
	return code, ok
}

// Tables is a Resolver over a fixed set of named tables.
type Tables map[string]Table

func (ts Tables) ButtonCode(profile, button string) (int, bool) {
	t, ok := ts[profile]
	if !ok {
		return -1, false
	}
	return t.button(button)
}

func (ts Tables) AxisCode(profile, axis string) (int, bool) {
	t, ok := ts[profile]
	if !ok {
		return -1, false
	}
	return t.axis(axis)
}

var digitalButtons = map[string]int{
	"Select":   0,
	"L3":       1,
	"R3":       2,
	"Start":    3,
	"Up":       4,
	"Right":    5,
	"Down":     6,
	"Left":     7,
	"L2":       8,
	"R2":       9,
	"L1":       10,
	"R1":       11,
	"Triangle": 12,
	"Circle":   13,
	"Cross":    14,
	"Square":   15,
}

var builtin = map[Type]Table{
	None: {},
	Digital: {
		Buttons: digitalButtons,
	},
	Analog: {
		Buttons: withButtons(digitalButtons, map[string]int{"Analog": 16}),
		Axes: map[string]int{
			"LeftX":  0,
			"LeftY":  1,
			"RightX": 2,
			"RightY": 3,
		},
	},
	NeGcon: {
		Buttons: map[string]int{
			"Up":    0,
			"Down":  1,
			"Left":  2,
			"Right": 3,
			"A":     4,
			"B":     5,
			"R":     6,
			"Start": 7,
		},
		Axes: map[string]int{
			"Steering": 0,
			"I":        1,
			"II":       2,
			"L":        3,
		},
	},
}

func withButtons(base, extra map[string]int) map[string]int {
	out := make(map[string]int, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Lookup returns the built-in table for t.
func Lookup(t Type) Table {
	return builtin[t]
}

// Builtin resolves profile names against the built-in profile types.
// Unknown profile names resolve nothing.
type Builtin struct{}

func (Builtin) ButtonCode(profile, button string) (int, bool) {
	t, err := ParseType(profile)
	if err != nil {
		return -1, false
	}
	return Lookup(t).button(button)
}

func (Builtin) AxisCode(profile, axis string) (int, bool) {
	t, err := ParseType(profile)
	if err != nil {
		return -1, false
	}
	return Lookup(t).axis(axis)
}
