// Package device models the host's input devices and decides which of them
// qualify as game controllers.
package device

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Source is the capability bitmask a host reports for a device or event.
type Source uint32

const (
	ClassButton   Source = 0x00000001
	ClassPointer  Source = 0x00000002
	ClassJoystick Source = 0x00000010

	Keyboard    Source = 0x00000100 | ClassButton
	DPad        Source = 0x00000200 | ClassButton
	Gamepad     Source = 0x00000400 | ClassButton
	Touchscreen Source = 0x00001000 | ClassPointer
	Joystick    Source = 0x01000000 | ClassJoystick
)

var ErrUnknownSource = errors.New("unknown device source")

var sourceNames = map[string]Source{
	"keyboard":    Keyboard,
	"dpad":        DPad,
	"gamepad":     Gamepad,
	"touchscreen": Touchscreen,
	"joystick":    Joystick,
}

// ParseSource converts a source name ("gamepad", "joystick", ...) to its bitmask.
func ParseSource(name string) (Source, error) {
	s, ok := sourceNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	return s, nil
}

// ParseSources ORs together a list of source names.
func ParseSources(names []string) (Source, error) {
	var s Source
	for _, n := range names {
		v, err := ParseSource(n)
		if err != nil {
			return 0, err
		}
		s |= v
	}
	return s, nil
}

// Has reports whether every bit of other is set in s.
func (s Source) Has(other Source) bool {
	return s&other == other
}

func (s Source) String() string {
	var parts []string
	for name, v := range sourceNames {
		if s.Has(v) {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("0x%x", uint32(s))
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

// MotionRange describes one analog axis of a device.
type MotionRange struct {
	Axis int
	Min  float32
	Max  float32
}

// Span is Max-Min.
func (r MotionRange) Span() float32 {
	return r.Max - r.Min
}

// Valid is false for degenerate ranges.
func (r MotionRange) Valid() bool {
	return r.Max > r.Min
}

// Device is a read-only view of a host input device.
type Device struct {
	ID           int
	Name         string
	Sources      Source
	MotionRanges []MotionRange
}

// Range returns the motion range reported for axis, if any.
func (d Device) Range(axis int) (MotionRange, bool) {
	for _, r := range d.MotionRanges {
		if r.Axis == axis {
			return r, true
		}
	}
	return MotionRange{}, false
}

// IsJoystick reports whether d is a joystick, gamepad or d-pad device.
// Negative ids are the host's "no device" sentinel and never qualify.
func IsJoystick(d Device) bool {
	if d.ID < 0 {
		return false
	}
	if d.Sources&ClassJoystick != 0 {
		return true
	}
	return d.Sources.Has(Gamepad) || d.Sources.Has(DPad)
}

// Catalog enumerates the devices currently known to the host.
type Catalog interface {
	Devices() ([]Device, error)
}

// Registry is an in-memory Catalog. Backends add and remove devices as the
// host reports them.
type Registry struct {
	mu      sync.RWMutex
	devices map[int]Device
}

func NewRegistry(devices ...Device) *Registry {
	r := &Registry{devices: make(map[int]Device)}
	for _, d := range devices {
		r.devices[d.ID] = d
	}
	return r
}

// Add inserts or replaces the device with d.ID.
func (r *Registry) Add(d Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
}

// Remove deletes the device and reports whether it was present.
func (r *Registry) Remove(id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.devices[id]
	delete(r.devices, id)
	return ok
}

func (r *Registry) Get(id int) (Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[id]
	return d, ok
}

// Devices returns the registered devices ordered by id.
func (r *Registry) Devices() ([]Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Multi joins several catalogs. A failing catalog does not hide the devices
// of the others; its error is returned alongside the partial snapshot.
type Multi []Catalog

func (m Multi) Devices() ([]Device, error) {
	var (
		out  []Device
		errs []error
	)
	for _, c := range m {
		devs, err := c.Devices()
		if err != nil {
			errs = append(errs, err)
		}
		out = append(out, devs...)
	}
	return out, errors.Join(errs...)
}
