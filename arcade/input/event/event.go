package event

import (
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
)

// Event is one notification from the host: input, device topology, surface
// lifecycle or a host action.
type Event interface {
	event()
}

// Key is a raw key transition from a device.
type Key struct {
	DeviceID int
	Source   device.Source
	Code     int
	Down     bool
	Repeat   int           // host key-repeat count, 0 for the initial transition
	Held     time.Duration // time since the key went down
}

// Motion is one analog sample of a device, keyed by axis id.
type Motion struct {
	DeviceID int
	Source   device.Source
	Axes     map[int]float32
}

// DeviceKind is the topology change a Device event reports.
type DeviceKind int

const (
	DeviceAdded DeviceKind = iota
	DeviceRemoved
	DeviceChanged
)

func (k DeviceKind) String() string {
	switch k {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	case DeviceChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// ParseDeviceKind accepts "added", "removed" or "changed".
func ParseDeviceKind(s string) (DeviceKind, bool) {
	for _, k := range []DeviceKind{DeviceAdded, DeviceRemoved, DeviceChanged} {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Device reports a hot-plug notification.
type Device struct {
	Kind DeviceKind
	ID   int
}

// Surface reports that a rendering surface is available or has changed size.
type Surface struct {
	Handle any
	Format int
	Width  int
	Height int
}

// SurfaceDestroyed reports that the current surface is gone.
type SurfaceDestroyed struct{}

// Action carries a host request such as opening the menu or quitting.
type Action struct {
	Action action.Action
}

func (Key) event()              {}
func (Motion) event()           {}
func (Device) event()           {}
func (Surface) event()          {}
func (SurfaceDestroyed) event() {}
func (Action) event()           {}
