package session

import (
	"strings"

	"github.com/valerio/go-arcadehost/arcade/runtime"
)

// State is the lifecycle state of an emulation session.
type State int

const (
	Idle State = iota
	AwaitingSurface
	Running
	Paused
	SurfaceLost
	Stopping
	Stopped
)

var stateNames = [...]string{
	Idle:            "idle",
	AwaitingSurface: "awaiting-surface",
	Running:         "running",
	Paused:          "paused",
	SurfaceLost:     "surface-lost",
	Stopping:        "stopping",
	Stopped:         "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// live reports whether the runtime holds a booted session.
func (s State) live() bool {
	return s == Running || s == Paused || s == SurfaceLost
}

// Orientation is the requested screen orientation of the emulation view.
type Orientation int

const (
	OrientationUnspecified Orientation = iota
	OrientationPortrait
	OrientationLandscape
	OrientationSensor
)

func (o Orientation) String() string {
	switch o {
	case OrientationPortrait:
		return "portrait"
	case OrientationLandscape:
		return "landscape"
	case OrientationSensor:
		return "sensor"
	default:
		return "unspecified"
	}
}

// ParseOrientation maps a setting value to an Orientation. Unknown values
// are unspecified.
func ParseOrientation(s string) Orientation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait":
		return OrientationPortrait
	case "landscape":
		return OrientationLandscape
	case "sensor":
		return OrientationSensor
	default:
		return OrientationUnspecified
	}
}

// alignment keeps a portrait display at the top so the on-screen controller
// fits below it.
func (o Orientation) alignment() runtime.Alignment {
	if o == OrientationPortrait {
		return runtime.AlignTopOrLeft
	}
	return runtime.AlignCenter
}
