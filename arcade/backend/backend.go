package backend

import (
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// Backend is a host platform: it owns the input devices and the rendering
// surface and reports what happens to them as events.
// Backends are responsible for:
// - Enumerating their input devices (the device.Catalog half)
// - Translating platform input into key, motion and action events
// - Reporting surface availability, resizes and destruction
type Backend interface {
	device.Catalog

	// Init configures the backend. This is a required step before calling
	// Update.
	Init(config Config) error

	// Update polls the platform and returns the events that happened since
	// the previous call, in order. It must not block for long.
	Update() ([]event.Event, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// Config holds configuration for backends
type Config struct {
	Title string
	Debug bool // Backends may ignore unsupported features

	// Status, if set, returns a one-line session summary that display
	// backends render.
	Status func() string
}
