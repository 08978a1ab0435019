// Package headless replays a scripted scenario as host events, for tests
// and batch runs without a terminal.
package headless

import (
	"log/slog"

	"github.com/valerio/go-arcadehost/arcade/backend"
	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// Backend implements the Backend interface by replaying a Scenario
type Backend struct {
	config   backend.Config
	scenario *Scenario
	registry *device.Registry
	declared map[int]device.Device
	step     int
	done     bool
}

func New(s *Scenario) *Backend {
	return &Backend{scenario: s}
}

func (h *Backend) Init(config backend.Config) error {
	h.config = config
	h.registry = device.NewRegistry()
	h.declared = make(map[int]device.Device, len(h.scenario.Devices))
	for _, d := range h.scenario.Devices {
		h.declared[d.ID] = d
		if h.scenario.attached[d.ID] {
			h.registry.Add(d)
		}
	}

	slog.Info("Running headless mode",
		"devices", len(h.scenario.Devices),
		"steps", len(h.scenario.Steps))
	return nil
}

// Update emits the next scripted step. Once the script is exhausted it
// requests a quit.
func (h *Backend) Update() ([]event.Event, error) {
	if h.step >= len(h.scenario.Steps) {
		if !h.done {
			h.done = true
			slog.Info("Headless execution completed", "steps", h.step)
		}
		return []event.Event{event.Action{Action: action.Quit}}, nil
	}

	ev := h.scenario.Steps[h.step]
	h.step++

	if dev, ok := ev.(event.Device); ok {
		h.applyTopology(dev)
	}
	slog.Debug("Scenario step", "step", h.step, "event", ev)
	return []event.Event{ev}, nil
}

// applyTopology keeps the registry in line with the hot-plug step it is
// about to report.
func (h *Backend) applyTopology(ev event.Device) {
	switch ev.Kind {
	case event.DeviceAdded, event.DeviceChanged:
		if d, ok := h.declared[ev.ID]; ok {
			h.registry.Add(d)
		}
	case event.DeviceRemoved:
		h.registry.Remove(ev.ID)
	}
}

// Devices returns the devices currently attached.
func (h *Backend) Devices() ([]device.Device, error) {
	if h.registry == nil {
		return nil, nil
	}
	return h.registry.Devices()
}

// Remaining is the number of steps not yet replayed.
func (h *Backend) Remaining() int {
	return len(h.scenario.Steps) - h.step
}

func (h *Backend) Cleanup() error {
	return nil
}

var _ backend.Backend = (*Backend)(nil)
