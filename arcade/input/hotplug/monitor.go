// Package hotplug rebuilds the controller mapping whenever the host reports a
// device topology change.
package hotplug

import (
	"log/slog"

	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// Updater rebuilds the mapping table from the current device snapshot.
type Updater interface {
	Rebuild() error
}

// UpdaterFunc adapts a function to Updater.
type UpdaterFunc func() error

func (f UpdaterFunc) Rebuild() error { return f() }

// Monitor triggers one rebuild per notification. Rebuilds are cheap and
// idempotent so notifications are not coalesced.
type Monitor struct {
	updater  Updater
	rebuilds int
}

func NewMonitor(u Updater) *Monitor {
	return &Monitor{updater: u}
}

func (m *Monitor) DeviceAdded(id int) {
	slog.Info("Input device added", "id", id)
	m.rebuild()
}

func (m *Monitor) DeviceRemoved(id int) {
	slog.Info("Input device removed", "id", id)
	m.rebuild()
}

func (m *Monitor) DeviceChanged(id int) {
	slog.Info("Input device changed", "id", id)
	m.rebuild()
}

// Handle dispatches a device event to the matching notification.
func (m *Monitor) Handle(ev event.Device) {
	switch ev.Kind {
	case event.DeviceAdded:
		m.DeviceAdded(ev.ID)
	case event.DeviceRemoved:
		m.DeviceRemoved(ev.ID)
	case event.DeviceChanged:
		m.DeviceChanged(ev.ID)
	default:
		slog.Warn("Unknown device notification", "kind", ev.Kind, "id", ev.ID)
	}
}

// Rebuilds returns the number of rebuilds triggered so far.
func (m *Monitor) Rebuilds() int {
	return m.rebuilds
}

func (m *Monitor) rebuild() {
	m.rebuilds++
	if err := m.updater.Rebuild(); err != nil {
		slog.Warn("Failed to rebuild controller mapping", "error", err)
	}
}
