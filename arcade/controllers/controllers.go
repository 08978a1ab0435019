// Package controllers rebuilds controller mappings from the current device
// set and decides whether the on-screen controller is shown.
package controllers

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/valerio/go-arcadehost/arcade/config"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/mapping"
)

// Result describes the outcome of an update.
type Result struct {
	HasAnyControllers bool
	ShowTouchscreen   bool
	Buttons           int
	Axes              int
}

// Manager owns the published mapping table.
type Manager struct {
	catalog  device.Catalog
	builder  *mapping.Builder
	store    *mapping.Store
	settings config.Controller
	last     Result

	// OnUpdate, if set, is called after every published table.
	OnUpdate func(Result)
}

func New(catalog device.Catalog, builder *mapping.Builder, store *mapping.Store) *Manager {
	return &Manager{catalog: catalog, builder: builder, store: store}
}

// Update snapshots the catalog and publishes a table for the configured
// profile. When the catalog fails but still lists some devices, the table is
// built from those and the error is returned with the new result. A catalog
// that fails without listing anything leaves the previous table in place.
func (m *Manager) Update(settings config.Controller) (Result, error) {
	m.settings = settings

	devices, err := m.catalog.Devices()
	if err != nil {
		err = fmt.Errorf("listing devices: %w", err)
		if len(devices) == 0 {
			return m.last, err
		}
	}

	t := m.builder.Build(settings.Type, devices)
	m.store.Swap(t)

	hasAny := !t.Empty()
	r := Result{
		HasAnyControllers: hasAny,
		ShowTouchscreen:   TouchscreenVisible(settings, hasAny),
		Buttons:           len(t.Buttons),
		Axes:              len(t.Axes),
	}
	m.last = r
	slog.Info("Controllers updated",
		"profile", settings.Type,
		"devices", len(devices),
		"buttons", r.Buttons,
		"axes", r.Axes,
		"touchscreen", r.ShowTouchscreen)

	if m.OnUpdate != nil {
		m.OnUpdate(r)
	}
	return r, err
}

// Rebuild repeats the last update with the same settings.
func (m *Manager) Rebuild() error {
	_, err := m.Update(m.settings)
	return err
}

// Last returns the result of the most recently published table.
func (m *Manager) Last() Result { return m.last }

// TouchscreenVisible is the on-screen controller policy: hidden for the
// "none" profile or view, or when a physical controller is mapped and
// auto-hide is on.
func TouchscreenVisible(s config.Controller, hasAnyControllers bool) bool {
	switch {
	case isNone(s.Type), isNone(s.TouchscreenView):
		return false
	case hasAnyControllers && s.AutoHideTouchscreen:
		return false
	default:
		return true
	}
}

func isNone(v string) bool {
	return v == "" || strings.EqualFold(v, "none")
}
