package hotplug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/mapping"
	"github.com/valerio/go-arcadehost/arcade/profile"
)

func TestEveryNotificationRebuilds(t *testing.T) {
	calls := 0
	m := NewMonitor(UpdaterFunc(func() error {
		calls++
		return nil
	}))

	m.DeviceAdded(1)
	m.DeviceAdded(1)
	m.DeviceChanged(1)
	m.DeviceRemoved(1)

	assert.Equal(t, 4, calls, "no debouncing")
	assert.Equal(t, 4, m.Rebuilds())
}

func TestRebuildErrorIsNotFatal(t *testing.T) {
	m := NewMonitor(UpdaterFunc(func() error { return errors.New("catalog offline") }))

	assert.NotPanics(t, func() { m.DeviceAdded(3) })
	assert.Equal(t, 1, m.Rebuilds())
}

func TestHotplugReplacesTable(t *testing.T) {
	reg := device.NewRegistry()
	store := mapping.NewStore()
	builder := mapping.NewBuilder(profile.Builtin{})
	m := NewMonitor(UpdaterFunc(func() error {
		devs, err := reg.Devices()
		if err != nil {
			return err
		}
		store.Swap(builder.Build("DigitalController", devs))
		return nil
	}))

	reg.Add(device.Device{ID: 8, Sources: device.Gamepad})
	m.Handle(event.Device{Kind: event.DeviceAdded, ID: 8})
	assert.Len(t, store.Load().Buttons, 14)

	reg.Remove(8)
	m.Handle(event.Device{Kind: event.DeviceRemoved, ID: 8})
	assert.True(t, store.Load().Empty())
}
