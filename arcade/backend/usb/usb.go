//go:build usb

// Package usb lists USB game controllers as input devices.
//
// Devices are only enumerated from their descriptors; they are never
// opened or claimed, so the platform driver keeps delivering their input.
package usb

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/gousb"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// IDBase offsets USB device ids away from the host's own device ids.
const IDBase = 0x10000

// XInput interface class triple.
const (
	xinputSubClass gousb.Class    = 0x5d
	xinputProtocol gousb.Protocol = 0x01
)

// Enumerator lists USB device descriptors.
type Enumerator interface {
	Descriptors() ([]*gousb.DeviceDesc, error)
}

// libusb enumerates through a short-lived libusb context.
type libusb struct{}

func (libusb) Descriptors() ([]*gousb.DeviceDesc, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()

	var descs []*gousb.DeviceDesc
	// Opener returns false so no device is opened.
	_, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		descs = append(descs, desc)
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating usb devices: %w", err)
	}
	return descs, nil
}

// Catalog is a device.Catalog over the USB bus.
type Catalog struct {
	enum Enumerator
}

// NewCatalog returns a catalog backed by libusb.
func NewCatalog() *Catalog {
	return &Catalog{enum: libusb{}}
}

// NewCatalogWith returns a catalog over a custom enumerator.
func NewCatalogWith(e Enumerator) *Catalog {
	return &Catalog{enum: e}
}

// Devices returns the game controllers currently on the bus.
func (c *Catalog) Devices() ([]device.Device, error) {
	descs, err := c.enum.Descriptors()
	if err != nil {
		return nil, err
	}

	var out []device.Device
	for _, desc := range descs {
		if d, ok := Classify(desc); ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Classify turns a descriptor into a controller device. Known families are
// matched by vendor and product; other devices qualify only with an XInput
// interface.
func Classify(desc *gousb.DeviceDesc) (device.Device, bool) {
	id := IDBase | desc.Bus<<8 | desc.Address

	if f, ok := lookupFamily(desc.Vendor, desc.Product); ok {
		return f.device(id), true
	}
	if hasXInput(desc) {
		return xboxFamily.device(id), true
	}
	return device.Device{}, false
}

func hasXInput(desc *gousb.DeviceDesc) bool {
	for _, cfg := range desc.Configs {
		for _, iface := range cfg.Interfaces {
			for _, alt := range iface.AltSettings {
				if alt.Class == gousb.ClassVendorSpec && alt.SubClass == xinputSubClass && alt.Protocol == xinputProtocol {
					return true
				}
			}
		}
	}
	return false
}

// Watch polls the bus every interval and reports controllers appearing and
// disappearing. The channel is closed when ctx is done.
func (c *Catalog) Watch(ctx context.Context, interval time.Duration) <-chan event.Device {
	out := make(chan event.Device)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		known := make(map[int]bool)
		first := true
		for {
			devices, err := c.Devices()
			if err != nil {
				slog.Warn("USB poll failed", "error", err)
			} else {
				current := make(map[int]bool, len(devices))
				for _, d := range devices {
					current[d.ID] = true
				}
				if !first {
					for _, ev := range diff(known, current) {
						select {
						case out <- ev:
						case <-ctx.Done():
							return
						}
					}
				}
				known, first = current, false
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out
}

// diff lists removals then additions, each in id order.
func diff(before, after map[int]bool) []event.Device {
	var removed, added []int
	for id := range before {
		if !after[id] {
			removed = append(removed, id)
		}
	}
	for id := range after {
		if !before[id] {
			added = append(added, id)
		}
	}
	sort.Ints(removed)
	sort.Ints(added)

	var evs []event.Device
	for _, id := range removed {
		evs = append(evs, event.Device{Kind: event.DeviceRemoved, ID: id})
	}
	for _, id := range added {
		evs = append(evs, event.Device{Kind: event.DeviceAdded, ID: id})
	}
	return evs
}
