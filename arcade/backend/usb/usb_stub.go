//go:build !usb

package usb

import (
	"context"
	"errors"
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// ErrUnavailable is returned by builds without libusb.
var ErrUnavailable = errors.New("USB support not available - build with -tags usb to enable")

// Catalog stub for when libusb is not available
type Catalog struct{}

func NewCatalog() *Catalog {
	return &Catalog{}
}

// Devices returns ErrUnavailable.
func (c *Catalog) Devices() ([]device.Device, error) {
	return nil, ErrUnavailable
}

// Watch returns a closed channel.
func (c *Catalog) Watch(ctx context.Context, interval time.Duration) <-chan event.Device {
	out := make(chan event.Device)
	close(out)
	return out
}
