//go:build !linux

// Package pads reads physical game controllers through the Linux evdev
// interface. Other platforms get a reader that finds nothing.
package pads

import (
	"context"
	"errors"
	"time"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// ErrUnavailable is returned on platforms without evdev.
var ErrUnavailable = errors.New("gamepad support not available - evdev requires linux")

// Reader stub for platforms without evdev
type Reader struct{}

func New() *Reader {
	return &Reader{}
}

func (r *Reader) Devices() ([]device.Device, error) {
	return nil, nil
}

func (r *Reader) Rescan() {}

// Scan returns ErrUnavailable.
func (r *Reader) Scan() ([]event.Device, error) {
	return nil, ErrUnavailable
}

// Run returns a closed channel.
func (r *Reader) Run(ctx context.Context, pollInterval, scanInterval time.Duration) <-chan event.Event {
	out := make(chan event.Event)
	close(out)
	return out
}
