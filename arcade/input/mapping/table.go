// Package mapping builds and publishes the table that binds physical device
// codes to logical controller signals.
package mapping

import (
	"sync/atomic"

	"github.com/valerio/go-arcadehost/arcade/input/device"
)

// Unmapped marks an unused logical code in an AxisMapping.
const Unmapped = -1

// ButtonMapping binds one physical key of a device to a logical button.
type ButtonMapping struct {
	DeviceID        int
	DeviceButton    int
	ControllerIndex int
	Button          int
}

// Mode tells how an AxisMapping forwards its samples.
type Mode int

const (
	// Direct forwards the normalized value to a logical axis.
	Direct Mode = iota
	// ButtonPair synthesizes two logical buttons from one axis.
	ButtonPair
)

func (m Mode) String() string {
	if m == ButtonPair {
		return "button-pair"
	}
	return "direct"
}

// AxisMapping binds one physical axis of a device either to a logical axis
// or to a negative/positive pair of logical buttons, never both.
type AxisMapping struct {
	DeviceID        int
	DeviceAxis      int
	Range           *device.MotionRange
	ControllerIndex int
	Axis            int
	PositiveButton  int
	NegativeButton  int
}

// NewDirect returns an analog-to-analog mapping.
func NewDirect(deviceID, deviceAxis int, r *device.MotionRange, index, axis int) AxisMapping {
	return AxisMapping{
		DeviceID:        deviceID,
		DeviceAxis:      deviceAxis,
		Range:           r,
		ControllerIndex: index,
		Axis:            axis,
		PositiveButton:  Unmapped,
		NegativeButton:  Unmapped,
	}
}

// NewButtonPair returns an analog-to-button-pair mapping.
func NewButtonPair(deviceID, deviceAxis int, r *device.MotionRange, index, positive, negative int) AxisMapping {
	return AxisMapping{
		DeviceID:        deviceID,
		DeviceAxis:      deviceAxis,
		Range:           r,
		ControllerIndex: index,
		Axis:            Unmapped,
		PositiveButton:  positive,
		NegativeButton:  negative,
	}
}

func (m AxisMapping) Mode() Mode {
	if m.Axis >= 0 {
		return Direct
	}
	return ButtonPair
}

// Normalize maps a raw sample into [-1, 1] using the mapping's range. Without
// a range the device already reports normalized units.
func (m AxisMapping) Normalize(raw float32) float32 {
	if m.Range == nil || !m.Range.Valid() {
		return raw
	}
	return ((raw-m.Range.Min)/m.Range.Span())*2 - 1
}

// Table is an immutable snapshot of all mappings.
type Table struct {
	Buttons []ButtonMapping
	Axes    []AxisMapping
}

// Empty reports whether the table holds no mappings at all.
func (t *Table) Empty() bool {
	return len(t.Buttons) == 0 && len(t.Axes) == 0
}

// Store publishes tables to readers. A table is never modified after Swap.
type Store struct {
	table atomic.Pointer[Table]
}

var emptyTable = &Table{}

func NewStore() *Store {
	return &Store{}
}

// Load returns the current table, or an empty one before the first Swap.
func (s *Store) Load() *Table {
	if t := s.table.Load(); t != nil {
		return t
	}
	return emptyTable
}

// Swap replaces the current table and returns the previous one.
func (s *Store) Swap(t *Table) *Table {
	if t == nil {
		t = &Table{}
	}
	prev := s.table.Swap(t)
	if prev == nil {
		prev = emptyTable
	}
	return prev
}
