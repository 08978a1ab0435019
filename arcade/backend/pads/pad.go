//go:build linux

package pads

import (
	"sort"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// Kernel key values.
const (
	keyUp     = 0
	keyDown   = 1
	keyRepeat = 2
)

type press struct {
	since, last time.Time
	repeat      int
}

// pad turns one node's kernel events into host events.
type pad struct {
	node node
	dev  device.Device

	held    map[int]*press  // by host key code
	pending map[int]float32 // axis samples since the last report
}

func newPad(n node, dev device.Device) *pad {
	return &pad{node: n, dev: dev, held: make(map[int]*press), pending: make(map[int]float32)}
}

// handle converts one kernel event. Axis samples are batched until the
// kernel closes the report with SYN_REPORT.
func (p *pad) handle(ev *evdev.InputEvent, now time.Time) []event.Event {
	switch ev.Type {
	case evdev.EV_KEY:
		code, ok := keyCodes[ev.Code]
		if !ok {
			return nil
		}
		return p.key(code, ev.Value, now)
	case evdev.EV_ABS:
		if axis, ok := axisCodes[ev.Code]; ok {
			p.pending[axis] = float32(ev.Value)
		}
	case evdev.EV_SYN:
		if ev.Code == evdev.SYN_REPORT && len(p.pending) > 0 {
			m := event.Motion{DeviceID: p.dev.ID, Source: device.Joystick, Axes: p.pending}
			p.pending = make(map[int]float32)
			return []event.Event{m}
		}
	}
	return nil
}

func (p *pad) key(code int, value int32, now time.Time) []event.Event {
	k := event.Key{DeviceID: p.dev.ID, Source: device.Gamepad, Code: code}
	switch value {
	case keyUp:
		if pr, ok := p.held[code]; ok {
			k.Held = now.Sub(pr.since)
		}
		delete(p.held, code)
	case keyDown:
		p.held[code] = &press{since: now, last: now}
		k.Down = true
	case keyRepeat:
		pr, ok := p.held[code]
		if !ok {
			pr = &press{since: now}
			p.held[code] = pr
		}
		pr.repeat++
		pr.last = now
		k.Down, k.Repeat, k.Held = true, pr.repeat, now.Sub(pr.since)
	default:
		return nil
	}
	return []event.Event{k}
}

// repeats reports every button held for at least RepeatInterval since its
// last report, in key code order.
func (p *pad) repeats(now time.Time) []event.Event {
	codes := make([]int, 0, len(p.held))
	for code, pr := range p.held {
		if now.Sub(pr.last) >= RepeatInterval {
			codes = append(codes, code)
		}
	}
	sort.Ints(codes)

	evs := make([]event.Event, 0, len(codes))
	for _, code := range codes {
		evs = append(evs, p.key(code, keyRepeat, now)...)
	}
	return evs
}
