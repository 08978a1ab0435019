//go:build linux

// Package pads reads physical game controllers through the Linux evdev
// interface and reports them as host devices and input events.
//
// Nodes under /dev/input are polled without blocking. Users need read
// access to them, usually through the input group.
package pads

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

const (
	// IDBase offsets pad ids away from other device ids: /dev/input/eventN
	// is device IDBase+N.
	IDBase = 0x20000

	// DefaultDir is where the kernel exposes event nodes.
	DefaultDir = "/dev/input"

	// RepeatInterval is how often a held button is reported again.
	RepeatInterval = 100 * time.Millisecond

	// maxReads bounds the events drained from one node per poll.
	maxReads = 64
)

// node is the part of an evdev input device the reader uses.
type node interface {
	Name() (string, error)
	CapableTypes() []evdev.EvType
	CapableEvents(t evdev.EvType) []evdev.EvCode
	AbsInfos() (map[evdev.EvCode]evdev.AbsInfo, error)
	NonBlock() error
	ReadOne() (*evdev.InputEvent, error)
	Close() error
}

func openNode(path string) (node, error) {
	d, err := evdev.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Reader tracks the game controllers under a directory of event nodes. It
// is a device.Catalog; Run delivers their input.
type Reader struct {
	dir  string
	open func(path string) (node, error)
	now  func() time.Time

	mu   sync.Mutex
	pads map[string]*pad // by node path

	rescan chan struct{}
}

// New returns a reader over DefaultDir.
func New() *Reader {
	return newReader(DefaultDir, openNode)
}

func newReader(dir string, open func(string) (node, error)) *Reader {
	return &Reader{
		dir:    dir,
		open:   open,
		now:    time.Now,
		pads:   make(map[string]*pad),
		rescan: make(chan struct{}, 1),
	}
}

// Devices returns the open pads ordered by id.
func (r *Reader) Devices() ([]device.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]device.Device, 0, len(r.pads))
	for _, p := range r.pads {
		out = append(out, p.dev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Rescan asks a running reader to scan for pads before its next poll. It
// never blocks.
func (r *Reader) Rescan() {
	select {
	case r.rescan <- struct{}{}:
	default:
	}
}

// Scan closes pads whose node is gone and opens new ones. It returns the
// removals then the additions.
func (r *Reader) Scan() ([]event.Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evs []event.Device
	for _, path := range r.paths() {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		p := r.pads[path]
		slog.Info("Gamepad disconnected", "id", p.dev.ID, "name", p.dev.Name)
		if err := p.node.Close(); err != nil {
			slog.Debug("Closing gamepad failed", "path", path, "error", err)
		}
		delete(r.pads, path)
		evs = append(evs, event.Device{Kind: event.DeviceRemoved, ID: p.dev.ID})
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return evs, fmt.Errorf("reading %s: %w", r.dir, err)
	}
	for _, entry := range entries {
		num, ok := nodeNumber(entry.Name())
		if !ok {
			continue
		}
		path := filepath.Join(r.dir, entry.Name())
		if _, known := r.pads[path]; known {
			continue
		}
		p, ok := r.openPad(path, IDBase+num)
		if !ok {
			continue
		}
		r.pads[path] = p
		slog.Info("Gamepad connected", "id", p.dev.ID, "name", p.dev.Name, "path", path)
		evs = append(evs, event.Device{Kind: event.DeviceAdded, ID: p.dev.ID})
	}
	return evs, nil
}

func (r *Reader) openPad(path string, id int) (*pad, bool) {
	n, err := r.open(path)
	if err != nil {
		// Typically a permission problem on a node that is not ours.
		slog.Debug("Skipping input node", "path", path, "error", err)
		return nil, false
	}
	if !isGamepad(n.CapableTypes(), n.CapableEvents(evdev.EV_KEY)) {
		n.Close()
		return nil, false
	}
	if err := n.NonBlock(); err != nil {
		slog.Warn("Gamepad cannot be polled", "path", path, "error", err)
		n.Close()
		return nil, false
	}

	name, err := n.Name()
	if err != nil {
		name = "Unknown"
	}
	infos, err := n.AbsInfos()
	if err != nil {
		slog.Warn("Gamepad axis ranges unavailable", "path", path, "error", err)
	}
	return newPad(n, describe(id, name, n.CapableEvents(evdev.EV_KEY), infos)), true
}

// paths returns the open pad paths in order. Callers hold mu.
func (r *Reader) paths() []string {
	out := make([]string, 0, len(r.pads))
	for path := range r.pads {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// Poll drains every open pad and reports held buttons that are due for a
// repeat.
func (r *Reader) Poll() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evs []event.Event
	now := r.now()
	for _, path := range r.paths() {
		p := r.pads[path]
		for i := 0; i < maxReads; i++ {
			ev, err := p.node.ReadOne()
			if err != nil {
				// No more events; removal is detected by Scan.
				break
			}
			evs = append(evs, p.handle(ev, now)...)
		}
		evs = append(evs, p.repeats(now)...)
	}
	return evs
}

// Run polls every pollInterval and scans every scanInterval or on Rescan,
// delivering input and hot-plug events until ctx is done. Pads are closed
// and the channel is closed on return.
func (r *Reader) Run(ctx context.Context, pollInterval, scanInterval time.Duration) <-chan event.Event {
	out := make(chan event.Event, maxReads)
	go func() {
		defer close(out)
		defer r.closeAll()

		poll := time.NewTicker(pollInterval)
		defer poll.Stop()
		scan := time.NewTicker(scanInterval)
		defer scan.Stop()

		send := func(ev event.Event) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		rescan := func() bool {
			evs, err := r.Scan()
			if err != nil {
				slog.Warn("Gamepad scan failed", "error", err)
			}
			for _, ev := range evs {
				if !send(ev) {
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-scan.C:
				if !rescan() {
					return
				}
			case <-r.rescan:
				if !rescan() {
					return
				}
			case <-poll.C:
				for _, ev := range r.Poll() {
					if !send(ev) {
						return
					}
				}
			}
		}
	}()
	return out
}

func (r *Reader) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for path, p := range r.pads {
		p.node.Close()
		delete(r.pads, path)
	}
}

// nodeNumber parses N from "eventN".
func nodeNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, "event")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// isGamepad accepts nodes that report keys including at least one gamepad
// button. Keyboards and mice never report those.
func isGamepad(types []evdev.EvType, keys []evdev.EvCode) bool {
	hasKey := false
	for _, t := range types {
		if t == evdev.EV_KEY {
			hasKey = true
		}
	}
	if !hasKey {
		return false
	}
	for _, k := range keys {
		if _, ok := keyCodes[k]; ok {
			return true
		}
	}
	return false
}

// describe builds the device view of a pad. Axis ranges come from the
// kernel's absinfo so samples can be normalized.
func describe(id int, name string, keys []evdev.EvCode, infos map[evdev.EvCode]evdev.AbsInfo) device.Device {
	d := device.Device{ID: id, Name: name, Sources: device.Gamepad | device.Joystick}
	for _, k := range keys {
		if isDPadKey(k) {
			d.Sources |= device.DPad
			break
		}
	}

	seen := make(map[int]bool)
	for code, info := range infos {
		axis, ok := axisCodes[code]
		if !ok || seen[axis] {
			continue
		}
		seen[axis] = true
		d.MotionRanges = append(d.MotionRanges, device.MotionRange{
			Axis: axis,
			Min:  float32(info.Minimum),
			Max:  float32(info.Maximum),
		})
	}
	sort.Slice(d.MotionRanges, func(i, j int) bool { return d.MotionRanges[i].Axis < d.MotionRanges[j].Axis })
	return d
}
