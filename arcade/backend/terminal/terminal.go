// Package terminal turns the keyboard of a terminal into a virtual gamepad
// and uses the terminal screen as the rendering surface.
package terminal

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-arcadehost/arcade/backend"
	"github.com/valerio/go-arcadehost/arcade/backend/terminal/render"
	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
)

const (
	// VirtualDeviceID is the device id of the keyboard gamepad.
	VirtualDeviceID = 1

	formatRGBA8888 = 1

	minTermWidth  = 40
	minTermHeight = 10
	logCapacity   = 200
)

// Key expiry timeout - slightly longer than typical key repeat interval
const keyTimeout = 100 * time.Millisecond

var virtualPad = device.Device{
	ID:      VirtualDeviceID,
	Name:    "Terminal keyboard",
	Sources: device.Gamepad | device.DPad | device.Joystick,
	MotionRanges: []device.MotionRange{
		{Axis: keycode.AxisX, Min: -1, Max: 1},
		{Axis: keycode.AxisY, Min: -1, Max: 1},
	},
}

type stickDir struct {
	axis  int
	value float32
}

type heldKey struct {
	since   time.Time
	repeats int
}

// Backend implements the Backend interface using tcell
type Backend struct {
	screen    tcell.Screen
	config    backend.Config
	logBuffer *render.LogBuffer
	logLevel  slog.Level
	registry  *device.Registry
	now       func() time.Time

	pending    []event.Event
	keyStates  map[int]time.Time // last time each pad key was seen
	activeKeys map[int]*heldKey  // pad keys reported down
	stickSeen  map[stickDir]time.Time
	stick      map[int]float32 // last reported stick position

	surfaceW, surfaceH int
	surfaceGone        bool
}

// New creates a terminal backend on the real terminal.
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a terminal backend on the given screen, which Init
// initializes. A nil screen opens the real terminal.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{
		screen:   screen,
		logLevel: slog.LevelInfo,
		now:      time.Now,
	}
}

// Init initializes the screen and reports it as the first surface
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.keyStates = make(map[int]time.Time)
	t.activeKeys = make(map[int]*heldKey)
	t.stickSeen = make(map[stickDir]time.Time)
	t.stick = map[int]float32{keycode.AxisX: 0, keycode.AxisY: 0}
	t.registry = device.NewRegistry(virtualPad)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.logBuffer = render.NewLogBuffer(logCapacity)
	// Capture everything; the log panel filters by t.logLevel.
	slog.SetDefault(slog.New(render.NewHandler(t.logBuffer, slog.LevelDebug)))
	slog.Info("Terminal backend initialized")
	if config.Debug {
		t.logLevel = slog.LevelDebug
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	t.reportSurface()
	return nil
}

// Devices returns the keyboard gamepad.
func (t *Backend) Devices() ([]device.Device, error) {
	if t.registry == nil {
		return nil, nil
	}
	return t.registry.Devices()
}

// Update polls terminal events, synthesizes pad transitions and redraws.
func (t *Backend) Update() ([]event.Event, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
			t.reportSurface()
		}
	}

	events := t.pending
	t.pending = nil
	events = append(events, t.padEvents(now)...)
	if ev, ok := t.stickEvent(now); ok {
		events = append(events, ev)
	}

	t.render()
	t.screen.Show()
	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

func (t *Backend) reportSurface() {
	if t.surfaceGone {
		return
	}
	w, h := t.screen.Size()
	if w == t.surfaceW && h == t.surfaceH {
		return
	}
	t.surfaceW, t.surfaceH = w, h
	t.pending = append(t.pending, event.Surface{Handle: t.screen, Format: formatRGBA8888, Width: w, Height: h})
}

// toggleSurface simulates the host taking the surface away and giving it
// back.
func (t *Backend) toggleSurface() {
	if t.surfaceGone {
		t.surfaceGone = false
		t.surfaceW, t.surfaceH = 0, 0
		t.reportSurface()
		return
	}
	t.surfaceGone = true
	t.pending = append(t.pending, event.SurfaceDestroyed{})
}

// padEvents reports key transitions for the pad keys. Terminals only send
// presses (and repeats), so a key counts as released once no repeat has
// arrived within keyTimeout.
func (t *Backend) padEvents(now time.Time) []event.Event {
	var events []event.Event

	codes := make([]int, 0, len(t.keyStates)+len(t.activeKeys))
	for code := range t.keyStates {
		codes = append(codes, code)
	}
	for code := range t.activeKeys {
		if _, ok := t.keyStates[code]; !ok {
			codes = append(codes, code)
		}
	}
	sort.Ints(codes)

	for _, code := range codes {
		last, seen := t.keyStates[code]
		held := t.activeKeys[code]

		if seen && now.Sub(last) < keyTimeout {
			if held == nil {
				held = &heldKey{since: now}
				t.activeKeys[code] = held
				slog.Debug("Key press", "key", keycode.KeyName(code))
			} else {
				held.repeats++
			}
			events = append(events, t.keyEvent(code, true, held, now))
			continue
		}

		delete(t.keyStates, code)
		if held != nil {
			delete(t.activeKeys, code)
			slog.Debug("Key release", "key", keycode.KeyName(code))
			events = append(events, t.keyEvent(code, false, held, now))
		}
	}
	return events
}

func (t *Backend) keyEvent(code int, down bool, held *heldKey, now time.Time) event.Key {
	ev := event.Key{
		DeviceID: VirtualDeviceID,
		Source:   device.Gamepad,
		Code:     code,
		Down:     down,
		Held:     now.Sub(held.since),
	}
	if down {
		ev.Repeat = held.repeats
	}
	return ev
}

// stickEvent reports the virtual left stick when its position changes.
func (t *Backend) stickEvent(now time.Time) (event.Event, bool) {
	pos := map[int]float32{keycode.AxisX: 0, keycode.AxisY: 0}
	for dir, last := range t.stickSeen {
		if now.Sub(last) >= keyTimeout {
			delete(t.stickSeen, dir)
			continue
		}
		pos[dir.axis] = dir.value
	}

	if pos[keycode.AxisX] == t.stick[keycode.AxisX] && pos[keycode.AxisY] == t.stick[keycode.AxisY] {
		return nil, false
	}
	t.stick = pos
	return event.Motion{DeviceID: VirtualDeviceID, Source: device.Joystick, Axes: pos}, true
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if act, ok := actionKeys[ev.Key()]; ok {
		t.queueAction(act)
		return
	}
	if code, ok := padKeys[ev.Key()]; ok {
		t.pressPad(code, now)
		return
	}

	switch ev.Key() {
	case tcell.KeyF8:
		t.toggleSurface()
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	switch {
	case r == '+' || r == '=':
		t.changeLogLevel(1)
	case r == '-' || r == '_':
		t.changeLogLevel(-1)
	}
	if act, ok := actionRunes[r]; ok {
		t.queueAction(act)
	} else if code, ok := padRunes[r]; ok {
		t.pressPad(code, now)
	} else if dir, ok := stickRunes[r]; ok {
		// Opposite directions cancel out: the latest one wins.
		delete(t.stickSeen, stickDir{dir.axis, -dir.value})
		t.stickSeen[dir] = now
	}
}

func (t *Backend) queueAction(act action.Action) {
	slog.Debug("UI event", "action", act)
	t.pending = append(t.pending, event.Event(event.Action{Action: act}))
}

func (t *Backend) pressPad(code int, now time.Time) {
	switch code {
	case keycode.DPadUp, keycode.DPadDown, keycode.DPadLeft, keycode.DPadRight:
		// Clear all d-pad directions to simulate exclusive directions
		delete(t.keyStates, keycode.DPadUp)
		delete(t.keyStates, keycode.DPadDown)
		delete(t.keyStates, keycode.DPadLeft)
		delete(t.keyStates, keycode.DPadRight)
	}
	t.keyStates[code] = now
}

func (t *Backend) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug}
	for i, l := range levels {
		if l != t.logLevel {
			continue
		}
		next := i + direction
		if next < 0 || next >= len(levels) {
			return
		}
		slog.Info("Log filter changed", "from", t.logLevel, "to", levels[next])
		t.logLevel = levels[next]
		return
	}
}

var padKeys = map[tcell.Key]int{
	tcell.KeyUp:    keycode.DPadUp,
	tcell.KeyDown:  keycode.DPadDown,
	tcell.KeyLeft:  keycode.DPadLeft,
	tcell.KeyRight: keycode.DPadRight,
	tcell.KeyEnter: keycode.ButtonStart,
	tcell.KeyTab:   keycode.ButtonSelect,
}

var padRunes = map[rune]int{
	'z': keycode.ButtonA,
	'x': keycode.ButtonB,
	'a': keycode.ButtonX,
	's': keycode.ButtonY,
	'q': keycode.ButtonL1,
	'e': keycode.ButtonR1,
	'1': keycode.ButtonL2,
	'3': keycode.ButtonR2,
}

var stickRunes = map[rune]stickDir{
	'i': {keycode.AxisY, -1},
	'k': {keycode.AxisY, 1},
	'j': {keycode.AxisX, -1},
	'l': {keycode.AxisX, 1},
}

var actionKeys = map[tcell.Key]action.Action{
	tcell.KeyEscape: action.MenuOpen,
	tcell.KeyCtrlC:  action.Quit,
	tcell.KeyF2:     action.QuickLoad,
	tcell.KeyF3:     action.NextSaveSlot,
	tcell.KeyF4:     action.FastForwardToggle,
	tcell.KeyF5:     action.Reset,
	tcell.KeyF6:     action.ApplySettings,
}

var actionRunes = map[rune]action.Action{
	'p': action.PauseToggle,
	'm': action.MenuClose,
}

var _ backend.Backend = (*Backend)(nil)
