// Package arcade wires the input mapping engine and the session coordinator
// into a single control loop fed by a host backend.
package arcade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valerio/go-arcadehost/arcade/backend"
	"github.com/valerio/go-arcadehost/arcade/config"
	"github.com/valerio/go-arcadehost/arcade/controllers"
	"github.com/valerio/go-arcadehost/arcade/input"
	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
	"github.com/valerio/go-arcadehost/arcade/input/hotplug"
	"github.com/valerio/go-arcadehost/arcade/input/keycode"
	"github.com/valerio/go-arcadehost/arcade/input/mapping"
	"github.com/valerio/go-arcadehost/arcade/input/translate"
	"github.com/valerio/go-arcadehost/arcade/profile"
	"github.com/valerio/go-arcadehost/arcade/runtime"
	"github.com/valerio/go-arcadehost/arcade/session"
	"github.com/valerio/go-arcadehost/arcade/timing"
)

// Options configure a Host.
type Options struct {
	Runtime runtime.Runtime
	// Sink receives controller state. Defaults to Runtime.
	Sink     translate.Sink
	Settings config.Settings
	Boot     session.BootParams

	// Catalogs are consulted after the backend's own devices.
	Catalogs []device.Catalog
	// DeviceEvents delivers hot-plug notifications from outside the backend.
	DeviceEvents <-chan event.Device
	// Events delivers input from sources beside the backend, such as
	// physical pads read by the platform.
	Events <-chan event.Event
	// Resolver defaults to the built-in profiles.
	Resolver profile.Resolver
	// Limiter defaults to no limiting.
	Limiter  timing.Limiter
	Debounce time.Duration
	Attract  bool
	Title    string
	Debug    bool
}

// Host owns the mapping engine and the session, and runs both on one
// goroutine.
type Host struct {
	opts     Options
	settings config.Settings

	store       *mapping.Store
	builder     *mapping.Builder
	translator  *translate.Translator
	gate        *gate
	monitor     *hotplug.Monitor
	controllers *controllers.Manager
	session     *session.Coordinator
	actions     *input.Manager
	shortcuts   input.Shortcuts

	finished bool

	mu     sync.Mutex
	posted []func()
}

func New(opts Options) *Host {
	if opts.Sink == nil {
		opts.Sink = opts.Runtime
	}
	if opts.Resolver == nil {
		opts.Resolver = profile.Builtin{}
	}
	if opts.Limiter == nil {
		opts.Limiter = timing.NewNoOpLimiter()
	}
	if opts.Title == "" {
		opts.Title = "arcadehost"
	}

	h := &Host{
		opts:     opts,
		settings: opts.Settings,
		store:    mapping.NewStore(),
		builder:  mapping.NewBuilder(opts.Resolver),
		actions:  input.NewManager(opts.Debounce),
	}
	h.shortcuts.Attract = opts.Attract
	h.gate = &gate{next: opts.Sink, open: h.accepting, pending: make(map[controllerAxis]float32)}
	h.translator = translate.New(h.store, h.gate)
	h.monitor = hotplug.NewMonitor(hotplug.UpdaterFunc(h.rebuild))
	h.session = session.New(session.Config{
		Runtime:       opts.Runtime,
		OnStateChange: h.stateChanged,
	})
	h.session.SetOrientation(session.ParseOrientation(opts.Settings.Main.Orientation))
	h.registerActions()
	return h
}

// gate holds controller state back while the session is not running.
// Releases always pass, so a press never outlives its button. The last axis
// sample held back per controller axis is delivered by flush.
type gate struct {
	next    translate.Sink
	open    func() bool
	pending map[controllerAxis]float32
}

type controllerAxis struct{ index, code int }

func (g *gate) SetButtonState(index, code int, pressed bool) {
	if pressed && !g.open() {
		return
	}
	g.next.SetButtonState(index, code, pressed)
}

func (g *gate) SetAxisState(index, code int, value float32) {
	if !g.open() {
		g.pending[controllerAxis{index, code}] = value
		return
	}
	g.next.SetAxisState(index, code, value)
}

func (g *gate) flush() {
	for a, v := range g.pending {
		g.next.SetAxisState(a.index, a.code, v)
	}
	clear(g.pending)
}

func (h *Host) accepting() bool {
	return h.session.State() == session.Running
}

func (h *Host) stateChanged(_, to session.State) {
	switch to {
	case session.Running:
		h.gate.flush()
	case session.Stopped:
		h.finished = true
	}
}

func (h *Host) registerActions() {
	h.actions.On(action.MenuOpen, func() {
		slog.Info("Menu opened")
		if h.settings.Main.PauseOnMenu {
			h.check(action.MenuOpen, h.session.SetPaused(true))
		}
	})
	h.actions.On(action.MenuClose, func() {
		slog.Info("Menu closed")
		if h.settings.Main.PauseOnMenu {
			h.check(action.MenuClose, h.session.SetPaused(false))
		}
	})
	h.actions.On(action.PauseToggle, func() {
		h.check(action.PauseToggle, h.session.TogglePause())
	})
	h.actions.On(action.Quit, h.session.Stop)
	h.actions.On(action.Restart, func() {
		h.check(action.Restart, h.session.Reset())
	})
	h.actions.On(action.QuickLoad, func() {
		h.check(action.QuickLoad, h.session.LoadState())
	})
	h.actions.On(action.NextSaveSlot, func() {
		slot := h.session.NextSaveStateSlot()
		slog.Info("Save state slot selected", "slot", slot)
	})
	h.actions.On(action.FastForwardToggle, func() {
		enabled, err := h.session.ToggleFastForward()
		if h.check(action.FastForwardToggle, err) {
			slog.Info("Fast forward toggled", "enabled", enabled)
		}
	})
	h.actions.On(action.Reset, func() {
		h.check(action.Reset, h.session.Reset())
	})
	h.actions.On(action.ApplySettings, func() {
		h.ApplyConfig(h.settings)
	})
}

// check logs an action the session refused and reports whether act went
// through.
func (h *Host) check(act action.Action, err error) bool {
	if err != nil {
		slog.Warn("Action ignored", "action", act, "state", h.session.State(), "error", err)
		return false
	}
	return true
}

func (h *Host) rebuild() error {
	if h.controllers == nil {
		return nil
	}
	return h.controllers.Rebuild()
}

func (h *Host) updateControllers() {
	if _, err := h.controllers.Update(h.settings.Controller1); err != nil {
		slog.Warn("Failed to update controllers", "error", err)
	}
}

// ApplyConfig adopts new settings: controllers are rebuilt and the runtime
// picks the settings up now or once a surface is bound. Must run on the
// control loop; use Post from other goroutines.
func (h *Host) ApplyConfig(s config.Settings) {
	h.settings = s
	h.session.SetOrientation(session.ParseOrientation(s.Main.Orientation))
	if h.controllers != nil {
		h.updateControllers()
	}
	h.session.ApplySettings()
}

// Post queues fn to run on the control loop. It is safe to call from any
// goroutine and never blocks.
func (h *Host) Post(fn func()) {
	h.mu.Lock()
	h.posted = append(h.posted, fn)
	h.mu.Unlock()
}

func (h *Host) drain() {
	h.mu.Lock()
	fns := h.posted
	h.posted = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// RuntimeStopped is the runtime's "emulation stopped" notification. It may
// be called from any goroutine.
func (h *Host) RuntimeStopped() {
	h.Post(func() {
		if h.session.RuntimeStopped() {
			slog.Info("Runtime ended the session")
		}
	})
}

// State returns the session state. Must run on the control loop.
func (h *Host) State() session.State { return h.session.State() }

// Controllers returns the outcome of the last controller update.
func (h *Host) Controllers() controllers.Result {
	if h.controllers == nil {
		return controllers.Result{}
	}
	return h.controllers.Last()
}

// Status is a one-line summary for backends that display one.
func (h *Host) Status() string {
	c := h.Controllers()
	return fmt.Sprintf("session %s | slot %d | buttons %d axes %d | touchscreen %t",
		h.session.State(), h.session.SaveStateSlot(), c.Buttons, c.Axes, c.ShowTouchscreen)
}

// Run polls b and dispatches its events until the session stops or ctx is
// done. A rejected boot or a backend failure stops the session and is
// returned.
func (h *Host) Run(ctx context.Context, b backend.Backend) error {
	if err := b.Init(backend.Config{Title: h.opts.Title, Debug: h.opts.Debug, Status: h.Status}); err != nil {
		return fmt.Errorf("initializing backend: %w", err)
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}()
	defer h.opts.Limiter.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	catalog := append(device.Multi{b}, h.opts.Catalogs...)
	h.controllers = controllers.New(catalog, h.builder, h.store)
	h.updateControllers()

	if h.opts.DeviceEvents != nil {
		go forward(ctx, h, h.opts.DeviceEvents)
	}
	if h.opts.Events != nil {
		go forward(ctx, h, h.opts.Events)
	}

	if err := h.session.Start(h.opts.Boot); err != nil {
		return err
	}

	for !h.finished {
		h.drain()
		if h.finished {
			break
		}

		events, err := b.Update()
		if err != nil {
			h.session.Stop()
			return fmt.Errorf("polling backend: %w", err)
		}
		for _, ev := range events {
			if err := h.dispatch(ev); err != nil {
				h.session.Stop()
				return err
			}
			if h.finished {
				break
			}
		}
		if h.finished {
			break
		}

		if err := h.opts.Limiter.Wait(ctx); err != nil {
			slog.Info("Host interrupted", "reason", err)
			h.session.Stop()
			break
		}
	}

	h.drain()
	slog.Info("Host finished", "state", h.session.State())
	return nil
}

// forward moves events from another goroutine onto the control loop.
func forward[E event.Event](ctx context.Context, h *Host, events <-chan E) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Post(func() {
				if err := h.dispatch(ev); err != nil {
					slog.Warn("External event failed", "event", ev, "error", err)
				}
			})
		}
	}
}

func (h *Host) dispatch(ev event.Event) error {
	switch ev := ev.(type) {
	case event.Key:
		h.handleKey(ev)
	case event.Motion:
		h.translator.HandleMotion(ev)
	case event.Device:
		h.monitor.Handle(ev)
	case event.Surface:
		err := h.session.SurfaceChanged(session.Surface(ev))
		if errors.Is(err, session.ErrBootFailed) {
			return fmt.Errorf("booting %q: %w", h.opts.Boot.Path, err)
		}
		if err != nil {
			slog.Warn("Surface ignored", "error", err)
		}
	case event.SurfaceDestroyed:
		h.session.SurfaceDestroyed()
	case event.Action:
		h.actions.Trigger(ev.Action)
	default:
		slog.Warn("Unknown host event", "event", ev)
	}
	return nil
}

func (h *Host) handleKey(ev event.Key) {
	act, consumed := h.shortcuts.Inspect(ev)
	if !consumed {
		h.translator.HandleKey(ev)
	}
	if act != action.None {
		h.actions.Trigger(act)
	}
	// One restart per long press.
	if !ev.Down && ev.Code == keycode.ButtonL1 {
		h.shortcuts.Rearm()
	}
}
