// Package session coordinates the emulation session lifecycle against a
// rendering surface that the host can destroy at any time.
//
// All methods must be called from the host's control goroutine.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-arcadehost/arcade/runtime"
)

var (
	ErrBootFailed     = errors.New("session: boot failed")
	ErrNotRunning     = errors.New("session: not running")
	ErrInvalidSlot    = errors.New("session: invalid save state slot")
	ErrAlreadyStarted = errors.New("session: already started")
)

// SaveStateSlots is the number of quick save slots.
const SaveStateSlots = 10

// BootParams describe what the session boots.
type BootParams struct {
	Path          string // boot target; empty boots the BIOS
	ResumeState   bool
	SaveStatePath string
}

// Surface is a rendering surface handed over by the host.
type Surface struct {
	Handle any
	Format int
	Width  int
	Height int
}

type Config struct {
	Runtime runtime.Runtime

	// OnStateChange is called after every transition.
	OnStateChange func(from, to State)
	// OnSettingsApplied is called after settings reach the runtime.
	OnSettingsApplied func()
}

// Coordinator drives one session from Idle to Stopped.
type Coordinator struct {
	rt  runtime.Runtime
	cfg Config

	state  State
	params BootParams

	booted           bool
	stopRequested    bool
	destroyed        bool
	pausedBeforeLoss bool

	applySettingsOnSurfaceRestored bool
	saveStateSlot                  int
	orientation                    Orientation
}

func New(cfg Config) *Coordinator {
	return &Coordinator{rt: cfg.Runtime, cfg: cfg}
}

func (c *Coordinator) State() State { return c.state }

// Booted reports whether the runtime accepted the boot request.
func (c *Coordinator) Booted() bool { return c.booted }

// SaveStateSlot is the slot quick load uses.
func (c *Coordinator) SaveStateSlot() int { return c.saveStateSlot }

// SettingsPending reports whether a settings apply waits for a surface.
func (c *Coordinator) SettingsPending() bool { return c.applySettingsOnSurfaceRestored }

func (c *Coordinator) transition(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	slog.Info("Session state changed", "from", from, "to", to)
	if c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(from, to)
	}
}

// Start requests a session. Boot waits for the first surface.
func (c *Coordinator) Start(p BootParams) error {
	if c.state != Idle {
		return fmt.Errorf("%w: state %s", ErrAlreadyStarted, c.state)
	}
	c.params = p
	slog.Info("Session requested", "path", p.Path, "resume_state", p.ResumeState)
	c.transition(AwaitingSurface)
	return nil
}

// SurfaceChanged handles a surface becoming available or changing size.
func (c *Coordinator) SurfaceChanged(s Surface) error {
	switch c.state {
	case Idle:
		return fmt.Errorf("%w: no session requested", ErrNotRunning)

	case AwaitingSurface:
		if !c.rt.Boot(s.Handle, c.params.Path, c.params.ResumeState, c.params.SaveStatePath) {
			slog.Error("Runtime rejected boot", "path", c.params.Path)
			return fmt.Errorf("%w: %q", ErrBootFailed, c.params.Path)
		}
		c.booted = true
		c.rt.SetDisplayAlignment(c.orientation.alignment())
		c.transition(Running)
		c.applyDeferredSettings()

	case SurfaceLost:
		c.rt.RebindSurface(s.Handle, s.Format, s.Width, s.Height)
		c.rt.SetDisplayAlignment(c.orientation.alignment())
		if c.pausedBeforeLoss {
			c.transition(Paused)
		} else {
			c.transition(Running)
		}
		c.applyDeferredSettings()

	case Running, Paused:
		slog.Debug("Surface resized", "width", s.Width, "height", s.Height)
		c.rt.RebindSurface(s.Handle, s.Format, s.Width, s.Height)

	default:
		slog.Debug("Surface ignored", "state", c.state)
	}
	return nil
}

// SurfaceDestroyed saves a resume state and detaches the surface. The save
// blocks until the runtime has written it.
func (c *Coordinator) SurfaceDestroyed() {
	if c.state != Running && c.state != Paused {
		slog.Debug("Surface destroyed", "state", c.state)
		return
	}
	if !c.stopRequested {
		slog.Info("Saving resume state before surface loss")
		c.rt.SaveResumeState(true)
	}
	c.rt.RebindSurface(nil, 0, 0, 0)
	c.pausedBeforeLoss = c.state == Paused
	c.transition(SurfaceLost)
}

// SetPaused moves between Running and Paused.
func (c *Coordinator) SetPaused(paused bool) error {
	switch {
	case c.state == Running && paused:
		c.rt.Pause(true)
		c.transition(Paused)
	case c.state == Paused && !paused:
		c.rt.Pause(false)
		c.transition(Running)
	case c.state == Running || c.state == Paused:
		// already there
	default:
		return fmt.Errorf("%w: state %s", ErrNotRunning, c.state)
	}
	return nil
}

func (c *Coordinator) TogglePause() error {
	return c.SetPaused(c.state == Running)
}

// Stop ends the session. It is terminal.
func (c *Coordinator) Stop() {
	switch {
	case c.state == Stopping || c.state == Stopped:
		return
	case !c.state.live():
		c.transition(Stopped)
		return
	}

	c.stopRequested = true
	c.transition(Stopping)
	c.rt.Stop()
	c.rt.Shutdown()
	c.transition(Stopped)
}

// ApplySettings pushes settings to the runtime, or defers them until a
// surface is bound.
func (c *Coordinator) ApplySettings() {
	switch c.state {
	case Running, Paused:
		c.applySettings()
	case Stopping, Stopped:
		slog.Debug("Settings ignored, session stopped")
	default:
		slog.Debug("Deferring settings until surface is restored", "state", c.state)
		c.applySettingsOnSurfaceRestored = true
	}
}

func (c *Coordinator) applyDeferredSettings() {
	if !c.applySettingsOnSurfaceRestored {
		return
	}
	c.applySettingsOnSurfaceRestored = false
	c.applySettings()
}

func (c *Coordinator) applySettings() {
	c.rt.ApplySettings()
	if c.cfg.OnSettingsApplied != nil {
		c.cfg.OnSettingsApplied()
	}
}

func (c *Coordinator) requireSurface() error {
	if c.state != Running && c.state != Paused {
		return fmt.Errorf("%w: state %s", ErrNotRunning, c.state)
	}
	return nil
}

// LoadState quick loads the current save state slot.
func (c *Coordinator) LoadState() error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	slog.Info("Loading state", "slot", c.saveStateSlot)
	c.rt.LoadState(false, c.saveStateSlot)
	return nil
}

func (c *Coordinator) SetSaveStateSlot(slot int) error {
	if slot < 0 || slot >= SaveStateSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	c.saveStateSlot = slot
	return nil
}

// NextSaveStateSlot advances the quick save slot, wrapping after the last.
func (c *Coordinator) NextSaveStateSlot() int {
	c.saveStateSlot = (c.saveStateSlot + 1) % SaveStateSlots
	return c.saveStateSlot
}

// ToggleFastForward flips fast forward and returns the new setting.
func (c *Coordinator) ToggleFastForward() (bool, error) {
	if err := c.requireSurface(); err != nil {
		return false, err
	}
	enabled := !c.rt.FastForward()
	c.rt.SetFastForward(enabled)
	return enabled, nil
}

// Reset restarts the emulated system without ending the session.
func (c *Coordinator) Reset() error {
	if err := c.requireSurface(); err != nil {
		return err
	}
	c.rt.ResetSystem()
	return nil
}

// SetOrientation records the screen orientation and realigns the display if
// a surface is bound.
func (c *Coordinator) SetOrientation(o Orientation) {
	c.orientation = o
	if c.state == Running || c.state == Paused {
		c.rt.SetDisplayAlignment(o.alignment())
	}
}

// Destroy tears the host down. A live runtime is stopped but not shut down.
func (c *Coordinator) Destroy() {
	c.destroyed = true
	if c.state.live() {
		c.stopRequested = true
		c.rt.Stop()
	}
	c.transition(Stopped)
}

// RuntimeStopped handles the runtime ending emulation on its own. It
// reports whether the host should finish.
func (c *Coordinator) RuntimeStopped() bool {
	finish := !c.destroyed && !c.stopRequested
	c.transition(Stopped)
	return finish
}
