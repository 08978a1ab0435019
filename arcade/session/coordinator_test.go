package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-arcadehost/arcade/runtime"
)

var surface = Surface{Handle: "window", Format: 1, Width: 640, Height: 480}

func newStarted(t *testing.T) (*Coordinator, *runtime.Loopback) {
	t.Helper()
	rt := runtime.NewLoopback()
	c := New(Config{Runtime: rt})
	require.NoError(t, c.Start(BootParams{Path: "game.cue", ResumeState: true}))
	return c, rt
}

func newRunning(t *testing.T) (*Coordinator, *runtime.Loopback) {
	t.Helper()
	c, rt := newStarted(t)
	require.NoError(t, c.SurfaceChanged(surface))
	require.Equal(t, Running, c.State())
	return c, rt
}

// lifecycle drops alignment calls, which follow every boot and rebind.
func lifecycle(calls []string) []string {
	var out []string
	for _, c := range calls {
		if !strings.HasPrefix(c, "alignment(") {
			out = append(out, c)
		}
	}
	return out
}

func count(calls []string, prefix string) int {
	n := 0
	for _, c := range calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func TestStartAwaitsSurface(t *testing.T) {
	c, rt := newStarted(t)

	assert.Equal(t, AwaitingSurface, c.State())
	assert.Empty(t, rt.Calls(), "boot waits for a surface")
	assert.ErrorIs(t, c.Start(BootParams{}), ErrAlreadyStarted)
}

func TestBootOnce(t *testing.T) {
	c, rt := newRunning(t)

	require.NoError(t, c.SurfaceChanged(Surface{Handle: "window", Width: 800, Height: 600}))
	c.SurfaceDestroyed()
	require.NoError(t, c.SurfaceChanged(surface))

	assert.Equal(t, Running, c.State())
	assert.Equal(t, 1, count(rt.Calls(), "boot("))
	assert.True(t, c.Booted())
}

func TestSurfaceLostRebindsWithoutBoot(t *testing.T) {
	c, rt := newRunning(t)
	c.SurfaceDestroyed()
	require.Equal(t, SurfaceLost, c.State())

	require.NoError(t, c.SurfaceChanged(surface))

	assert.Equal(t, []string{
		`boot("game.cue", true, "")`,
		"save_resume_state(true)",
		"surface(false, 0, 0, 0)",
		"surface(true, 1, 640, 480)",
	}, lifecycle(rt.Calls()))
}

func TestSurfaceDestroyedSavesOnceBeforeLoss(t *testing.T) {
	rt := runtime.NewLoopback()
	var savesAtLoss int
	c := New(Config{
		Runtime: rt,
		OnStateChange: func(_, to State) {
			if to == SurfaceLost {
				savesAtLoss = count(rt.Calls(), "save_resume_state(true)")
			}
		},
	})
	require.NoError(t, c.Start(BootParams{Path: "game.cue"}))
	require.NoError(t, c.SurfaceChanged(surface))

	c.SurfaceDestroyed()

	assert.Equal(t, 1, savesAtLoss)
	assert.Equal(t, 1, count(rt.Calls(), "save_resume_state("))
}

func TestSurfaceDestroyedOutsideSession(t *testing.T) {
	c, rt := newStarted(t)

	c.SurfaceDestroyed()

	assert.Equal(t, AwaitingSurface, c.State())
	assert.Empty(t, rt.Calls())
}

func TestSurfaceLostKeepsPause(t *testing.T) {
	c, _ := newRunning(t)
	require.NoError(t, c.SetPaused(true))

	c.SurfaceDestroyed()
	require.NoError(t, c.SurfaceChanged(surface))

	assert.Equal(t, Paused, c.State())
}

func TestBootFailure(t *testing.T) {
	rt := runtime.NewLoopback()
	rt.FailBoot = true
	c := New(Config{Runtime: rt})
	require.NoError(t, c.Start(BootParams{Path: "missing.cue"}))

	err := c.SurfaceChanged(surface)

	assert.ErrorIs(t, err, ErrBootFailed)
	assert.Equal(t, AwaitingSurface, c.State())
	assert.False(t, c.Booted())

	rt.FailBoot = false
	require.NoError(t, c.SurfaceChanged(surface))
	assert.Equal(t, Running, c.State())
}

func TestSurfaceBeforeStart(t *testing.T) {
	c := New(Config{Runtime: runtime.NewLoopback()})
	assert.ErrorIs(t, c.SurfaceChanged(surface), ErrNotRunning)
}

func TestDeferredSettings(t *testing.T) {
	rt := runtime.NewLoopback()
	applied := 0
	c := New(Config{Runtime: rt, OnSettingsApplied: func() { applied++ }})
	require.NoError(t, c.Start(BootParams{Path: "game.cue"}))

	c.ApplySettings()
	assert.True(t, c.SettingsPending())
	assert.Zero(t, count(rt.Calls(), "apply_settings"))

	require.NoError(t, c.SurfaceChanged(surface))
	assert.False(t, c.SettingsPending())
	assert.Equal(t, 1, applied)

	c.SurfaceDestroyed()
	c.ApplySettings()
	assert.Equal(t, 1, applied, "no surface bound")

	require.NoError(t, c.SurfaceChanged(surface))
	assert.Equal(t, 2, applied)
	assert.Equal(t, 2, count(rt.Calls(), "apply_settings"))

	calls := lifecycle(rt.Calls())
	assert.Equal(t, "apply_settings()", calls[len(calls)-1], "settings follow the rebind")
}

func TestApplySettingsImmediately(t *testing.T) {
	c, rt := newRunning(t)

	c.ApplySettings()

	assert.False(t, c.SettingsPending())
	assert.Equal(t, 1, count(rt.Calls(), "apply_settings"))
}

func TestPauseIsIdempotent(t *testing.T) {
	c, rt := newRunning(t)

	require.NoError(t, c.SetPaused(true))
	require.NoError(t, c.SetPaused(true))
	assert.Equal(t, Paused, c.State())
	assert.Equal(t, 1, count(rt.Calls(), "pause(true)"))

	require.NoError(t, c.TogglePause())
	assert.Equal(t, Running, c.State())
	require.NoError(t, c.SetPaused(false))
	assert.Equal(t, 1, count(rt.Calls(), "pause(false)"))
}

func TestPauseOutsideSession(t *testing.T) {
	c, _ := newStarted(t)
	assert.ErrorIs(t, c.SetPaused(true), ErrNotRunning)
}

func TestStopOrder(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Coordinator)
	}{
		{"running", func(c *Coordinator) {}},
		{"paused", func(c *Coordinator) { _ = c.SetPaused(true) }},
		{"surface lost", func(c *Coordinator) { c.SurfaceDestroyed() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var states []State
			rt := runtime.NewLoopback()
			c := New(Config{Runtime: rt, OnStateChange: func(_, to State) { states = append(states, to) }})
			require.NoError(t, c.Start(BootParams{Path: "game.cue"}))
			require.NoError(t, c.SurfaceChanged(surface))
			tt.setup(c)

			c.Stop()
			c.Stop()

			calls := rt.Calls()
			assert.Equal(t, []string{"stop()", "shutdown()"}, calls[len(calls)-2:])
			assert.Equal(t, 1, count(calls, "stop()"))
			assert.Equal(t, []State{Stopping, Stopped}, states[len(states)-2:])
			assert.Equal(t, Stopped, c.State())
		})
	}
}

func TestStopBeforeBoot(t *testing.T) {
	c, rt := newStarted(t)

	c.Stop()

	assert.Equal(t, Stopped, c.State())
	assert.Empty(t, rt.Calls())
	assert.NoError(t, c.SurfaceChanged(surface), "stopped sessions ignore surfaces")
	assert.Empty(t, rt.Calls())
}

func TestSurfaceDestroyedAfterStopSkipsSave(t *testing.T) {
	c, rt := newRunning(t)
	c.stopRequested = true

	c.SurfaceDestroyed()

	assert.Zero(t, count(rt.Calls(), "save_resume_state"))
	assert.Equal(t, SurfaceLost, c.State())
}

func TestMenuOperations(t *testing.T) {
	c, rt := newRunning(t)

	require.NoError(t, c.SetSaveStateSlot(3))
	require.NoError(t, c.LoadState())
	on, err := c.ToggleFastForward()
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, c.Reset())

	calls := lifecycle(rt.Calls())
	assert.Equal(t, []string{"load_state(false, 3)", "fast_forward(true)", "reset()"}, calls[1:])

	assert.ErrorIs(t, c.SetSaveStateSlot(SaveStateSlots), ErrInvalidSlot)
	assert.ErrorIs(t, c.SetSaveStateSlot(-1), ErrInvalidSlot)
	assert.Equal(t, 3, c.SaveStateSlot())
}

func TestMenuOperationsNeedSurface(t *testing.T) {
	c, _ := newRunning(t)
	c.SurfaceDestroyed()

	assert.ErrorIs(t, c.LoadState(), ErrNotRunning)
	assert.ErrorIs(t, c.Reset(), ErrNotRunning)
	_, err := c.ToggleFastForward()
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestNextSaveStateSlotWraps(t *testing.T) {
	c := New(Config{Runtime: runtime.NewLoopback()})
	require.NoError(t, c.SetSaveStateSlot(SaveStateSlots-1))

	assert.Equal(t, 0, c.NextSaveStateSlot())
	assert.Equal(t, 1, c.NextSaveStateSlot())
}

func TestOrientation(t *testing.T) {
	c, rt := newStarted(t)
	c.SetOrientation(OrientationPortrait)
	assert.Empty(t, rt.Calls(), "no surface yet")

	require.NoError(t, c.SurfaceChanged(surface))
	c.SetOrientation(ParseOrientation("Landscape"))

	assert.Equal(t, []string{"alignment(top-or-left)", "alignment(center)"}, rt.Calls()[1:])
	assert.Equal(t, OrientationUnspecified, ParseOrientation("upside-down"))
}

func TestDestroy(t *testing.T) {
	c, rt := newRunning(t)

	c.Destroy()

	assert.Equal(t, Stopped, c.State())
	assert.Equal(t, 1, count(rt.Calls(), "stop()"))
	assert.Zero(t, count(rt.Calls(), "shutdown()"))
	assert.False(t, c.RuntimeStopped(), "destroyed hosts do not finish again")
}

func TestRuntimeStopped(t *testing.T) {
	c, _ := newRunning(t)
	assert.True(t, c.RuntimeStopped())
	assert.Equal(t, Stopped, c.State())

	c, _ = newRunning(t)
	c.Stop()
	assert.False(t, c.RuntimeStopped(), "stop was requested")
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "surface-lost", SurfaceLost.String())
	assert.Equal(t, "unknown", State(42).String())
}
