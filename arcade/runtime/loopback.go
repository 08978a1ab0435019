package runtime

import (
	"fmt"
	"log/slog"
	"sync"
)

type control struct {
	index, code int
}

// Loopback is an in-process Runtime. It records controller state and every
// call it receives, and logs them, which is enough to drive headless and
// terminal sessions without a native core.
type Loopback struct {
	// FailBoot makes Boot report failure.
	FailBoot bool
	// StoppedFunc, if set, is called after Stop as the runtime's
	// "emulation stopped" notification.
	StoppedFunc func()

	mu          sync.Mutex
	booted      bool
	paused      bool
	stopped     bool
	shutdown    bool
	fastForward bool
	surface     any
	alignment   Alignment
	resumeSaves int
	buttons     map[control]bool
	axes        map[control]float32
	calls       []string
}

func NewLoopback() *Loopback {
	return &Loopback{
		buttons:   make(map[control]bool),
		axes:      make(map[control]float32),
		alignment: AlignCenter,
	}
}

func (l *Loopback) record(format string, args ...any) {
	call := fmt.Sprintf(format, args...)
	l.calls = append(l.calls, call)
	slog.Debug("Runtime call", "call", call)
}

func (l *Loopback) Boot(surface any, path string, resumeState bool, stateFile string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("boot(%q, %t, %q)", path, resumeState, stateFile)
	if l.FailBoot {
		slog.Error("Boot rejected", "path", path)
		return false
	}
	l.booted = true
	l.surface = surface
	slog.Info("Emulation started", "path", path, "resume_state", resumeState)
	return true
}

func (l *Loopback) RebindSurface(surface any, format, width, height int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("surface(%t, %d, %d, %d)", surface != nil, format, width, height)
	l.surface = surface
}

func (l *Loopback) SetButtonState(index, code int, pressed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buttons[control{index, code}] = pressed
}

func (l *Loopback) SetAxisState(index, code int, value float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.axes[control{index, code}] = value
}

func (l *Loopback) Pause(paused bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("pause(%t)", paused)
	l.paused = paused
}

func (l *Loopback) Stop() {
	l.mu.Lock()
	l.record("stop()")
	l.stopped = true
	notify := l.StoppedFunc
	l.mu.Unlock()

	slog.Info("Emulation stopped")
	if notify != nil {
		notify()
	}
}

func (l *Loopback) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("shutdown()")
	l.shutdown = true
}

func (l *Loopback) SaveResumeState(wait bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("save_resume_state(%t)", wait)
	l.resumeSaves++
}

func (l *Loopback) ApplySettings() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("apply_settings()")
}

func (l *Loopback) LoadState(global bool, slot int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("load_state(%t, %d)", global, slot)
}

func (l *Loopback) SetFastForward(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("fast_forward(%t)", enabled)
	l.fastForward = enabled
}

func (l *Loopback) FastForward() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fastForward
}

func (l *Loopback) ResetSystem() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("reset()")
}

func (l *Loopback) SetDisplayAlignment(a Alignment) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.record("alignment(%s)", a)
	l.alignment = a
}

// Button returns the last state forwarded for a logical button.
func (l *Loopback) Button(index, code int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buttons[control{index, code}]
}

// Axis returns the last value forwarded for a logical axis.
func (l *Loopback) Axis(index, code int) float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.axes[control{index, code}]
}

// Calls returns the lifecycle calls received so far, oldest first.
// Controller state setters are not recorded.
func (l *Loopback) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Status is a one-line summary for status displays.
func (l *Loopback) Status() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprintf("booted=%t paused=%t ff=%t surface=%t resume_saves=%d",
		l.booted, l.paused, l.fastForward, l.surface != nil, l.resumeSaves)
}

var _ Runtime = (*Loopback)(nil)
