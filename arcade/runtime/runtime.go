// Package runtime describes the calls made into the external emulation
// runtime, and provides an in-process stand-in for it.
package runtime

// Alignment positions the emulated display inside the surface.
type Alignment int

const (
	AlignTopOrLeft Alignment = iota
	AlignCenter
	AlignRightOrBottom
)

func (a Alignment) String() string {
	switch a {
	case AlignTopOrLeft:
		return "top-or-left"
	case AlignCenter:
		return "center"
	case AlignRightOrBottom:
		return "right-or-bottom"
	default:
		return "unknown"
	}
}

// Runtime is the emulation runtime. It owns its own threads and is safe to
// call from the control goroutine; every call blocks until accepted.
type Runtime interface {
	// Boot starts emulation on surface. It reports false if the runtime
	// rejected the request.
	Boot(surface any, path string, resumeState bool, stateFile string) bool
	// RebindSurface hands a new surface to a running session. A nil surface
	// detaches the current one.
	RebindSurface(surface any, format, width, height int)

	SetButtonState(index, code int, pressed bool)
	SetAxisState(index, code int, value float32)

	Pause(paused bool)
	Stop()
	Shutdown()
	// SaveResumeState persists a resume state, blocking until it is written
	// when wait is true.
	SaveResumeState(wait bool)
	ApplySettings()

	LoadState(global bool, slot int)
	SetFastForward(enabled bool)
	FastForward() bool
	ResetSystem()
	SetDisplayAlignment(a Alignment)
}
