package action

// Action represents a host-level request that is not controller input
type Action int

const (
	None Action = iota

	// Menu
	MenuOpen
	MenuClose

	// Session control
	PauseToggle
	Quit
	Restart
	QuickLoad
	NextSaveSlot
	FastForwardToggle
	Reset
	ApplySettings
)

var names = map[Action]string{
	None:              "none",
	MenuOpen:          "menu-open",
	MenuClose:         "menu-close",
	PauseToggle:       "pause-toggle",
	Quit:              "quit",
	Restart:           "restart",
	QuickLoad:         "quick-load",
	NextSaveSlot:      "next-save-slot",
	FastForwardToggle: "fast-forward-toggle",
	Reset:             "reset",
	ApplySettings:     "apply-settings",
}

func (a Action) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return "unknown"
}

// Parse returns the action with the given name, or None.
func Parse(name string) Action {
	for a, n := range names {
		if n == name {
			return a
		}
	}
	return None
}
