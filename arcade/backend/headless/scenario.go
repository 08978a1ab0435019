package headless

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/viper"

	"github.com/valerio/go-arcadehost/arcade/input/action"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/input/event"
)

// SurfaceHandle is the handle reported for the headless surface.
const SurfaceHandle = "headless"

// formatRGBA8888 is the pixel format reported for scripted surfaces.
const formatRGBA8888 = 1

var ErrInvalidScenario = errors.New("invalid scenario")

type rangeSpec struct {
	Axis int     `mapstructure:"axis"`
	Min  float32 `mapstructure:"min"`
	Max  float32 `mapstructure:"max"`
}

type deviceSpec struct {
	ID      int         `mapstructure:"id"`
	Name    string      `mapstructure:"name"`
	Sources []string    `mapstructure:"sources"`
	Axes    []rangeSpec `mapstructure:"axes"`
	// Hotplug devices are absent until an "added" step attaches them.
	Hotplug bool `mapstructure:"hotplug"`
}

type surfaceSpec struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	Format int `mapstructure:"format"`
}

type keySpec struct {
	Device int    `mapstructure:"device"`
	Source string `mapstructure:"source"`
	Code   int    `mapstructure:"code"`
	Down   bool   `mapstructure:"down"`
	Repeat int    `mapstructure:"repeat"`
	HeldMS int    `mapstructure:"held_ms"`
}

type axisValue struct {
	Axis  int     `mapstructure:"axis"`
	Value float32 `mapstructure:"value"`
}

type motionSpec struct {
	Device int         `mapstructure:"device"`
	Source string      `mapstructure:"source"`
	Axes   []axisValue `mapstructure:"axes"`
}

type deviceStep struct {
	Kind string `mapstructure:"kind"`
	ID   int    `mapstructure:"id"`
}

type stepSpec struct {
	Surface          *surfaceSpec `mapstructure:"surface"`
	Key              *keySpec     `mapstructure:"key"`
	Motion           *motionSpec  `mapstructure:"motion"`
	Device           *deviceStep  `mapstructure:"device"`
	SurfaceDestroyed bool         `mapstructure:"surface_destroyed"`
	Action           string       `mapstructure:"action"`
}

type scenarioFile struct {
	Devices []deviceSpec `mapstructure:"devices"`
	Steps   []stepSpec   `mapstructure:"steps"`
}

// Scenario is a scripted session: the devices present and the events the
// host reports, one per step.
type Scenario struct {
	Devices []device.Device
	Steps   []event.Event

	attached map[int]bool
}

// LoadScenario reads a scenario file in any format viper understands.
func LoadScenario(path string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	return decode(v)
}

// ParseScenario reads a scenario of the given format ("yaml", "json", "toml").
func ParseScenario(r io.Reader, format string) (*Scenario, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Scenario, error) {
	var f scenarioFile
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}

	s := &Scenario{attached: make(map[int]bool)}
	sources := make(map[int]device.Source)
	for _, ds := range f.Devices {
		src, err := device.ParseSources(ds.Sources)
		if err != nil {
			return nil, fmt.Errorf("%w: device %d: %w", ErrInvalidScenario, ds.ID, err)
		}
		d := device.Device{ID: ds.ID, Name: ds.Name, Sources: src}
		for _, r := range ds.Axes {
			d.MotionRanges = append(d.MotionRanges, device.MotionRange{Axis: r.Axis, Min: r.Min, Max: r.Max})
		}
		s.Devices = append(s.Devices, d)
		s.attached[d.ID] = !ds.Hotplug
		sources[d.ID] = src
	}

	for i, st := range f.Steps {
		ev, err := st.event(sources)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, i, err)
		}
		s.Steps = append(s.Steps, ev)
	}
	return s, nil
}

func (st stepSpec) event(sources map[int]device.Source) (event.Event, error) {
	var evs []event.Event

	if st.Surface != nil {
		format := st.Surface.Format
		if format == 0 {
			format = formatRGBA8888
		}
		evs = append(evs, event.Surface{Handle: SurfaceHandle, Format: format, Width: st.Surface.Width, Height: st.Surface.Height})
	}
	if st.Key != nil {
		src, err := sourceFor(st.Key.Source, st.Key.Device, sources)
		if err != nil {
			return nil, err
		}
		evs = append(evs, event.Key{
			DeviceID: st.Key.Device,
			Source:   src,
			Code:     st.Key.Code,
			Down:     st.Key.Down,
			Repeat:   st.Key.Repeat,
			Held:     time.Duration(st.Key.HeldMS) * time.Millisecond,
		})
	}
	if st.Motion != nil {
		src, err := sourceFor(st.Motion.Source, st.Motion.Device, sources)
		if err != nil {
			return nil, err
		}
		axes := make(map[int]float32, len(st.Motion.Axes))
		for _, a := range st.Motion.Axes {
			axes[a.Axis] = a.Value
		}
		evs = append(evs, event.Motion{DeviceID: st.Motion.Device, Source: src, Axes: axes})
	}
	if st.Device != nil {
		kind, ok := event.ParseDeviceKind(st.Device.Kind)
		if !ok {
			return nil, fmt.Errorf("unknown device change %q", st.Device.Kind)
		}
		evs = append(evs, event.Device{Kind: kind, ID: st.Device.ID})
	}
	if st.SurfaceDestroyed {
		evs = append(evs, event.SurfaceDestroyed{})
	}
	if st.Action != "" {
		act := action.Parse(st.Action)
		if act == action.None {
			return nil, fmt.Errorf("unknown action %q", st.Action)
		}
		evs = append(evs, event.Action{Action: act})
	}

	switch len(evs) {
	case 0:
		return nil, errors.New("empty step")
	case 1:
		return evs[0], nil
	default:
		return nil, fmt.Errorf("step has %d events, want 1", len(evs))
	}
}

// sourceFor uses an explicit source name, else the sources declared for
// the device.
func sourceFor(name string, id int, sources map[int]device.Source) (device.Source, error) {
	if name != "" {
		return device.ParseSource(name)
	}
	return sources[id], nil
}
