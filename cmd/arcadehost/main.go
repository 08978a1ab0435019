package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/valerio/go-arcadehost/arcade"
	"github.com/valerio/go-arcadehost/arcade/backend"
	"github.com/valerio/go-arcadehost/arcade/backend/headless"
	"github.com/valerio/go-arcadehost/arcade/backend/pads"
	"github.com/valerio/go-arcadehost/arcade/backend/terminal"
	"github.com/valerio/go-arcadehost/arcade/backend/usb"
	"github.com/valerio/go-arcadehost/arcade/config"
	"github.com/valerio/go-arcadehost/arcade/input"
	"github.com/valerio/go-arcadehost/arcade/input/device"
	"github.com/valerio/go-arcadehost/arcade/probe"
	"github.com/valerio/go-arcadehost/arcade/runtime"
	"github.com/valerio/go-arcadehost/arcade/session"
	"github.com/valerio/go-arcadehost/arcade/timing"
)

const (
	padPollInterval = time.Second / 250
	padScanInterval = 2 * time.Second
	usbPollInterval = 500 * time.Millisecond
)

func main() {
	app := cli.NewApp()
	app.Name = "arcadehost"
	app.Description = "Input mapping and session host for an emulation runtime"
	app.Usage = "arcadehost [options] [boot path]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to the settings file (yaml, json or toml); watched for changes",
		},
		cli.StringFlag{
			Name:  "scenario",
			Usage: "Replay a scripted scenario instead of reading the terminal",
		},
		cli.BoolFlag{
			Name:  "terminal",
			Usage: "Use the terminal keyboard as a virtual gamepad",
		},
		cli.BoolFlag{
			Name:  "evdev",
			Usage: "Read physical game controllers from /dev/input (linux)",
		},
		cli.BoolFlag{
			Name:  "usb",
			Usage: "Rescan for controllers as soon as the USB bus changes (needs --evdev and a -tags usb build)",
		},
		cli.StringFlag{
			Name:  "probe-addr",
			Usage: "Mirror controller state to websocket clients at this address (e.g. localhost:8765)",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "Path to boot; empty boots the BIOS",
		},
		cli.BoolFlag{
			Name:  "resume",
			Usage: "Resume from the saved resume state",
		},
		cli.StringFlag{
			Name:  "save-state",
			Usage: "Save state file to load on boot",
		},
		cli.BoolFlag{
			Name:  "attract",
			Usage: "Attract mode: any key press quits",
		},
		cli.IntFlag{
			Name:  "poll-rate",
			Usage: "Terminal polls per second",
			Value: timing.DefaultPollRate,
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = runHost

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running host", "error", err)
		os.Exit(1)
	}
}

func runHost(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	scenarioPath := c.String("scenario")
	if scenarioPath == "" && !c.Bool("terminal") {
		cli.ShowAppHelp(c)
		return errors.New("either --scenario or --terminal is required")
	}
	if scenarioPath != "" && c.Bool("terminal") {
		return errors.New("--scenario and --terminal are mutually exclusive")
	}

	bootPath := c.String("boot")
	if bootPath == "" && c.NArg() > 0 {
		bootPath = c.Args().Get(0)
	}

	loader, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	settings, err := loader.Settings()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := runtime.NewLoopback()
	opts := arcade.Options{
		Runtime:  rt,
		Settings: settings,
		Boot: session.BootParams{
			Path:          bootPath,
			ResumeState:   c.Bool("resume"),
			SaveStatePath: c.String("save-state"),
		},
		Attract: c.Bool("attract"),
		Debug:   c.Bool("debug"),
	}

	var b backend.Backend
	if scenarioPath != "" {
		s, err := headless.LoadScenario(scenarioPath)
		if err != nil {
			return err
		}
		b = headless.New(s)
	} else {
		b = terminal.New()
		opts.Limiter = timing.NewTickerLimiter(timing.PollInterval(c.Int("poll-rate")))
		opts.Debounce = input.DefaultDebounce
	}

	if addr := c.String("probe-addr"); addr != "" {
		hub := probe.NewHub()
		go hub.Run(ctx)
		sink := probe.NewSink(rt, hub)
		opts.Sink = sink
		go func() {
			if err := probe.Serve(ctx, addr, hub, sink); err != nil {
				slog.Error("Probe stopped", "addr", addr, "error", err)
			}
		}()
	}

	if c.Bool("usb") && !c.Bool("evdev") {
		return errors.New("--usb needs --evdev")
	}
	if c.Bool("evdev") {
		reader := pads.New()
		if _, err := reader.Scan(); err != nil {
			slog.Warn("Gamepads unavailable", "error", err)
		}
		devices, _ := reader.Devices()
		slog.Info("Gamepads found", "count", len(devices))
		opts.Catalogs = []device.Catalog{reader}
		opts.Events = reader.Run(ctx, padPollInterval, padScanInterval)

		if c.Bool("usb") {
			watchUSB(ctx, reader)
		}
	}

	host := arcade.New(opts)
	rt.StoppedFunc = host.RuntimeStopped
	loader.Watch(func(s config.Settings) {
		host.Post(func() { host.ApplyConfig(s) })
	})

	if err := host.Run(ctx, b); err != nil {
		return fmt.Errorf("running session: %w", err)
	}
	slog.Info("Session finished", "runtime", rt.Status())
	return nil
}

// watchUSB rescans for gamepads whenever a USB controller comes or goes, so
// new pads are picked up without waiting for the next periodic scan.
func watchUSB(ctx context.Context, reader *pads.Reader) {
	cat := usb.NewCatalog()
	if _, err := cat.Devices(); err != nil {
		slog.Warn("USB hot-plug unavailable", "error", err)
		return
	}
	go func() {
		for ev := range cat.Watch(ctx, usbPollInterval) {
			slog.Debug("USB controller change", "kind", ev.Kind, "id", ev.ID)
			reader.Rescan()
		}
	}()
}
