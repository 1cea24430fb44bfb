// Command pocketwave-ui is the UI process: it owns the GPIO buttons, the
// screen/menu controller, and the renderer, talking to the receiver
// process over stdin/stdout.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/n7cdr/pocketwave/internal/config"
	"github.com/n7cdr/pocketwave/internal/display"
	"github.com/n7cdr/pocketwave/internal/input"
	"github.com/n7cdr/pocketwave/internal/ipc"
	"github.com/n7cdr/pocketwave/internal/logging"
	"github.com/n7cdr/pocketwave/internal/ui/control"
	"github.com/n7cdr/pocketwave/internal/ui/render"
)

// frameInterval paces the renderer at the ~16 FPS the pull model targets.
const frameInterval = time.Second / 16

// gpioChip is the gpiochip device the handheld's buttons are wired to.
const gpioChip = "gpiochip0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pocketwave-ui:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("pocketwave-ui", pflag.ContinueOnError)
	flags, err := config.ParseFlags(fs, os.Args[1:])
	if err != nil {
		return err
	}
	logger := logging.New(logging.UI, logging.Options{Level: flags.LogLevel})

	opPub := ipc.NewOpPublisher(os.Stdout)
	defer opPub.Close()
	snapSub := ipc.NewSubscriber(os.Stdin)

	menu := buildSettingsMenu()
	controller := control.NewController(menu, remoteParams{pub: opPub}, noopPublisher{})
	renderer := render.NewRenderer()
	driver := display.NullDriver{}

	events := make(chan input.BtnEvent, 16)
	mgr := input.NewManager(gpioChip, func(evt input.BtnEvent) { events <- evt })
	if err := registerButtons(mgr); err != nil {
		return fmt.Errorf("registering gpio buttons: %w", err)
	}
	defer mgr.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	snapshots := make(chan ipc.UIState, 1)
	go pumpSnapshots(snapSub, snapshots)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down")
			return nil
		case evt := <-events:
			if err := controller.HandleEvent(evt); err != nil {
				logger.Error("handling button event", "event", evt, "err", err)
			}
		case s, ok := <-snapshots:
			if !ok {
				logger.Info("receiver closed snapshot stream, shutting down")
				return nil
			}
			controller.ReceiveSnapshot(s)
		case <-ticker.C:
			renderer.Draw(controller.Snapshot())
			if err := driver.Commit(renderer.Canvas()); err != nil {
				logger.Error("committing frame", "err", err)
			}
		}
	}
}

func pumpSnapshots(sub *ipc.Subscriber, out chan<- ipc.UIState) {
	defer close(out)
	for {
		s, err := sub.Next()
		if err != nil {
			return
		}
		out <- s
	}
}

func buildSettingsMenu() *control.Menu {
	options := []control.MenuOption{
		{Name: "Frequency", Action: control.Action{Screen: control.ScreenFreqTune}},
		{Name: "Squelch", Action: control.Action{Screen: control.ScreenSquelch}},
		{Name: "Volume", Action: control.Action{Screen: control.ScreenVolume}},
		{Name: "Bandwidth", Action: control.Action{Screen: control.ScreenBandwidth}},
		{Name: "Demodulator", Action: control.Action{Screen: control.ScreenDemod}},
	}
	return control.NewMenu(options, 3)
}

func registerButtons(mgr *input.Manager) error {
	regs := []input.Registration{
		{Pin: 5, Event: input.EventUp, Press: input.PressCascade, InitDelay: 400 * time.Millisecond, CascadeDelay: 120 * time.Millisecond},
		{Pin: 6, Event: input.EventDown, Press: input.PressCascade, InitDelay: 400 * time.Millisecond, CascadeDelay: 120 * time.Millisecond},
		{Pin: 13, Event: input.EventLeft, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
		{Pin: 19, Event: input.EventRight, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
		{Pin: 26, Event: input.EventOK, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
		{Pin: 21, Event: input.EventM1, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
		{Pin: 20, Event: input.EventM2, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
		{Pin: 16, Event: input.EventM3, Press: input.PressDown, DebounceTime: 20 * time.Millisecond},
	}
	for _, reg := range regs {
		if err := mgr.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

// remoteParams proxies RemoteParams calls across the IPC op channel.
type remoteParams struct {
	pub *ipc.OpPublisher
}

func (r remoteParams) StepUp(name string) error {
	return r.pub.Send(ipc.ParamOp{Name: name, Kind: ipc.OpStepUp})
}

func (r remoteParams) StepDown(name string) error {
	return r.pub.Send(ipc.ParamOp{Name: name, Kind: ipc.OpStepDown})
}

func (r remoteParams) CycleUp(name string) error {
	return r.pub.Send(ipc.ParamOp{Name: name, Kind: ipc.OpCycleUp})
}

func (r remoteParams) CycleDown(name string) error {
	return r.pub.Send(ipc.ParamOp{Name: name, Kind: ipc.OpCycleDown})
}

func (r remoteParams) SelectDemod(name, demod string) error {
	return r.pub.Send(ipc.ParamOp{Name: name, Kind: ipc.OpSelectDemod, Demod: demod})
}

// noopPublisher satisfies control.Controller's SnapshotPublisher: nothing
// in this process layout consumes the controller's publish besides the
// render loop, which reads Controller.Snapshot directly every frame
// rather than through the publish channel.
type noopPublisher struct{}

func (noopPublisher) Publish(ipc.UIState) error { return nil }
