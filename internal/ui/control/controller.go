package control

import (
	"github.com/n7cdr/pocketwave/internal/input"
	"github.com/n7cdr/pocketwave/internal/ipc"
)

// RemoteParams is the UI process's proxy onto the receiver process's
// param.Store: every mutation crosses the process boundary as a ParamOp
// instead of touching a cell directly, since the cells live next to the
// DSP graph that reads them.
type RemoteParams interface {
	StepUp(name string) error
	StepDown(name string) error
	CycleUp(name string) error
	CycleDown(name string) error
	SelectDemod(name, demod string) error
}

// SnapshotPublisher is the controller's outbound half of the IPC fabric
// to the renderer: one whole-snapshot object per publish, never a
// field-wise mutation, so the renderer always sees a consistent frame.
type SnapshotPublisher interface {
	Publish(ipc.UIState) error
}

// Controller owns the current screen, the settings menu, and the last
// snapshot received from the receiver process (cf/squelch/vol/dB/demod
// values it doesn't own but needs to display and bounds-check cursors
// against). It dispatches every incoming BtnEvent based on the current
// screen and publishes an updated snapshot after each one it handles.
type Controller struct {
	screen Screen
	menu   *Menu
	params RemoteParams
	pub    SnapshotPublisher

	ftuneCursor   int
	squelchCursor int
	volCursor     int
	bwCursor      int

	last ipc.UIState
}

// NewController builds a controller starting on FREQTUNE, publishing
// snapshots via pub and mutations via params.
func NewController(menu *Menu, params RemoteParams, pub SnapshotPublisher) *Controller {
	return &Controller{screen: ScreenFreqTune, menu: menu, params: params, pub: pub}
}

// ReceiveSnapshot updates the controller's view of receiver-owned values
// (cf, bw, squelch, vol, dB, demod_name), called whenever the receiver
// publishes one. It does not touch screen/cursor/menu state, which the
// controller alone owns.
func (c *Controller) ReceiveSnapshot(s ipc.UIState) {
	c.last = s
}

// HandleEvent dispatches evt to the handler for the current screen, then
// publishes the resulting snapshot.
func (c *Controller) HandleEvent(evt input.BtnEvent) error {
	var err error
	switch c.screen {
	case ScreenFreqTune:
		err = c.handleFreqTune(evt)
	case ScreenSettings:
		err = c.handleSettings(evt)
	case ScreenSquelch:
		err = c.handleSquelch(evt)
	case ScreenVolume:
		err = c.handleVolume(evt)
	case ScreenDemod:
		err = c.handleDemod(evt)
	case ScreenBandwidth:
		err = c.handleBandwidth(evt)
	}
	if err != nil {
		return err
	}
	return c.publish()
}

func (c *Controller) publish() error {
	return c.pub.Publish(c.Snapshot())
}

// Snapshot returns the controller's current merged view: the receiver-
// owned values from the last ReceiveSnapshot plus the screen/cursor/menu
// state the controller alone owns. The UI process's render loop reads
// this directly instead of the raw, receiver-only snapshot stream, since
// a screen change must be visible on the very next frame, not only after
// the next receiver publish.
func (c *Controller) Snapshot() ipc.UIState {
	snap := c.last
	snap.Screen = ipc.Screen(c.screen)
	snap.FTuneCursorPos = c.ftuneCursor
	snap.SquelchCursorPos = c.squelchCursor
	snap.VolCursorPos = c.volCursor
	snap.BWCursorPos = c.bwCursor
	snap.SettingsMenu = ipc.Menu{CursorPos: c.menu.Selected}
	for _, opt := range c.menu.Options {
		snap.SettingsMenu.Items = append(snap.SettingsMenu.Items, ipc.MenuItem{Label: opt.Name})
	}
	return snap
}

func (c *Controller) handleFreqTune(evt input.BtnEvent) error {
	switch evt {
	case input.EventUp:
		return c.params.StepUp("sdr_cf")
	case input.EventDown:
		return c.params.StepDown("sdr_cf")
	case input.EventLeft:
		c.ftuneCursor = ((c.ftuneCursor-1)%FreqTuneCursorModulus + FreqTuneCursorModulus) % FreqTuneCursorModulus
		return c.params.CycleDown("sdr_cf")
	case input.EventRight:
		c.ftuneCursor = (c.ftuneCursor + 1) % FreqTuneCursorModulus
		return c.params.CycleUp("sdr_cf")
	case input.EventM1:
		c.screen = ScreenSettings
	}
	return nil
}

func (c *Controller) handleSquelch(evt input.BtnEvent) error {
	switch evt {
	case input.EventUp:
		return c.params.StepUp("sdr_squelch")
	case input.EventDown:
		return c.params.StepDown("sdr_squelch")
	case input.EventLeft:
		c.squelchCursor = ((c.squelchCursor-1)%SquelchCursorModulus + SquelchCursorModulus) % SquelchCursorModulus
		return c.params.CycleDown("sdr_squelch")
	case input.EventRight:
		c.squelchCursor = (c.squelchCursor + 1) % SquelchCursorModulus
		return c.params.CycleUp("sdr_squelch")
	case input.EventM1:
		c.screen = ScreenSettings
	}
	return nil
}

func (c *Controller) handleVolume(evt input.BtnEvent) error {
	switch evt {
	case input.EventUp:
		return c.params.StepUp("spkr_volume")
	case input.EventDown:
		return c.params.StepDown("spkr_volume")
	case input.EventLeft:
		c.volCursor = ((c.volCursor-1)%VolumeCursorModulus + VolumeCursorModulus) % VolumeCursorModulus
		return c.params.CycleDown("spkr_volume")
	case input.EventRight:
		c.volCursor = (c.volCursor + 1) % VolumeCursorModulus
		return c.params.CycleUp("spkr_volume")
	case input.EventM1:
		c.screen = ScreenSettings
	}
	return nil
}

func (c *Controller) handleBandwidth(evt input.BtnEvent) error {
	switch evt {
	case input.EventUp:
		return c.params.StepUp("sdr_dig_bw")
	case input.EventDown:
		return c.params.StepDown("sdr_dig_bw")
	case input.EventLeft:
		c.bwCursor = ((c.bwCursor-1)%BandwidthCursorModulus + BandwidthCursorModulus) % BandwidthCursorModulus
		return c.params.CycleDown("sdr_dig_bw")
	case input.EventRight:
		c.bwCursor = (c.bwCursor + 1) % BandwidthCursorModulus
		return c.params.CycleUp("sdr_dig_bw")
	case input.EventM1:
		c.screen = ScreenSettings
	}
	return nil
}

func (c *Controller) handleDemod(evt input.BtnEvent) error {
	switch evt {
	case input.EventUp, input.EventDown:
		next := "AM"
		if c.last.DemodName == "AM" {
			next = "FM"
		}
		return c.params.SelectDemod("demod_manager", next)
	case input.EventM1:
		c.screen = ScreenSettings
	}
	return nil
}

func (c *Controller) handleSettings(evt input.BtnEvent) error {
	switch evt {
	case input.EventDown:
		c.menu.ScrollDown()
	case input.EventUp:
		c.menu.ScrollUp()
	case input.EventOK:
		action := c.menu.Select()
		if action.Run != nil {
			action.Run()
		} else if action.Screen != "" {
			c.screen = action.Screen
		}
	}
	return nil
}
