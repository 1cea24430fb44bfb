// Package render implements the UI renderer: a pull-model task that reads
// the current snapshot once per frame and draws the widget set for its
// screen onto a display.Canvas.
package render

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"

	"github.com/n7cdr/pocketwave/internal/display"
	"github.com/n7cdr/pocketwave/internal/ipc"
)

// Squelch meter bounds, per the default parameter set.
const (
	SquelchMeterMin = -40.0
	SquelchMeterMax = 2.0
)

// Renderer draws one ipc.UIState snapshot per frame onto a Canvas.
type Renderer struct {
	canvas *display.Canvas
}

// NewRenderer builds a renderer over a fresh canvas.
func NewRenderer() *Renderer {
	return &Renderer{canvas: display.NewCanvas()}
}

// Canvas exposes the underlying canvas for the display driver to commit.
func (r *Renderer) Canvas() *display.Canvas { return r.canvas }

// Draw clears the canvas and renders the widget set for state.Screen.
func (r *Renderer) Draw(state ipc.UIState) {
	r.canvas.Clear()
	switch state.Screen {
	case ipc.ScreenFreqTune:
		r.drawFreqTune(state)
	case ipc.ScreenSquelch:
		r.drawMeterScreen(state.DB, "SQ", state.Squelch, SquelchMeterMin, SquelchMeterMax, state.SquelchCursorPos)
	case ipc.ScreenVolume:
		r.drawMeterScreen(state.Volume, "VOL", state.Volume, 0, 100, state.VolCursorPos)
	case ipc.ScreenBandwidth:
		r.drawMeterScreen(state.Bandwidth, "BW", state.Bandwidth, 1000, 250000, state.BWCursorPos)
	case ipc.ScreenDemod:
		r.canvas.Text(40, 28, state.DemodName)
	case ipc.ScreenSettings:
		r.drawSettings(state)
	}
}

func (r *Renderer) drawFreqTune(state ipc.UIState) {
	mhz := fmt.Sprintf("%07.4f", state.CenterFreq/1e6)
	w, _ := display.TextBBox(mhz)
	x := (display.Width - w) / 2
	r.canvas.Text(x, 20, mhz)

	cursorX := x + display.DigitCursorX(mhz, state.FTuneCursorPos)
	r.canvas.Line(cursorX, 30, cursorX+5, 30)

	dbText := fmt.Sprintf("%4.0f dB", state.DB)
	dw, _ := display.TextBBox(dbText)
	r.canvas.Text(display.Width-dw-2, 2, dbText)

	runtime := time.Since(time.Unix(state.StartTimeUnix, 0))
	elapsed, err := strftime.Format("%H:%M:%S", time.Unix(0, 0).UTC().Add(runtime))
	if err == nil {
		r.canvas.Text(2, 2, elapsed)
	}
	r.canvas.Text(2, 54, state.DemodName)
}

func (r *Renderer) drawMeterScreen(meterLevel float64, label string, value, lo, hi float64, cursorPos int) {
	r.canvas.Text(2, 2, label)
	r.canvas.Rectangle(10, 20, 118, 28, false)
	frac := (meterLevel - lo) / (hi - lo)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	fillW := int(frac * 106)
	r.canvas.Rectangle(11, 21, 11+fillW, 27, true)

	valText := fmt.Sprintf("%6.1f", value)
	r.canvas.Text(10, 40, valText)
	cursorX := 10 + display.DigitCursorX(valText, cursorPos)
	r.canvas.Line(cursorX, 50, cursorX+5, 50)
}

func (r *Renderer) drawSettings(state ipc.UIState) {
	y := 4
	for i, item := range state.SettingsMenu.Items {
		prefix := "  "
		if i == state.SettingsMenu.CursorPos {
			prefix = "> "
		}
		r.canvas.Text(2, y, prefix+item.Label)
		y += 10
	}
}
