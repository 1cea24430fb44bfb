package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/n7cdr/pocketwave/internal/ipc"
	"github.com/n7cdr/pocketwave/internal/ui/render"
)

func TestDrawFreqTuneDoesNotPanic(t *testing.T) {
	r := render.NewRenderer()
	assert.NotPanics(t, func() {
		r.Draw(ipc.UIState{
			Screen:         ipc.ScreenFreqTune,
			CenterFreq:     88_300_000,
			FTuneCursorPos: 5,
			DB:             -20,
			DemodName:      "FM",
		})
	})
}

func TestDrawEachScreenDoesNotPanic(t *testing.T) {
	r := render.NewRenderer()
	screens := []ipc.Screen{
		ipc.ScreenFreqTune, ipc.ScreenSquelch, ipc.ScreenVolume,
		ipc.ScreenBandwidth, ipc.ScreenDemod, ipc.ScreenSettings,
	}
	for _, s := range screens {
		assert.NotPanics(t, func() {
			r.Draw(ipc.UIState{Screen: s})
		})
	}
}
