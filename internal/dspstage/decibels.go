package dspstage

import (
	"math"
	"math/cmplx"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// dbFloor is substituted for the magnitude-zero case instead of -Inf, so a
// chunk of silence can't poison a downstream running average with NaN or
// -Inf once averaged with a finite reading.
const dbFloor = -200.0

// CalcDecibels is a Window stage (C->C): it measures signal strength and
// records it as meta["dB"], leaving data untouched.
type CalcDecibels struct{}

func (CalcDecibels) Name() string { return "calc_decibels" }

func (CalcDecibels) Inspect(pkt *pipeline.Packet) error {
	samples := complexData("calc_decibels", pkt)
	if len(samples) == 0 {
		pkt.Meta.SetDB(dbFloor)
		return nil
	}

	var sum float64
	for _, s := range samples {
		mag := cmplx.Abs(s)
		if mag == 0 {
			sum += dbFloor
			continue
		}
		sum += 20 * math.Log10(mag)
	}
	pkt.Meta.SetDB(sum / float64(len(samples)))
	return nil
}
