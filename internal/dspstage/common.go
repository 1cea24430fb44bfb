// Package dspstage implements the concrete DSP stages that make up the
// receive chain: source, dB measurement, squelch, demodulation, IIR
// filtering, resampling, rechunking, volume, and reshaping. Each stage
// implements one of the pipeline package's stage-role interfaces.
package dspstage

import (
	"fmt"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// complexData type-asserts pkt's payload as a complex sample vector,
// panicking with a descriptive message if some upstream stage handed this
// one the wrong element type -- a mismatch here is a wiring bug, not a
// runtime condition any stage should try to recover from.
func complexData(stage string, pkt *pipeline.Packet) []complex128 {
	d, ok := pkt.Data.([]complex128)
	if !ok {
		panic(fmt.Sprintf("dspstage: %s expected []complex128 data, got %T", stage, pkt.Data))
	}
	return d
}

func realData(stage string, pkt *pipeline.Packet) []float64 {
	d, ok := pkt.Data.([]float64)
	if !ok {
		panic(fmt.Sprintf("dspstage: %s expected []float64 data, got %T", stage, pkt.Data))
	}
	return d
}
