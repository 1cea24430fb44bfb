package dspstage

import (
	"math"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// Downsample is a Worker stage (R->R) that resamples from fromRate to
// toRate by linear interpolation over the input vector. Output length is
// round(len(input) * toRate / fromRate), matching the spec's length
// contract regardless of the interpolation method used to get there.
type Downsample struct {
	fromRate float64
	toRate   float64
}

func NewDownsample(fromRate, toRate float64) *Downsample {
	return &Downsample{fromRate: fromRate, toRate: toRate}
}

func (*Downsample) Name() string { return "downsample" }

func (d *Downsample) Process(pkt *pipeline.Packet) (*pipeline.Packet, error) {
	in := realData("downsample", pkt)
	outLen := int(math.Round(float64(len(in)) * d.toRate / d.fromRate))
	if outLen < 0 {
		outLen = 0
	}
	out := make([]float64, outLen)

	if len(in) == 0 || outLen == 0 {
		pkt.Data = out
		return pkt, nil
	}
	if outLen == 1 {
		out[0] = in[0]
		pkt.Data = out
		return pkt, nil
	}

	step := float64(len(in)-1) / float64(outLen-1)
	for i := range out {
		pos := step * float64(i)
		lo := int(pos)
		if lo >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = in[lo]*(1-frac) + in[lo+1]*frac
	}

	pkt.Data = out
	return pkt, nil
}
