package dspstage

import (
	"math"

	"github.com/n7cdr/pocketwave/internal/param"
	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// volumeFloor keeps AdjustVolume from dividing by a near-zero peak and
// blowing a quiet chunk up to full scale.
const volumeFloor = 1e-9

// AdjustVolume is a Worker stage (R->R): it normalizes a chunk to its own
// peak and rescales it to the volume cell's current setting, so a constant
// volume setting always means a constant perceived loudness regardless of
// the chunk's incoming amplitude.
type AdjustVolume struct {
	volume *param.Numeric
}

// NewAdjustVolume reads its target level from the given Numeric cell
// (expected range 0-100) on every packet.
func NewAdjustVolume(volume *param.Numeric) *AdjustVolume {
	return &AdjustVolume{volume: volume}
}

func (*AdjustVolume) Name() string { return "adjust_volume" }

func (a *AdjustVolume) Process(pkt *pipeline.Packet) (*pipeline.Packet, error) {
	in := realData("adjust_volume", pkt)
	if pkt.Meta.Squelched() {
		return pkt, nil
	}

	peak := 0.0
	for _, v := range in {
		if m := math.Abs(v); m > peak {
			peak = m
		}
	}
	if peak < volumeFloor {
		return pkt, nil
	}

	gain := (a.volume.Get() / 100) / peak
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = v * gain
	}
	pkt.Data = out
	return pkt, nil
}
