package dspstage

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// Demodulator turns a complex IQ vector into a real audio vector.
type Demodulator interface {
	Name() string
	Demodulate(samples []complex128) []float64
}

// FMDemod recovers the instantaneous frequency of a phase-continuous FM
// signal by phase-differentiation between consecutive samples:
// arg(s[n] * conj(s[n-1])) / pi. An N-sample input yields N-1 output
// samples; output is bounded in [-1, 1] for unit-modulus, phase-continuous
// input.
type FMDemod struct{}

func (FMDemod) Name() string { return "FM" }

func (FMDemod) Demodulate(samples []complex128) []float64 {
	if len(samples) < 2 {
		return []float64{}
	}
	out := make([]float64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		out[i-1] = cmplx.Phase(samples[i]*cmplx.Conj(samples[i-1])) / math.Pi
	}
	return out
}

// amPeakHistory is how many of the most recent per-chunk peak magnitudes
// AMDemod averages over to normalize its output, per the chosen AGC-like
// behavior: smooth enough to ride out one quiet chunk, short enough to
// track a signal that's gradually strengthening or fading.
const amPeakHistory = 8

// AMDemod recovers an AM envelope by magnitude, normalized by the running
// mean of the last amPeakHistory per-chunk peak magnitudes so volume stays
// roughly constant as signal strength drifts. Output is always
// non-negative.
type AMDemod struct {
	peaks    [amPeakHistory]float64
	peakN    int
	peakNext int
}

func NewAMDemod() *AMDemod { return &AMDemod{} }

func (*AMDemod) Name() string { return "AM" }

func (d *AMDemod) Demodulate(samples []complex128) []float64 {
	out := make([]float64, len(samples))
	peak := 0.0
	for i, s := range samples {
		mag := cmplx.Abs(s)
		out[i] = mag
		if mag > peak {
			peak = mag
		}
	}

	d.peaks[d.peakNext] = peak
	d.peakNext = (d.peakNext + 1) % amPeakHistory
	if d.peakN < amPeakHistory {
		d.peakN++
	}

	var sum float64
	for i := range d.peakN {
		sum += d.peaks[i]
	}
	mean := sum / float64(d.peakN)
	if mean < volumeFloor {
		return out
	}
	for i := range out {
		out[i] /= mean
	}
	return out
}

// DemodManager is the fixed, well-formed FM/AM switch the spec's
// REDESIGN FLAGS call for: exactly two named entries, one direct Name
// method on whichever is currently selected, no reflective lookup and no
// duplicate registration.
//
// current is written by Select, which the op-pump goroutine calls through
// the owning param.Device cell, and read by Name and demodulate, which the
// DSP scheduler goroutine calls directly once per packet. The two
// goroutines share no other lock, so current needs one of its own.
type DemodManager struct {
	schemes map[string]Demodulator

	mu      sync.Mutex
	current Demodulator
}

// NewDemodManager builds a manager defaulting to FM.
func NewDemodManager() *DemodManager {
	m := &DemodManager{
		schemes: map[string]Demodulator{
			"FM": FMDemod{},
			"AM": NewAMDemod(),
		},
	}
	m.current = m.schemes["FM"]
	return m
}

// Select switches the active scheme by name. Unknown names are ignored,
// leaving the current scheme selected.
func (m *DemodManager) Select(name string) {
	if d, ok := m.schemes[name]; ok {
		m.mu.Lock()
		m.current = d
		m.mu.Unlock()
	}
}

// Name returns the active scheme's name, the single direct accessor the
// spec's REDESIGN FLAGS call for in place of the original's two
// inconsistent call sites.
func (m *DemodManager) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Name()
}

func (m *DemodManager) demodulate(samples []complex128) []float64 {
	m.mu.Lock()
	current := m.current
	m.mu.Unlock()
	return current.Demodulate(samples)
}

// DemodulateRF is a Worker stage (C->R): it changes the element type of
// data, so unlike the pass-through Window stages it must be driven as a
// Worker rather than a Window despite inspecting meta the way they do.
// When the chunk isn't squelched it replaces data with the active
// scheme's demodulated output and always records which scheme produced
// it; when squelched it emits an empty real vector so every downstream
// stage after this one can assume real data unconditionally.
type DemodulateRF struct {
	manager *DemodManager
}

func NewDemodulateRF(manager *DemodManager) *DemodulateRF {
	return &DemodulateRF{manager: manager}
}

func (*DemodulateRF) Name() string { return "demodulate_rf" }

func (d *DemodulateRF) Process(pkt *pipeline.Packet) (*pipeline.Packet, error) {
	pkt.Meta.SetDemodName(d.manager.Name())
	if pkt.Meta.Squelched() {
		pkt.Data = []float64{}
		return pkt, nil
	}
	samples := complexData("demodulate_rf", pkt)
	pkt.Data = d.manager.demodulate(samples)
	return pkt, nil
}
