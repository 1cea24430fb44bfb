package dspstage

import (
	"math"
	"math/cmplx"
	"slices"
	"sync"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// DesignButterworthLowpass computes the (b, a) direct-form coefficients of
// an order-N Butterworth low-pass filter with cutoff cutoffHz at sample
// rate sampleHz, via the standard analog-prototype + bilinear-transform
// recipe (matching what scipy.signal.butter does, which is what this
// receiver's reference implementation calls to build its anti-alias
// filter). b and a each have length N+1 with a[0] == 1, in the usual
// ascending-z^-1 convention:
//
//	H(z) = (b[0] + b[1] z^-1 + ... + b[N] z^-N) / (1 + a[1] z^-1 + ... + a[N] z^-N)
func DesignButterworthLowpass(order int, cutoffHz, sampleHz float64) (b, a []float64) {
	// Prewarp the desired digital cutoff to the analog frequency whose
	// bilinear transform lands exactly on cutoffHz.
	warped := 2 * sampleHz * math.Tan(math.Pi*cutoffHz/sampleHz)

	// Stable (left-half-plane) analog Butterworth poles on a circle of
	// radius `warped`.
	poles := make([]complex128, order)
	for k := range order {
		theta := math.Pi * float64(2*k+order+1) / float64(2*order)
		poles[k] = complex(warped, 0) * cmplx.Exp(complex(0, theta))
	}

	// Bilinear-transform each analog pole to the unit circle.
	fs2 := complex(2*sampleHz, 0)
	digitalPoles := make([]complex128, order)
	for i, p := range poles {
		digitalPoles[i] = (fs2 + p) / (fs2 - p)
	}

	// The analog prototype has all its zeros at infinity; the bilinear
	// transform maps each to z = -1, giving a numerator of (z+1)^N.
	denomPoly := polyFromRoots(digitalPoles)
	numPoly := polyFromRoots(slices.Repeat([]complex128{-1}, order))

	// Normalize so the digital filter has unity gain at DC (z = 1).
	gain := polyEval(denomPoly, 1) / polyEval(numPoly, 1)

	b = make([]float64, order+1)
	a = make([]float64, order+1)
	for i := range b {
		b[i] = real(numPoly[i] * gain)
		a[i] = real(denomPoly[i])
	}
	return b, a
}

// polyFromRoots expands prod(z - r) for r in roots into coefficients
// ordered from z^N down to z^0.
func polyFromRoots(roots []complex128) []complex128 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}

// polyEval evaluates a polynomial given in descending-power order (as
// produced by polyFromRoots) at z.
func polyEval(coeffs []complex128, z complex128) complex128 {
	var acc complex128
	for _, c := range coeffs {
		acc = acc*z + c
	}
	return acc
}

// Filter is a Worker stage (R->R): a direct-form-II-transposed IIR filter
// applying (b, a) coefficients to real samples. It keeps its state vector
// across packets within one coefficient epoch but resets it the instant the
// coefficients change, so a mid-stream bandwidth change can never leak
// stale state into the new filter the way a naively-recreated-per-chunk
// filter would either lose continuity or silently keep garbage state.
//
// SetCoefficients is called from the lifecycle layer's bandwidth-retune
// goroutine, concurrently with Process running on the DSP scheduler
// goroutine, so both access b/a/z under mu.
type Filter struct {
	mu   sync.Mutex
	b, a []float64
	z    []float64 // transposed direct-form-II state, len(b)-1
}

// NewFilter builds a Filter from the given coefficients. len(b) must equal
// len(a); a[0] is expected to be 1 (as DesignButterworthLowpass produces).
func NewFilter(b, a []float64) *Filter {
	f := &Filter{}
	f.SetCoefficients(b, a)
	return f
}

// SetCoefficients installs new filter coefficients and resets internal
// state, matching the spec's requirement that a coefficient change never
// leaves stale state from the old filter in play.
func (f *Filter) SetCoefficients(b, a []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.b = append([]float64(nil), b...)
	f.a = append([]float64(nil), a...)
	f.z = make([]float64, max(len(b), len(a))-1)
}

func (*Filter) Name() string { return "filter" }

func (f *Filter) Process(pkt *pipeline.Packet) (*pipeline.Packet, error) {
	if pkt.Meta.Squelched() {
		return pkt, nil
	}
	in := realData("filter", pkt)
	out := make([]float64, len(in))

	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.z)

	for i, x := range in {
		y := f.b[0]*x + zOrZero(f.z, 0)
		for j := 0; j < n-1; j++ {
			f.z[j] = f.b[j+1]*x + f.z[j+1] - f.a[j+1]*y
		}
		if n > 0 {
			f.z[n-1] = f.b[n]*x - f.a[n]*y
		}
		out[i] = y
	}

	pkt.Data = out
	return pkt, nil
}

func zOrZero(z []float64, i int) float64 {
	if i < len(z) {
		return z[i]
	}
	return 0
}
