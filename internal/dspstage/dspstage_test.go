package dspstage

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/n7cdr/pocketwave/internal/audiobridge"
	"github.com/n7cdr/pocketwave/internal/param"
	"github.com/n7cdr/pocketwave/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCalcDecibelsFloorsZeroMagnitude(t *testing.T) {
	pkt := &pipeline.Packet{Data: []complex128{0, 0, 0}, Meta: pipeline.NewMeta()}
	require.NoError(t, CalcDecibels{}.Inspect(pkt))
	db, ok := pkt.Meta.DB()
	require.True(t, ok)
	assert.Equal(t, dbFloor, db)
}

func TestApplySquelchZeroesBelowThreshold(t *testing.T) {
	squelch := param.NewNumeric(-50, -100, 0, nil)
	s := NewApplySquelch(squelch)

	pkt := &pipeline.Packet{Data: []complex128{1, 2, 3}, Meta: pipeline.NewMeta()}
	pkt.Meta.SetDB(-60)
	require.NoError(t, s.Inspect(pkt))
	assert.True(t, pkt.Meta.Squelched())
	for _, v := range pkt.Data.([]complex128) {
		assert.Equal(t, complex128(0), v)
	}
}

func TestApplySquelchPassesAboveThreshold(t *testing.T) {
	squelch := param.NewNumeric(-50, -100, 0, nil)
	s := NewApplySquelch(squelch)

	pkt := &pipeline.Packet{Data: []complex128{1, 2, 3}, Meta: pipeline.NewMeta()}
	pkt.Meta.SetDB(-10)
	require.NoError(t, s.Inspect(pkt))
	assert.False(t, pkt.Meta.Squelched())
	assert.Equal(t, []complex128{1, 2, 3}, pkt.Data)
}

func TestApplySquelchIdempotentAtBoundary(t *testing.T) {
	squelch := param.NewNumeric(-50, -100, 0, nil)
	s := NewApplySquelch(squelch)

	pkt := &pipeline.Packet{Data: []complex128{1, 2, 3}, Meta: pipeline.NewMeta()}
	pkt.Meta.SetDB(-50)
	require.NoError(t, s.Inspect(pkt))
	assert.True(t, pkt.Meta.Squelched())

	require.NoError(t, s.Inspect(pkt))
	assert.True(t, pkt.Meta.Squelched())
}

func TestFMDemodOutputLengthAndBounds(t *testing.T) {
	n := 64
	samples := make([]complex128, n)
	phase := 0.0
	for i := range samples {
		phase += 0.1
		samples[i] = cmplx.Rect(1, phase)
	}
	out := FMDemod{}.Demodulate(samples)
	require.Len(t, out, n-1)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestFMDemodLengthOneInputYieldsEmpty(t *testing.T) {
	out := FMDemod{}.Demodulate([]complex128{1})
	assert.Len(t, out, 0)
}

func TestAMDemodNonNegative(t *testing.T) {
	d := NewAMDemod()
	samples := []complex128{complex(3, 4), complex(-1, -1), 0}
	out := d.Demodulate(samples)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestDemodManagerDefaultsToFMAndSwitches(t *testing.T) {
	m := NewDemodManager()
	assert.Equal(t, "FM", m.Name())
	m.Select("AM")
	assert.Equal(t, "AM", m.Name())
	m.Select("bogus")
	assert.Equal(t, "AM", m.Name())
}

func TestRechunkArrayPreservesBlockCountAndLength(t *testing.T) {
	r := NewRechunkArray(4)
	pkt := &pipeline.Packet{Data: make([]float64, 10), Meta: pipeline.NewMeta()}
	out, err := r.Process(pkt)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, p := range out {
		assert.Len(t, p.Data, 4)
	}

	pkt2 := &pipeline.Packet{Data: make([]float64, 2), Meta: pipeline.NewMeta()}
	out2, err := r.Process(pkt2)
	require.NoError(t, err)
	require.Len(t, out2, 1)
	assert.Len(t, out2[0].Data, 4)
}

func TestRechunkArrayBlockSizeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		blockSize := rapid.IntRange(1, 16).Draw(rt, "blockSize")
		r := NewRechunkArray(blockSize)

		total := 0
		nInputs := rapid.IntRange(1, 10).Draw(rt, "nInputs")
		var blocksOut int
		for i := 0; i < nInputs; i++ {
			n := rapid.IntRange(0, 20).Draw(rt, "n")
			total += n
			pkt := &pipeline.Packet{Data: make([]float64, n), Meta: pipeline.NewMeta()}
			out, err := r.Process(pkt)
			if err != nil {
				rt.Fatal(err)
			}
			for _, p := range out {
				if len(p.Data.([]float64)) != blockSize {
					rt.Fatalf("block length %d != blockSize %d", len(p.Data.([]float64)), blockSize)
				}
			}
			blocksOut += len(out)
		}
		if blocksOut > total/blockSize+1 {
			rt.Fatalf("emitted more blocks (%d) than input could support", blocksOut)
		}
	})
}

func TestAdjustVolumeScalesToPeak(t *testing.T) {
	vol := param.NewNumeric(50, 0, 100, nil)
	av := NewAdjustVolume(vol)
	pkt := &pipeline.Packet{Data: []float64{0.5, -1.0, 0.25}, Meta: pipeline.NewMeta()}
	out, err := av.Process(pkt)
	require.NoError(t, err)
	data := out.Data.([]float64)
	peak := 0.0
	for _, v := range data {
		if math.Abs(v) > peak {
			peak = math.Abs(v)
		}
	}
	assert.InDelta(t, 0.5, peak, 1e-9)
}

func TestAdjustVolumeSkipsSquelched(t *testing.T) {
	vol := param.NewNumeric(50, 0, 100, nil)
	av := NewAdjustVolume(vol)
	pkt := &pipeline.Packet{Data: []float64{0.5, -1.0}, Meta: pipeline.NewMeta()}
	pkt.Meta.SetSquelched(true)
	out, err := av.Process(pkt)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, -1.0}, out.Data)
}

func TestDownsampleIdentityAtEqualRates(t *testing.T) {
	d := NewDownsample(48000, 48000)
	in := []float64{1, 2, 3, 4, 5}
	pkt := &pipeline.Packet{Data: in, Meta: pipeline.NewMeta()}
	out, err := d.Process(pkt)
	require.NoError(t, err)
	assert.Equal(t, in, out.Data)
}

func TestDownsampleOutputLength(t *testing.T) {
	d := NewDownsample(48000, 8000)
	in := make([]float64, 480)
	pkt := &pipeline.Packet{Data: in, Meta: pipeline.NewMeta()}
	out, err := d.Process(pkt)
	require.NoError(t, err)
	assert.Len(t, out.Data, 80)
}

func TestFilterResetsStateOnCoefficientChange(t *testing.T) {
	b, a := DesignButterworthLowpass(2, 3000, 48000)
	f := NewFilter(b, a)
	pkt := &pipeline.Packet{Data: []float64{1, 1, 1, 1}, Meta: pipeline.NewMeta()}
	_, err := f.Process(pkt)
	require.NoError(t, err)

	b2, a2 := DesignButterworthLowpass(2, 6000, 48000)
	f.SetCoefficients(b2, a2)
	for _, v := range f.z {
		assert.Equal(t, 0.0, v)
	}
}

func TestFilterSkipsSquelchedPackets(t *testing.T) {
	b, a := DesignButterworthLowpass(2, 3000, 48000)
	f := NewFilter(b, a)
	in := []float64{1, 2, 3}
	pkt := &pipeline.Packet{Data: in, Meta: pipeline.NewMeta()}
	pkt.Meta.SetSquelched(true)
	out, err := f.Process(pkt)
	require.NoError(t, err)
	assert.Equal(t, in, out.Data)
}

func TestReshapeArrayIsIdentityOnContent(t *testing.T) {
	in := []float64{1, 2, 3}
	pkt := &pipeline.Packet{Data: append([]float64(nil), in...), Meta: pipeline.NewMeta()}
	out, err := ReshapeArray{}.Process(pkt)
	require.NoError(t, err)
	assert.Equal(t, in, []float64(out.Data.(audiobridge.AudioFrame)))
}
