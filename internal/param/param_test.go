package param_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/n7cdr/pocketwave/internal/param"
)

func TestNumericClampsOnSet(t *testing.T) {
	n := param.NewNumeric(0, -40, 2, []float64{0.01, 0.1, 1, 10})

	n.Set(-100)
	assert.Equal(t, -40.0, n.Get())

	n.Set(100)
	assert.Equal(t, 2.0, n.Get())

	n.Set(-20)
	assert.Equal(t, -20.0, n.Get())
}

func TestNumericStepClampsAtBoundary(t *testing.T) {
	n := param.NewNumeric(-40, -40, 2, []float64{1})
	n.Step(param.Down)
	assert.Equal(t, -40.0, n.Get(), "stepping below min stays at min")
}

func TestCycleStepSizeWrapsBothDirections(t *testing.T) {
	n := param.NewNumeric(0, -40, 2, []float64{0.01, 0.1, 1, 10})

	require.Equal(t, 0.01, n.StepSize())

	n.CycleStepSize(param.Down)
	assert.Equal(t, 10.0, n.StepSize(), "cycling down from index 0 wraps to the last step")

	n.CycleStepSize(param.Up)
	assert.Equal(t, 0.01, n.StepSize())
}

func TestDeviceSerializesAccess(t *testing.T) {
	type counter struct{ n int }
	c := &counter{}
	d := param.NewDevice(c)

	done := make(chan struct{})
	for range 100 {
		go func() {
			d.Do(func(v any) { v.(*counter).n++ })
			done <- struct{}{}
		}()
	}
	for range 100 {
		<-done
	}

	d.Do(func(v any) { assert.Equal(t, 100, v.(*counter).n) })
}

// Property: for any sequence of Set/Step calls, the stored value always
// lands in [min, max] (spec.md §8 invariant 3).
func TestNumericAlwaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		min := rapid.Float64Range(-1000, 0).Draw(t, "min")
		max := rapid.Float64Range(0, 1000).Draw(t, "max")
		steps := []float64{rapid.Float64Range(0.01, 50).Draw(t, "step")}
		init := rapid.Float64Range(min-10, max+10).Draw(t, "init")

		n := param.NewNumeric(init, min, max, steps)
		ops := rapid.SliceOfN(rapid.IntRange(0, 2), 0, 50).Draw(t, "ops")

		for _, op := range ops {
			switch op {
			case 0:
				n.Set(rapid.Float64Range(min-100, max+100).Draw(t, "v"))
			case 1:
				n.Step(param.Up)
			case 2:
				n.Step(param.Down)
			}
			v := n.Get()
			assert.GreaterOrEqual(t, v, min)
			assert.LessOrEqual(t, v, max)
		}
	})
}

// Property: cycle_step_size wraps modulo len(steps) in both directions
// (spec.md §8 invariant 4).
func TestCycleStepSizeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(t, "count")
		steps := make([]float64, count)
		for i := range steps {
			steps[i] = float64(i + 1)
		}
		n := param.NewNumeric(0, -1000, 1000, steps)

		dirs := rapid.SliceOfN(rapid.SampledFrom([]param.StepDir{param.Up, param.Down}), 0, 30).Draw(t, "dirs")
		idx := 0
		for _, d := range dirs {
			idx = ((idx+int(d))%count + count) % count
			n.CycleStepSize(d)
			assert.Equal(t, steps[idx], n.StepSize())
		}
	})
}
