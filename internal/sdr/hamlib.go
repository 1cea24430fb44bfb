package sdr

import (
	"context"
	"fmt"
	"sync"

	hl "github.com/xylo04/goHamlib"
)

// HamlibTuner implements Tuner against a hamlib-controlled rig, which is
// how this handheld's RF front end exposes center frequency and gain
// control (the teacher repo already depends on goHamlib for radio
// control, just not for this purpose).
type HamlibTuner struct {
	mu         sync.Mutex
	rig        *hl.Rig
	sampleRate float64
}

// OpenHamlibTuner opens the rig identified by model at the given device
// path (e.g. "/dev/ttyUSB0") and reports a fixed IQ sample rate.
func OpenHamlibTuner(model int, device string, sampleRate float64) (*HamlibTuner, error) {
	rig := hl.RigInit(model)
	if rig == nil {
		return nil, fmt.Errorf("sdr: unknown hamlib rig model %d", model)
	}
	rig.SetConf("rig_pathname", device)
	if err := rig.Open(); err != nil {
		return nil, fmt.Errorf("sdr: hamlib open: %w", err)
	}
	return &HamlibTuner{rig: rig, sampleRate: sampleRate}, nil
}

func (t *HamlibTuner) SetCenterFreq(hz float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.rig.SetFreq(hl.VFOCurrent, hz); err != nil {
		return fmt.Errorf("sdr: set center freq: %w", err)
	}
	return nil
}

func (t *HamlibTuner) CenterFreq() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	hz, err := t.rig.GetFreq(hl.VFOCurrent)
	if err != nil {
		return 0
	}
	return hz
}

func (t *HamlibTuner) SetGain(db float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.rig.SetLevel(hl.VFOCurrent, hl.LevelRF, db); err != nil {
		return fmt.Errorf("sdr: set gain: %w", err)
	}
	return nil
}

func (t *HamlibTuner) SampleRate() float64 { return t.sampleRate }

// Close releases the underlying rig handle.
func (t *HamlibTuner) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rig.Close()
}

// RawSource composes a HamlibTuner (frequency/gain control) with a plain
// IQ sample feed, since hamlib controls the radio but knows nothing about
// the IQ bitstream itself.
type RawSource struct {
	*HamlibTuner
	reader   func(ctx context.Context, n int) ([]complex128, error)
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRawSource composes tuner with a sample reader function (typically
// backed by an SDR driver's streaming API) into a full Source.
func NewRawSource(tuner *HamlibTuner, reader func(ctx context.Context, n int) ([]complex128, error)) *RawSource {
	return &RawSource{HamlibTuner: tuner, reader: reader, stopCh: make(chan struct{})}
}

func (s *RawSource) Stream(ctx context.Context, samplesPerChunk int) (<-chan []complex128, error) {
	out := make(chan []complex128)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			default:
			}
			chunk, err := s.reader(ctx, samplesPerChunk)
			if err != nil {
				return
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			}
		}
	}()
	return out, nil
}

func (s *RawSource) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}
