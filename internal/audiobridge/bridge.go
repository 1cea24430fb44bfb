package audiobridge

import (
	"sync"
	"sync/atomic"
)

// Bridge is the bounded hand-off between the DSP tail (producer pace) and
// the audio device callback (samplerate/blocksize Hz). Capacity is fixed
// at construction so the queue can never grow without bound; Push drops
// the oldest queued frame rather than blocking the DSP pipeline when full,
// since a backed-up audio sink should lose old audio, not stall
// demodulation.
type Bridge struct {
	mu       sync.Mutex
	frames   []AudioFrame
	cap      int
	underrun atomic.Uint64
}

// NewBridge returns a Bridge holding at most capacity queued frames.
func NewBridge(capacity int) *Bridge {
	return &Bridge{cap: capacity}
}

// Push enqueues frame, dropping the oldest queued frame first if the
// bridge is already at capacity.
func (b *Bridge) Push(frame AudioFrame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) >= b.cap {
		b.frames = b.frames[1:]
	}
	b.frames = append(b.frames, frame)
}

// TryPop returns the oldest queued frame and removes it, or ok=false if
// the queue is empty. Called from the real-time audio callback against
// the same mutex Push takes, so it can briefly block on contention, but
// never allocates: the slice header shift is O(1) amortized and the
// returned frame's backing array is reused by the caller, never copied
// here.
func (b *Bridge) TryPop() (frame AudioFrame, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.frames) == 0 {
		return nil, false
	}
	frame = b.frames[0]
	b.frames = b.frames[1:]
	return frame, true
}

// RecordUnderrun increments the underrun counter. Called by the audio
// callback when TryPop finds nothing and it has to emit silence instead.
func (b *Bridge) RecordUnderrun() {
	b.underrun.Add(1)
}

// Underruns returns the total number of times the audio callback has had
// to substitute silence for a missing frame.
func (b *Bridge) Underruns() uint64 {
	return b.underrun.Load()
}
