package audiobridge

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Stream wraps a portaudio output stream whose callback drains a Bridge.
// The callback does not allocate and does no work beyond a copy and a
// counter increment. It does take the Bridge's mutex through TryPop, so it
// can wait briefly while a Push holds that mutex.
type Stream struct {
	stream *portaudio.Stream
	bridge *Bridge
}

// OpenStream opens the default output device at sampleRate, with a
// callback buffer of blockSize mono frames, draining bridge.
func OpenStream(bridge *Bridge, sampleRate float64, blockSize int) (*Stream, error) {
	s := &Stream{bridge: bridge}
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, blockSize, s.callback)
	if err != nil {
		return nil, fmt.Errorf("audiobridge: open stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

func (s *Stream) callback(out []float32) {
	frame, ok := s.bridge.TryPop()
	if !ok {
		for i := range out {
			out[i] = 0
		}
		s.bridge.RecordUnderrun()
		return
	}
	n := min(len(out), len(frame))
	for i := 0; i < n; i++ {
		out[i] = float32(frame[i])
	}
	for i := n; i < len(out); i++ {
		out[i] = 0
	}
}

// Start begins audio playback.
func (s *Stream) Start() error { return s.stream.Start() }

// Stop halts audio playback without closing the device.
func (s *Stream) Stop() error { return s.stream.Stop() }

// Close releases the device.
func (s *Stream) Close() error { return s.stream.Close() }
