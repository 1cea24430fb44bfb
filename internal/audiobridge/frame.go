// Package audiobridge connects the DSP pipeline's tail to the real-time
// audio callback: a bounded FIFO of frames fed at producer pace by the DSP
// domain and drained at samplerate/blocksize Hz by portaudio's callback,
// which only copies or zero-fills one output buffer per call.
package audiobridge

// AudioFrame is a contiguous vector of real mono samples, one pipeline
// chunk's worth of audio ready for output.
type AudioFrame []float64
