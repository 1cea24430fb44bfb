// Package sdr adapts the handheld's RF front end to the DSP pipeline's
// source stage: a Tuner for frequency/gain control and a Source for the
// raw IQ sample stream itself.
package sdr

import "context"

// Tuner is the control surface the UI domain drives through a
// param.Device cell: retuning and gain changes, serialized by the cell's
// own lock so concurrent UI events can't race each other into the radio.
type Tuner interface {
	SetCenterFreq(hz float64) error
	CenterFreq() float64
	SetGain(db float64) error
	SampleRate() float64
}

// Source is the DSP domain's view of the front end: a Tuner plus the IQ
// sample stream itself. Stream and the Tuner methods are called from
// different domains (DSP source goroutine vs. UI event handlers) against
// the same underlying device, so implementations must serialize tuning
// commands against an active stream internally if the hardware requires
// it.
type Source interface {
	Tuner
	// Stream starts delivering chunks of samplesPerChunk IQ samples on the
	// returned channel until ctx is cancelled or Stop is called. The
	// channel is closed when streaming ends.
	Stream(ctx context.Context, samplesPerChunk int) (<-chan []complex128, error)
	// Stop ends any in-progress Stream without closing the device.
	Stop()
	// Close releases the device. Called exactly once, after Stop.
	Close() error
}
