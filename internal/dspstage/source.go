package dspstage

import (
	"context"
	"fmt"

	"github.com/n7cdr/pocketwave/internal/pipeline"
	"github.com/n7cdr/pocketwave/internal/sdr"
)

// ProvideRawRF is the pipeline's Source stage: it pulls fixed-size IQ
// chunks from the front end and emits them as Packets stamped with an
// arrival timestamp. Honors ctx cancellation; on exit it stops and closes
// the underlying front end exactly once.
type ProvideRawRF struct {
	front           sdr.Source
	samplesPerChunk int
	newMeta         func() pipeline.Meta

	stream <-chan []complex128
	closed bool
}

// NewProvideRawRF wires front as the IQ source, pulling chunks of
// samplesPerChunk complex samples. newMeta builds each packet's metadata
// (injected so tests don't depend on wall-clock time).
func NewProvideRawRF(front sdr.Source, samplesPerChunk int, newMeta func() pipeline.Meta) *ProvideRawRF {
	return &ProvideRawRF{front: front, samplesPerChunk: samplesPerChunk, newMeta: newMeta}
}

func (*ProvideRawRF) Name() string { return "provide_raw_rf" }

func (p *ProvideRawRF) Next(ctx context.Context) (*pipeline.Packet, bool, error) {
	if p.stream == nil {
		stream, err := p.front.Stream(ctx, p.samplesPerChunk)
		if err != nil {
			return nil, false, fmt.Errorf("sdr stream start: %w", err)
		}
		p.stream = stream
	}

	select {
	case chunk, ok := <-p.stream:
		if !ok {
			return nil, false, nil
		}
		meta := p.newMeta()
		return &pipeline.Packet{Data: chunk, Meta: meta}, true, nil
	case <-ctx.Done():
		return nil, false, nil
	}
}

// Close stops the front end's stream and releases the device. It is safe
// to call even if Next was never called.
func (p *ProvideRawRF) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	p.front.Stop()
	return p.front.Close()
}
