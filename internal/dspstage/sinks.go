package dspstage

import (
	"github.com/n7cdr/pocketwave/internal/audiobridge"
	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// AudioTailSink is a Window stage: it forwards each chunk's audio frame to
// the audio bridge's bounded queue and passes the packet through
// unchanged, so a draining Endpoint downstream keeps the chain's outbox
// bounded the same way every other stage's does.
type AudioTailSink struct {
	bridge *audiobridge.Bridge
}

func NewAudioTailSink(bridge *audiobridge.Bridge) *AudioTailSink {
	return &AudioTailSink{bridge: bridge}
}

func (*AudioTailSink) Name() string { return "audio_tail_sink" }

func (s *AudioTailSink) Inspect(pkt *pipeline.Packet) error {
	frame, ok := pkt.Data.(audiobridge.AudioFrame)
	if !ok {
		panic("dspstage: audio_tail_sink expected audiobridge.AudioFrame data")
	}
	s.bridge.Push(frame)
	return nil
}

// SnapshotPublisher is the minimal surface AudioTailSink's companion
// window needs from internal/ipc -- an interface here instead of a direct
// dependency so tests can substitute a recorder.
type SnapshotPublisher interface {
	Publish(meta map[string]any) error
}

// HWSnapshotSink is a Window stage: it forwards each chunk's metadata
// (dB, squelched, demod name) to the UI snapshot publisher, leaving data
// and meta otherwise untouched. Publish failures (a closed pipe, usually
// meaning the UI process exited) are reported up the chain like any other
// stage error.
type HWSnapshotSink struct {
	publisher SnapshotPublisher
}

func NewHWSnapshotSink(publisher SnapshotPublisher) *HWSnapshotSink {
	return &HWSnapshotSink{publisher: publisher}
}

func (*HWSnapshotSink) Name() string { return "hw_snapshot_sink" }

func (s *HWSnapshotSink) Inspect(pkt *pipeline.Packet) error {
	return s.publisher.Publish(pkt.Meta)
}

// DrainEndpoint is the terminal Endpoint of every chain: it never emits,
// and exists only to keep the upstream outbox bounded by consuming
// whatever the tail sinks forward.
type DrainEndpoint struct{}

func (DrainEndpoint) Name() string { return "drain" }

func (DrainEndpoint) Consume(*pipeline.Packet) error { return nil }
