package ipc

import (
	"io"
	"sync"

	"gopkg.in/yaml.v3"
)

// Publisher writes UIState snapshots as a stream of YAML documents. It is
// the receiver process's half of the transport; the receiver points it at
// the pipe attached to the UI subprocess's stdin.
type Publisher struct {
	mu  sync.Mutex
	enc *yaml.Encoder
}

// NewPublisher wraps w as a snapshot publisher.
func NewPublisher(w io.Writer) *Publisher {
	return &Publisher{enc: yaml.NewEncoder(w)}
}

// Publish writes one complete snapshot as its own YAML document. Safe for
// concurrent use; snapshots are serialized against each other so one
// publish can never interleave with another on the wire.
func (p *Publisher) Publish(state UIState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Encode(state)
}

// Close flushes and releases the underlying encoder.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc.Close()
}

// Subscriber reads a stream of UIState snapshots. It is the UI process's
// half of the transport.
type Subscriber struct {
	dec *yaml.Decoder
}

// NewSubscriber wraps r as a snapshot subscriber.
func NewSubscriber(r io.Reader) *Subscriber {
	return &Subscriber{dec: yaml.NewDecoder(r)}
}

// Next blocks for the next published snapshot, returning io.EOF once the
// publisher side has closed the stream.
func (s *Subscriber) Next() (UIState, error) {
	var state UIState
	if err := s.dec.Decode(&state); err != nil {
		return UIState{}, err
	}
	return state, nil
}
