package pipeline

import "context"

// Stage is the common identity every node's behavior implements.
type Stage interface {
	Name() string
}

// Source pulls data from something outside the graph (the SDR, in this
// receiver). Next returns the next packet, or ok=false once the external
// stream has ended. Close releases the external device; it is called
// exactly once, whether the loop ended because the stream ran dry or
// because the stop flag was set.
type Source interface {
	Stage
	Next(ctx context.Context) (pkt *Packet, ok bool, err error)
	Close() error
}

// Worker transforms a packet's data and forwards the result. It is a
// Producer+Consumer: "item <- source.get(); outbox.put(process(item))".
type Worker interface {
	Stage
	Process(pkt *Packet) (*Packet, error)
}

// FanWorker transforms one input packet into zero or more output packets,
// for stages like a fixed-size rechunker where the input/output framing
// don't line up one-to-one. Order is preserved: packets returned by one
// call are emitted before anything from the next.
type FanWorker interface {
	Stage
	Process(pkt *Packet) ([]*Packet, error)
}

// Window inspects a packet and forwards the same packet it received. It may
// annotate the packet's Meta or alter its data in place, but never replaces
// the packet. It is also a Producer+Consumer, but its transform step has no
// output: "inspect(item); forward item".
type Window interface {
	Stage
	Inspect(pkt *Packet) error
}

// Endpoint is a Consumer only: it drains its source to keep the upstream
// outbox bounded and never emits.
type Endpoint interface {
	Stage
	Consume(pkt *Packet) error
}

// WorkerFunc adapts a plain function to the Worker interface, mirroring the
// original FxApplyWorker convenience wrapper.
type WorkerFunc struct {
	StageName string
	Fn        func(pkt *Packet) (*Packet, error)
}

func (f WorkerFunc) Name() string                        { return f.StageName }
func (f WorkerFunc) Process(pkt *Packet) (*Packet, error) { return f.Fn(pkt) }

// WindowFunc adapts a plain function to the Window interface, mirroring the
// original FxApplyWindow convenience wrapper.
type WindowFunc struct {
	StageName string
	Fn        func(pkt *Packet) error
}

func (f WindowFunc) Name() string             { return f.StageName }
func (f WindowFunc) Inspect(pkt *Packet) error { return f.Fn(pkt) }

// EndpointFunc adapts a plain function to the Endpoint interface.
type EndpointFunc struct {
	StageName string
	Fn        func(pkt *Packet) error
}

func (f EndpointFunc) Name() string             { return f.StageName }
func (f EndpointFunc) Consume(pkt *Packet) error { return f.Fn(pkt) }
