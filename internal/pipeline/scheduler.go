package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// Scheduler starts one goroutine per graph node and drives it through
// exactly the suspension points the spec allows: a producer blocks only on
// Outbox.Put when a consumer's channel is full, a consumer blocks only on
// receiving from its input channel. No node does CPU work beyond one
// packet's worth before yielding back to one of those two points.
//
// This is the "true parallel workers" generalization of the original
// single-threaded cooperative scheduler that spec.md §9 explicitly allows,
// since Go has no userland coroutines to suspend cheaply at queue
// boundaries the way the original asyncio event loop did. Per-chain FIFO
// order is preserved because each edge is a single-producer,
// single-consumer channel.
type Scheduler struct {
	graph *Graph
	stop  *StopFlag
}

// NewScheduler builds a scheduler for graph, sharing stop as the
// cancellation flag every node checks and every node's outbox aborts a
// blocked send against.
func NewScheduler(graph *Graph, stop *StopFlag) *Scheduler {
	for _, n := range graph.Nodes() {
		if n.outbox != nil {
			n.outbox.bindStop(stop)
		}
	}
	return &Scheduler{graph: graph, stop: stop}
}

// Run starts every node and blocks until all of them have exited. Any
// stage error is fatal to the whole pipeline: the failing node sets the
// shared StopFlag and stops its own outbox, every other node's blocked send
// or receive then gives up, and Run returns the first error once every node
// has unwound.
func (s *Scheduler) Run(ctx context.Context) error {
	nodes := s.graph.Nodes()
	errs := make(chan error, len(nodes))
	var wg sync.WaitGroup

	for _, n := range nodes {
		wg.Add(1)
		go func(n *Node) {
			defer wg.Done()
			errs <- s.runNode(ctx, n)
		}(n)
	}

	wg.Wait()
	close(errs)

	var first error
	for err := range errs {
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *Scheduler) runNode(ctx context.Context, n *Node) error {
	switch n.kind {
	case KindSource:
		return s.runSource(ctx, n)
	case KindWorker:
		return s.runWorker(n)
	case KindFanWorker:
		return s.runFanWorker(n)
	case KindWindow:
		return s.runWindow(n)
	case KindEndpoint:
		return s.runEndpoint(n)
	default:
		return fmt.Errorf("pipeline: node %q has unknown kind", n.name)
	}
}

func (s *Scheduler) runSource(ctx context.Context, n *Node) error {
	defer n.outbox.Stop()
	defer n.source.Close()
	for {
		if s.stop.IsSet() {
			return nil
		}
		pkt, ok, err := n.source.Next(ctx)
		if err != nil {
			s.stop.Set()
			return fmt.Errorf("pipeline: stage %q: %w", n.name, err)
		}
		if !ok {
			return nil
		}
		n.outbox.Put(pkt)
	}
}

func (s *Scheduler) runWorker(n *Node) error {
	for {
		item, ok := s.recv(n)
		if !ok {
			return nil
		}
		if _, eos := item.(EndOfStream); eos {
			n.outbox.Stop()
			return nil
		}
		pkt := item.(*Packet)
		out, err := n.worker.Process(pkt)
		if err != nil {
			s.stop.Set()
			n.outbox.Stop()
			return fmt.Errorf("pipeline: stage %q: %w", n.name, err)
		}
		n.outbox.Put(out)
	}
}

func (s *Scheduler) runFanWorker(n *Node) error {
	for {
		item, ok := s.recv(n)
		if !ok {
			return nil
		}
		if _, eos := item.(EndOfStream); eos {
			n.outbox.Stop()
			return nil
		}
		pkt := item.(*Packet)
		outs, err := n.fanWorker.Process(pkt)
		if err != nil {
			s.stop.Set()
			n.outbox.Stop()
			return fmt.Errorf("pipeline: stage %q: %w", n.name, err)
		}
		for _, out := range outs {
			n.outbox.Put(out)
		}
	}
}

func (s *Scheduler) runWindow(n *Node) error {
	for {
		item, ok := s.recv(n)
		if !ok {
			return nil
		}
		if _, eos := item.(EndOfStream); eos {
			n.outbox.Stop()
			return nil
		}
		pkt := item.(*Packet)
		if err := n.window.Inspect(pkt); err != nil {
			s.stop.Set()
			n.outbox.Stop()
			return fmt.Errorf("pipeline: stage %q: %w", n.name, err)
		}
		n.outbox.Put(pkt)
	}
}

func (s *Scheduler) runEndpoint(n *Node) error {
	for {
		item, ok := s.recv(n)
		if !ok {
			return nil
		}
		if _, eos := item.(EndOfStream); eos {
			return nil
		}
		pkt := item.(*Packet)
		if err := n.endp.Consume(pkt); err != nil {
			s.stop.Set()
			return fmt.Errorf("pipeline: stage %q: %w", n.name, err)
		}
	}
}

// recv reads the next item from n's input, or reports ok=false once the
// scheduler's StopFlag is set -- the same signal Outbox.Put aborts a
// blocked send against, so a node whose upstream has abandoned it (because
// some other node in the graph failed) unwinds instead of waiting on an
// input channel nothing will ever write to again.
func (s *Scheduler) recv(n *Node) (Item, bool) {
	select {
	case item := <-n.input:
		return item, true
	case <-s.stop.Done():
		return nil, false
	}
}
