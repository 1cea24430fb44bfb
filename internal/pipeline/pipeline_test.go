package pipeline_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7cdr/pocketwave/internal/pipeline"
)

// fakeSource emits n packets carrying an increasing int in Data, then ends
// the stream (ok=false) on its own, independent of the stop flag.
type fakeSource struct {
	n      int
	next   int
	closed bool
}

func (f *fakeSource) Name() string { return "fake-source" }

func (f *fakeSource) Next(ctx context.Context) (*pipeline.Packet, bool, error) {
	if f.next >= f.n {
		return nil, false, nil
	}
	pkt := &pipeline.Packet{Data: f.next, Meta: pipeline.NewMeta()}
	f.next++
	return pkt, true, nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestAddLinearChainPreservesOrder(t *testing.T) {
	g := pipeline.NewGraph()
	src := pipeline.NewSourceNode(&fakeSource{n: 3})
	double := pipeline.NewWorkerNode(pipeline.WorkerFunc{StageName: "double", Fn: func(p *pipeline.Packet) (*pipeline.Packet, error) {
		p.Data = p.Data.(int) * 2
		return p, nil
	}})

	require.NoError(t, g.AddLinearChain(src, double))

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, "fake-source", nodes[0].Name())
	assert.Equal(t, "double", nodes[1].Name())
}

func TestEndToEndCountAndOrderPreserved(t *testing.T) {
	const n = 50

	g := pipeline.NewGraph()
	src := pipeline.NewSourceNode(&fakeSource{n: n})
	double := pipeline.NewWorkerNode(pipeline.WorkerFunc{StageName: "double", Fn: func(p *pipeline.Packet) (*pipeline.Packet, error) {
		p.Data = p.Data.(int) * 2
		return p, nil
	}})

	var mu sync.Mutex
	var got []int
	sink := pipeline.NewEndpointNode(pipeline.EndpointFunc{StageName: "sink", Fn: func(p *pipeline.Packet) error {
		mu.Lock()
		got = append(got, p.Data.(int))
		mu.Unlock()
		return nil
	}})

	require.NoError(t, g.AddLinearChain(src, double, sink))

	sched := pipeline.NewScheduler(g, pipeline.NewStopFlag())
	require.NoError(t, sched.Run(context.Background()))

	require.Len(t, got, n)
	for i, v := range got {
		assert.Equal(t, i*2, v, "order must be preserved end to end")
	}
}

// infiniteSource never ends on its own; only the stop flag terminates it.
type infiniteSource struct {
	i int
}

func (s *infiniteSource) Name() string { return "infinite-source" }

func (s *infiniteSource) Next(ctx context.Context) (*pipeline.Packet, bool, error) {
	s.i++
	return &pipeline.Packet{Data: s.i, Meta: pipeline.NewMeta()}, true, nil
}

func (s *infiniteSource) Close() error { return nil }

func TestStopFlagTerminatesWithinBoundedSteps(t *testing.T) {
	g := pipeline.NewGraph()
	src := pipeline.NewSourceNode(&infiniteSource{})
	sink := pipeline.NewEndpointNode(pipeline.EndpointFunc{StageName: "drain", Fn: func(p *pipeline.Packet) error { return nil }})
	require.NoError(t, g.AddLinearChain(src, sink))

	stop := pipeline.NewStopFlag()
	sched := pipeline.NewScheduler(g, stop)

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	stop.Set()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not terminate after stop flag was set")
	}
}

func TestWorkerStageErrorUnblocksInfiniteUpstream(t *testing.T) {
	g := pipeline.NewGraph()
	src := pipeline.NewSourceNode(&infiniteSource{})
	boom := pipeline.NewWorkerNode(pipeline.WorkerFunc{StageName: "boom", Fn: func(p *pipeline.Packet) (*pipeline.Packet, error) {
		if p.Data.(int) > 2 {
			return nil, fmt.Errorf("synthetic failure")
		}
		return p, nil
	}})
	sink := pipeline.NewEndpointNode(pipeline.EndpointFunc{StageName: "drain", Fn: func(p *pipeline.Packet) error { return nil }})
	require.NoError(t, g.AddLinearChain(src, boom, sink))

	sched := pipeline.NewScheduler(g, pipeline.NewStopFlag())

	done := make(chan error, 1)
	go func() { done <- sched.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not terminate: a never-ending source blocked forever on Put after the downstream stage failed")
	}
}

func TestWorkerStageErrorCancelsPipeline(t *testing.T) {
	g := pipeline.NewGraph()
	src := pipeline.NewSourceNode(&fakeSource{n: 5})
	boom := pipeline.NewWorkerNode(pipeline.WorkerFunc{StageName: "boom", Fn: func(p *pipeline.Packet) (*pipeline.Packet, error) {
		if p.Data.(int) == 2 {
			return nil, fmt.Errorf("synthetic failure")
		}
		return p, nil
	}})
	sink := pipeline.NewEndpointNode(pipeline.EndpointFunc{StageName: "drain", Fn: func(p *pipeline.Packet) error { return nil }})
	require.NoError(t, g.AddLinearChain(src, boom, sink))

	sched := pipeline.NewScheduler(g, pipeline.NewStopFlag())
	err := sched.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
