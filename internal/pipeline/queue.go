package pipeline

import "sync"

// Outbox is the bounded hand-off queue a Producer owns. Registering a
// consumer hands back its own FIFO channel; Put fans each item out to every
// registered consumer (the runtime shape used in practice registers
// exactly one, giving a plain single-consumer bounded queue); Stop enqueues
// one EndOfStream per registered consumer, same as the spec's
// one-sentinel-per-consumer-count rule.
type Outbox struct {
	capacity int

	mu        sync.Mutex
	consumers []chan Item
	stopped   bool
	stop      *StopFlag
}

// NewOutbox returns a bounded outbox; capacity is the number of in-flight
// items each registered consumer's channel can hold before Put blocks.
func NewOutbox(capacity int) *Outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Outbox{capacity: capacity}
}

// bindStop attaches the scheduler's cancellation flag so a blocked Put or
// Stop can abort once some other node has failed, instead of waiting
// forever on a consumer that has stopped reading. Called once per node by
// the scheduler before any goroutine starts running.
func (o *Outbox) bindStop(stop *StopFlag) {
	o.mu.Lock()
	o.stop = stop
	o.mu.Unlock()
}

// Register adds a new consumer and returns the channel it should read
// from. Registration must happen before the producer starts running.
func (o *Outbox) Register() <-chan Item {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch := make(chan Item, o.capacity)
	o.consumers = append(o.consumers, ch)
	return ch
}

// ConsumerCount reports how many consumers have registered.
func (o *Outbox) ConsumerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.consumers)
}

// Put enqueues item on every registered consumer's channel, blocking on
// whichever is fullest. This is the scheduler's only CPU-side suspension
// point for a producer. If the bound StopFlag is set while Put is blocked
// -- because some other node in the graph has already failed and a
// downstream consumer has stopped reading -- Put abandons the remaining
// sends and returns, so a producer never blocks forever on a channel
// nobody will read again.
func (o *Outbox) Put(item Item) {
	o.mu.Lock()
	consumers := o.consumers
	stop := o.stop
	o.mu.Unlock()
	for _, ch := range consumers {
		if stop == nil {
			ch <- item
			continue
		}
		select {
		case ch <- item:
		case <-stop.Done():
			return
		}
	}
}

// Stop enqueues one EndOfStream per registered consumer. Only the first
// call sends; later calls return at once. Like Put, it abandons a blocked
// send once the bound StopFlag is set.
func (o *Outbox) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	consumers := o.consumers
	stop := o.stop
	o.mu.Unlock()
	for _, ch := range consumers {
		if stop == nil {
			ch <- EndOfStream{}
			continue
		}
		select {
		case ch <- EndOfStream{}:
		case <-stop.Done():
			return
		}
	}
}

// StopFlag is the cross-goroutine cancellation signal: the lifecycle layer
// (or an external kill signal translated by it) sets it, and the source
// stage's read loop checks it to decide whether to keep pulling from the
// external device. It is the one facility besides sentinel propagation
// through which "stop" reaches the DSP graph.
type StopFlag struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewStopFlag returns an unset flag.
func NewStopFlag() *StopFlag {
	return &StopFlag{ch: make(chan struct{})}
}

// Set marks the flag; idempotent.
func (f *StopFlag) Set() {
	f.mu.Lock()
	defer f.mu.Unlock()
	select {
	case <-f.ch:
	default:
		close(f.ch)
	}
}

// IsSet reports whether Set has been called.
func (f *StopFlag) IsSet() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once Set has been called, for use in a
// select alongside a blocking read from an external device.
func (f *StopFlag) Done() <-chan struct{} {
	return f.ch
}
