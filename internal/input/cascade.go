package input

import (
	"sync"
	"time"
)

// cascadeState is the CASCADE auto-repeat state machine's current phase.
type cascadeState int

const (
	cascadeIdle cascadeState = iota
	cascadeFireOnce
	cascadeRepeating
)

// Cascade drives one pin's auto-repeat behavior: IDLE -> FIRE_ONCE (on the
// falling edge, emitting the event once and arming the sender) ->
// REPEATING (after initDelay, if the pin is still held) -> IDLE (on the
// rising edge). A hold has no timeout: REPEATING lasts until Release is
// called, whatever the time since the press. The sender runs on its own
// goroutine, parked on a timer the way the original button handler parks
// on an Event().wait() with a timeout.
type Cascade struct {
	reg     Registration
	emit    func(BtnEvent)
	now     func() time.Time
	mu      sync.Mutex
	state   cascadeState
	held    bool
	lastLow time.Time

	wake chan struct{}
	done chan struct{}
}

// NewCascade builds a cascade sender for reg, calling emit for every
// fired event (initial press and every repeat). now is injected so tests
// can control time without sleeping.
func NewCascade(reg Registration, emit func(BtnEvent), now func() time.Time) *Cascade {
	if now == nil {
		now = time.Now
	}
	return &Cascade{reg: reg, emit: emit, now: now, wake: make(chan struct{}, 1), done: make(chan struct{})}
}

// Press is called from the GPIO edge callback on a falling edge (button
// pressed). It fires the initial event and arms the sender goroutine to
// start watching for the hold-to-repeat transition.
func (c *Cascade) Press() {
	c.mu.Lock()
	c.held = true
	c.lastLow = c.now()
	c.state = cascadeFireOnce
	c.mu.Unlock()

	c.emit(c.reg.Event)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Release is called on the rising edge (button released); it returns the
// state machine to IDLE immediately.
func (c *Cascade) Release() {
	c.mu.Lock()
	c.held = false
	c.state = cascadeIdle
	c.mu.Unlock()
}

// State reports the sender's current phase, for tests in this package.
func (c *Cascade) State() cascadeState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsIdle reports whether the state machine is currently in IDLE.
func (c *Cascade) IsIdle() bool {
	return c.State() == cascadeIdle
}

// Run drives the sender loop until stop is closed. It must run on its own
// goroutine; Press/Release are safe to call concurrently from the GPIO
// callback goroutine.
func (c *Cascade) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-c.wake:
		}
		c.waitAndRepeat(stop)
	}
}

func (c *Cascade) waitAndRepeat(stop <-chan struct{}) {
	timer := time.NewTimer(c.reg.InitDelay)
	defer timer.Stop()

	select {
	case <-stop:
		return
	case <-timer.C:
	}

	c.mu.Lock()
	if !c.held {
		c.mu.Unlock()
		return
	}
	c.state = cascadeRepeating
	c.mu.Unlock()

	ticker := time.NewTicker(c.reg.CascadeDelay)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			held := c.held
			c.mu.Unlock()
			if !held {
				return
			}
			c.emit(c.reg.Event)
		}
	}
}
