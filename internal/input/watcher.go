package input

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Manager owns the GPIO line requests for every registered pin and
// dispatches debounced edges to the emit callback, running the CASCADE
// sender goroutines it owns until Close.
type Manager struct {
	chip string
	emit func(BtnEvent)

	mu        sync.Mutex
	lines     []*gpiocdev.Line
	cascades  []*Cascade
	stop      chan struct{}
	wg        sync.WaitGroup
	lastFired map[int]time.Time
}

// NewManager opens lines on the given gpiochip device (e.g. "gpiochip0"),
// calling emit for every semantic button event produced.
func NewManager(chip string, emit func(BtnEvent)) *Manager {
	return &Manager{chip: chip, emit: emit, stop: make(chan struct{}), lastFired: make(map[int]time.Time)}
}

// Register binds one pin according to reg.Press, honoring the debounce
// ceiling of min(50ms, initDelay) for CASCADE pins.
func (m *Manager) Register(reg Registration) error {
	debounce := reg.DebounceTime
	if reg.Press == PressCascade {
		if max := maxDebounce(reg.InitDelay); debounce > max {
			debounce = max
		}
	}

	switch reg.Press {
	case PressCascade:
		return m.registerCascade(reg, debounce)
	default:
		return m.registerSimple(reg, debounce)
	}
}

func (m *Manager) registerSimple(reg Registration, debounce time.Duration) error {
	var edgeOpt gpiocdev.LineReqOption
	switch reg.Press {
	case PressDown:
		edgeOpt = gpiocdev.WithFallingEdge
	case PressUp:
		edgeOpt = gpiocdev.WithRisingEdge
	default:
		edgeOpt = gpiocdev.WithBothEdges
	}

	handler := func(evt gpiocdev.LineEvent) {
		m.mu.Lock()
		last := m.lastFired[reg.Pin]
		now := time.Now()
		if now.Sub(last) < debounce {
			m.mu.Unlock()
			return
		}
		m.lastFired[reg.Pin] = now
		m.mu.Unlock()
		m.emit(reg.Event)
	}

	line, err := gpiocdev.RequestLine(m.chip, reg.Pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		edgeOpt,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(handler),
	)
	if err != nil {
		return fmt.Errorf("input: request line %d: %w", reg.Pin, err)
	}
	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.mu.Unlock()
	return nil
}

func (m *Manager) registerCascade(reg Registration, debounce time.Duration) error {
	cascade := NewCascade(reg, m.emit, nil)

	handler := func(evt gpiocdev.LineEvent) {
		if evt.Type == gpiocdev.LineEventFallingEdge {
			cascade.Press()
		} else {
			cascade.Release()
		}
	}

	line, err := gpiocdev.RequestLine(m.chip, reg.Pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithDebounce(debounce),
		gpiocdev.WithEventHandler(handler),
	)
	if err != nil {
		return fmt.Errorf("input: request cascade line %d: %w", reg.Pin, err)
	}

	m.mu.Lock()
	m.lines = append(m.lines, line)
	m.cascades = append(m.cascades, cascade)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		cascade.Run(m.stop)
	}()
	return nil
}

// Close wakes every cascade sender, waits for them to exit, and releases
// every requested GPIO line -- the GPIO cleanup the spec requires to
// happen in the UI process on shutdown.
func (m *Manager) Close() error {
	close(m.stop)
	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	var firstErr error
	for _, line := range m.lines {
		if err := line.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
