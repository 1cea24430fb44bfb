package input_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/n7cdr/pocketwave/internal/input"
)

func TestCascadeHoldProducesBoundedRepeatCount(t *testing.T) {
	reg := input.Registration{
		Pin:       1,
		Event:     input.EventUp,
		Press:     input.PressCascade,
		InitDelay: 40 * time.Millisecond,
		CascadeDelay: 20 * time.Millisecond,
	}

	var count atomic.Int64
	var mu sync.Mutex
	c := input.NewCascade(reg, func(input.BtnEvent) {
		mu.Lock()
		defer mu.Unlock()
		count.Add(1)
	}, nil)

	stop := make(chan struct{})
	defer close(stop)
	go c.Run(stop)

	c.Press()
	holdFor := 150 * time.Millisecond
	time.Sleep(holdFor)
	c.Release()

	// one initial edge-fire event plus floor((hold-initDelay)/cascDelay) repeats
	minExpected := 1 + int((holdFor-reg.InitDelay)/reg.CascadeDelay)
	time.Sleep(10 * time.Millisecond) // let any in-flight tick land
	got := int(count.Load())
	assert.GreaterOrEqual(t, got, minExpected, "expected at least the invariant's lower bound of repeat events")
}

func TestCascadeReleaseReturnsToIdle(t *testing.T) {
	reg := input.Registration{
		Pin: 2, Event: input.EventDown, Press: input.PressCascade,
		InitDelay: 30 * time.Millisecond, CascadeDelay: 10 * time.Millisecond,
	}
	c := input.NewCascade(reg, func(input.BtnEvent) {}, nil)
	stop := make(chan struct{})
	defer close(stop)
	go c.Run(stop)

	c.Press()
	time.Sleep(5 * time.Millisecond)
	c.Release()
	assert.True(t, c.IsIdle())
}
