package component

import (
	"sync"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
)

// RealTimeExecutor drives a SimController against the wall clock, so that
// components written for the discrete-event world can run on live hardware.
// All component code still executes strictly serialized: timer callbacks run
// inside Run, and external events enter through Inject.
type RealTimeExecutor struct {
	mu   sync.Mutex
	sc   *SimController
	base time.Time
	wake chan struct{}
}

func MakeRealTimeExecutor(seed int64) *RealTimeExecutor {
	return &RealTimeExecutor{
		sc:   MakeSimControllerSeeded(seed, model.TimeZero),
		base: time.Now(),
		wake: make(chan struct{}, 1),
	}
}

func (e *RealTimeExecutor) wallNow() model.VirtualTime {
	return model.TimeZero.Add(time.Since(e.base))
}

// Inject schedules callback to run on the executor's event loop at the
// current wall-clock instant. Safe to call from any goroutine.
func (e *RealTimeExecutor) Inject(name string, callback func()) {
	e.mu.Lock()
	e.sc.SetTimer(e.wallNow(), name, callback)
	e.mu.Unlock()
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Setup runs build with the underlying SimContext before events start
// flowing, for constructing the components the executor will drive.
func (e *RealTimeExecutor) Setup(build func(ctx model.SimContext)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	build(e.sc)
}

// Run executes timers as their virtual expiries pass on the wall clock,
// until stop is closed.
func (e *RealTimeExecutor) Run(stop <-chan struct{}) {
	for {
		e.mu.Lock()
		next := e.sc.Advance(e.wallNow())
		e.mu.Unlock()

		sleep := 10 * time.Millisecond
		if next.TimeExists() {
			until := time.Duration(int64(next) - int64(e.wallNow()))
			if until < 0 {
				until = 0
			}
			if until < sleep {
				sleep = until
			}
		}
		select {
		case <-stop:
			return
		case <-e.wake:
		case <-time.After(sleep):
		}
	}
}
