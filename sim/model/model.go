package model

import (
	"math/rand"
)

// SimContext is the execution environment handed to every simulated
// component: the current virtual time, one-shot timers, and a deterministic
// random source. All callbacks run to completion one at a time; components
// never need locks.
type SimContext interface {
	Now() VirtualTime
	// SetTimer arranges for callback to run once at expireAt. The name is
	// only for debugging. The returned cancel function is safe to call
	// whether or not the timer has fired.
	SetTimer(expireAt VirtualTime, name string, callback func()) (cancel func())
	// Later runs callback once the current event finishes, at the same
	// virtual time.
	Later(name string, callback func()) (cancel func())
	Rand() *rand.Rand
}

type EventSource interface {
	Subscribe(callback func()) (cancel func())
}
