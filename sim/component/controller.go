package component

import (
	"container/heap"
	"math/rand"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
)

type simTimer struct {
	expireAt model.VirtualTime
	name     string
	callback func()
	index    int
}

// timerQueue orders timers by expiry; ties run in insertion order because
// heap.Push appends before sifting, and Less is strict.
type timerQueue struct {
	timers []*simTimer
	serial uint64
	order  map[*simTimer]uint64
}

func (tq *timerQueue) Len() int {
	return len(tq.timers)
}

func (tq *timerQueue) Less(i, j int) bool {
	ti, tj := tq.timers[i], tq.timers[j]
	if ti.expireAt != tj.expireAt {
		return ti.expireAt.Before(tj.expireAt)
	}
	return tq.order[ti] < tq.order[tj]
}

func (tq *timerQueue) Swap(i, j int) {
	tq.timers[i], tq.timers[j] = tq.timers[j], tq.timers[i]
	tq.timers[i].index = i
	tq.timers[j].index = j
}

func (tq *timerQueue) Push(x interface{}) {
	timer := x.(*simTimer)
	timer.index = len(tq.timers)
	tq.order[timer] = tq.serial
	tq.serial++
	tq.timers = append(tq.timers, timer)
}

func (tq *timerQueue) Pop() interface{} {
	timer := tq.timers[len(tq.timers)-1]
	timer.index = -1
	delete(tq.order, timer)
	tq.timers = tq.timers[:len(tq.timers)-1]
	return timer
}

// SimController is the discrete-event scheduler: a clock plus a queue of
// pending timers. It implements model.SimContext for the components it hosts.
type SimController struct {
	currentTime model.VirtualTime
	rand        *rand.Rand
	timers      timerQueue
}

var _ model.SimContext = &SimController{}

func MakeSimControllerSeeded(seed int64, startAt model.VirtualTime) *SimController {
	if !startAt.TimeExists() {
		panic("controller must start at a real time")
	}
	return &SimController{
		currentTime: startAt,
		rand:        rand.New(rand.NewSource(seed)),
		timers:      timerQueue{order: map[*simTimer]uint64{}},
	}
}

func MakeSimControllerRandomized() *SimController {
	return MakeSimControllerSeeded(time.Now().UnixNano(), model.TimeZero)
}

func (sc *SimController) Now() model.VirtualTime {
	return sc.currentTime
}

func (sc *SimController) Rand() *rand.Rand {
	return sc.rand
}

func (sc *SimController) SetTimer(expireAt model.VirtualTime, name string, callback func()) (cancel func()) {
	if !expireAt.TimeExists() {
		panic("attempt to set timer at nonexistent time")
	}
	if expireAt.Before(sc.currentTime) {
		panic("attempt to set timer in the past")
	}
	timer := &simTimer{
		expireAt: expireAt,
		name:     name,
		callback: callback,
		index:    -1,
	}
	heap.Push(&sc.timers, timer)
	return func() {
		if timer.index != -1 {
			heap.Remove(&sc.timers, timer.index)
		}
	}
}

func (sc *SimController) Later(name string, callback func()) (cancel func()) {
	return sc.SetTimer(sc.currentTime, name, callback)
}

func (sc *SimController) peekNextExpiry() model.VirtualTime {
	if sc.timers.Len() > 0 {
		return sc.timers.timers[0].expireAt
	}
	return model.TimeNever
}

func (sc *SimController) runCurrentTimers() {
	for sc.timers.Len() > 0 && sc.peekNextExpiry().AtOrBefore(sc.currentTime) {
		timer := heap.Pop(&sc.timers).(*simTimer)
		timer.callback()
	}
}

// Advance runs the simulation until advanceTo, executing every timer due at
// or before that point in expiry order. It returns the expiry of the next
// pending timer, or TimeNever if none remain.
func (sc *SimController) Advance(advanceTo model.VirtualTime) (nextTimer model.VirtualTime) {
	sc.runCurrentTimers()
	for sc.currentTime.Before(advanceTo) {
		stepTo := sc.peekNextExpiry()
		if stepTo.TimeExists() && stepTo.AtOrBefore(advanceTo) {
			sc.currentTime = stepTo
		} else {
			sc.currentTime = advanceTo
		}
		sc.runCurrentTimers()
	}
	return sc.peekNextExpiry()
}
