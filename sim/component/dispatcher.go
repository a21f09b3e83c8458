package component

import (
	"fmt"
	"sort"

	"github.com/ScottHakoda/Networks/sim/model"
)

// EventDispatcher fans a notification out to its subscribers, in subscription
// order. DispatchLater coalesces repeated requests within a single event into
// one deferred dispatch.
type EventDispatcher struct {
	ctx          model.SimContext
	laterName    string
	subscribers  map[uint64]func()
	sorted       []func()
	nextIndex    uint64
	pendingLater bool
}

func MakeEventDispatcher(ctx model.SimContext, name string) *EventDispatcher {
	return &EventDispatcher{
		ctx:         ctx,
		laterName:   fmt.Sprintf("%s/DispatchLater", name),
		subscribers: map[uint64]func(){},
	}
}

func (ed *EventDispatcher) rebuildSorted() {
	keys := make([]uint64, 0, len(ed.subscribers))
	for k := range ed.subscribers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	ed.sorted = make([]func(), len(keys))
	for i, k := range keys {
		ed.sorted[i] = ed.subscribers[k]
	}
}

func (ed *EventDispatcher) Subscribe(callback func()) (cancel func()) {
	index := ed.nextIndex
	ed.nextIndex++
	ed.subscribers[index] = callback
	ed.rebuildSorted()
	return func() {
		delete(ed.subscribers, index)
		ed.rebuildSorted()
	}
}

func (ed *EventDispatcher) Dispatch() {
	for _, f := range ed.sorted {
		f()
	}
}

func (ed *EventDispatcher) DispatchLater() {
	if ed.pendingLater {
		return
	}
	ed.pendingLater = true
	ed.ctx.Later(ed.laterName, func() {
		ed.pendingLater = false
		ed.Dispatch()
	})
}
