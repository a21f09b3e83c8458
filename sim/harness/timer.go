package harness

import (
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
)

// RetransmitTimer implements the sender's one-shot timer on top of
// SimContext timers. Start on an armed timer cancels it first, so only one
// expiry can ever be outstanding.
type RetransmitTimer struct {
	ctx      model.SimContext
	name     string
	callback func()
	cancel   func()
}

var _ rdt.Timer = &RetransmitTimer{}

func MakeRetransmitTimer(ctx model.SimContext, name string, callback func()) *RetransmitTimer {
	return &RetransmitTimer{
		ctx:      ctx,
		name:     name,
		callback: callback,
	}
}

func (t *RetransmitTimer) Running() bool {
	return t.cancel != nil
}

func (t *RetransmitTimer) Start(duration time.Duration) {
	if t.cancel != nil {
		t.cancel()
	}
	t.cancel = t.ctx.SetTimer(t.ctx.Now().Add(duration), t.name, func() {
		t.cancel = nil
		t.callback()
	})
}

func (t *RetransmitTimer) Stop() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
