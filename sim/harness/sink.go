package harness

import (
	"log"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

// DeliverySink is the receiving application layer: it logs and retains every
// delivered payload in arrival order.
type DeliverySink struct {
	ctx      model.SimContext
	ac       collector.ActivityCollector
	Received [][]byte
}

var _ rdt.AppLayer = &DeliverySink{}

func MakeDeliverySink(ctx model.SimContext, ac collector.ActivityCollector) *DeliverySink {
	return &DeliverySink{
		ctx: ctx,
		ac:  ac,
	}
}

func (ds *DeliverySink) DeliverData(message []byte) {
	log.Printf("%v [AppLayer] Delivered data: %q", ds.ctx.Now(), message)
	ds.Received = append(ds.Received, append([]byte{}, message...))
	ds.ac.OnDeliverData(message)
}
