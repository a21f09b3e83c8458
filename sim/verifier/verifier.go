// Package verifier checks a trial's externally observable behavior against
// the transport guarantees: every accepted message is delivered exactly once,
// in order, and the sender honors its one-packet-in-flight discipline.
package verifier

import (
	"bytes"
	"fmt"
	"log"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

// ActivityVerifier mirrors the sender's two-state machine from the outside:
// it watches submissions and arriving acknowledgments to decide when the
// sender should be busy, and flags any event inconsistent with that model.
type ActivityVerifier struct {
	sim       model.SimContext
	onFailure func(explanation string)

	Failures int

	accepted  [][]byte
	delivered int

	busy      bool
	senderBit uint8
}

var _ collector.ActivityCollector = &ActivityVerifier{}

func MakeActivityVerifier(sim model.SimContext, onFailure func(explanation string)) *ActivityVerifier {
	return &ActivityVerifier{
		sim:       sim,
		onFailure: onFailure,
	}
}

func (v *ActivityVerifier) fail(explanation string, args ...interface{}) {
	rendered := fmt.Sprintf(explanation, args...)
	log.Printf("%v [Verifier] FAILURE: %s", v.sim.Now(), rendered)
	v.Failures++
	if v.onFailure != nil {
		v.onFailure(rendered)
	}
}

func (v *ActivityVerifier) OnMessageSubmitted(message []byte, accepted bool) {
	if accepted && v.busy {
		v.fail("sender accepted %q while a packet was still unacknowledged", message)
	}
	if !accepted && !v.busy {
		v.fail("sender rejected %q while idle", message)
	}
	if accepted {
		v.busy = true
		v.accepted = append(v.accepted, append([]byte{}, message...))
	}
}

func (v *ActivityVerifier) OnPacketTransmit(dir collector.Direction, packet *rdt.Packet) {
	if dir == collector.ToReceiver && !v.busy {
		v.fail("data packet %v transmitted while the sender should be idle", packet)
	}
}

func (v *ActivityVerifier) OnPacketLost(dir collector.Direction, packet *rdt.Packet) {}

func (v *ActivityVerifier) OnPacketCorrupted(dir collector.Direction, packet *rdt.Packet) {}

func (v *ActivityVerifier) OnPacketArrive(dir collector.Direction, packet *rdt.Packet) {
	if dir != collector.ToSender {
		return
	}
	// the same acceptance rule the sender applies; anything else leaves the
	// model (and the sender) waiting
	if v.busy && packet.Validate() && packet.Seq == v.senderBit {
		v.busy = false
		v.senderBit = 1 - v.senderBit
	}
}

func (v *ActivityVerifier) OnTimeout() {
	if !v.busy {
		v.fail("retransmission timer fired while the sender should be idle")
	}
}

func (v *ActivityVerifier) OnDeliverData(message []byte) {
	if v.delivered >= len(v.accepted) {
		v.fail("delivered %q but every accepted message was already delivered", message)
		return
	}
	if !bytes.Equal(message, v.accepted[v.delivered]) {
		v.fail("delivery out of order: got %q, expected %q at position %d",
			message, v.accepted[v.delivered], v.delivered)
		// resynchronize on the delivered count so one fault is one failure
	}
	v.delivered++
}

// Undelivered reports how many accepted messages have not yet reached the
// application layer.
func (v *ActivityVerifier) Undelivered() int {
	return len(v.accepted) - v.delivered
}
