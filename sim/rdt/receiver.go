package rdt

import (
	"fmt"
	"log"

	"github.com/ScottHakoda/Networks/sim/model"
)

// Receiver is the accepting half of the protocol: it validates arrivals,
// delivers each new payload upward exactly once, and answers every arrival --
// including duplicates and garbage -- with an acknowledgment, so that the
// sender's retransmission loop always converges.
type Receiver struct {
	ctx      model.SimContext
	Label    string
	channel  Channel
	appLayer AppLayer

	// ExpectedSeq is the sequence bit that counts as new data.
	ExpectedSeq uint8
	// LastAck is the most recently sent acknowledgment, resent verbatim
	// when a duplicate or corrupted packet arrives. Nil until the first
	// packet has been accepted.
	LastAck *Packet
}

func MakeReceiver(ctx model.SimContext, channel Channel, appLayer AppLayer, label string) *Receiver {
	return &Receiver{
		ctx:      ctx,
		Label:    label,
		channel:  channel,
		appLayer: appLayer,
	}
}

func (r *Receiver) CheckInvariants() {
	if r.ExpectedSeq > 1 {
		log.Panicf("invalid sequence bit: %d", r.ExpectedSeq)
	}
	if r.LastAck != nil && r.LastAck.Seq == r.ExpectedSeq {
		log.Panicf("last acknowledgment seq=%d should never match the expected bit", r.LastAck.Seq)
	}
}

func (r *Receiver) Debug(explanation string, args ...interface{}) {
	log.Printf("%v [%s] Receiver: %s", r.ctx.Now(), r.Label, fmt.Sprintf(explanation, args...))
}

// OnPacketArrival handles a data packet from the sender. There is no
// separate negative acknowledgment: resending the previous positive
// acknowledgment serves the same purpose, since the sender retransmits until
// it sees an acknowledgment matching its outstanding sequence bit.
func (r *Receiver) OnPacketArrival(packet *Packet) {
	r.CheckInvariants()
	if !packet.Validate() {
		r.Debug("Discarding corrupted arrival; repeating last acknowledgment.")
		r.resendLastAck()
		return
	}
	if packet.Seq != r.ExpectedSeq {
		// a duplicate of the previously accepted packet, which means its
		// acknowledgment was lost or corrupted on the way back
		r.Debug("Duplicate %v; repeating last acknowledgment without redelivery.", packet)
		r.resendLastAck()
		return
	}
	r.Debug("Accepted %v; delivering payload.", packet)
	r.appLayer.DeliverData(packet.Payload)
	ack := MakeAckPacket(r.ExpectedSeq)
	r.LastAck = ack
	r.ExpectedSeq = 1 - r.ExpectedSeq
	r.channel.Send(ack)
	r.CheckInvariants()
}

func (r *Receiver) resendLastAck() {
	if r.LastAck == nil {
		// nothing accepted yet, so there is nothing useful to say; the
		// sender's timeout covers this case
		r.Debug("No acknowledgment sent yet; staying silent.")
		return
	}
	r.channel.Send(r.LastAck)
}
