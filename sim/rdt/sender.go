package rdt

import (
	"fmt"
	"log"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
)

// Sender is the transmitting half of the stop-and-wait protocol: a two-state
// machine that keeps at most one packet in flight and retransmits it on
// timeout until a matching acknowledgment arrives.
type Sender struct {
	ctx     model.SimContext
	Label   string
	channel Channel
	timer   Timer
	timeout time.Duration

	// ExpectedSeq is the sequence bit of the next message to send, and
	// therefore also the bit a matching acknowledgment must carry.
	ExpectedSeq uint8
	// Pending is the transmitted packet retained for retransmission; set
	// exactly while AwaitingAck is true.
	Pending     *Packet
	AwaitingAck bool
}

func MakeSender(ctx model.SimContext, channel Channel, timer Timer, timeout time.Duration, label string) *Sender {
	if timeout <= 0 {
		panic("retransmission timeout must be positive")
	}
	return &Sender{
		ctx:     ctx,
		Label:   label,
		channel: channel,
		timer:   timer,
		timeout: timeout,
	}
}

func (s *Sender) CheckInvariants() {
	if s.ExpectedSeq > 1 {
		log.Panicf("invalid sequence bit: %d", s.ExpectedSeq)
	}
	if s.AwaitingAck != (s.Pending != nil) {
		log.Panicf("invalid state: awaiting_ack=%v pending=%v", s.AwaitingAck, s.Pending)
	}
}

func (s *Sender) Debug(explanation string, args ...interface{}) {
	log.Printf("%v [%s] Sender: %s", s.ctx.Now(), s.Label, fmt.Sprintf(explanation, args...))
}

// Submit accepts a fixed-length message for transmission. While an earlier
// packet is unacknowledged the message is rejected outright, not queued, and
// neither the pending packet nor the timer is touched.
func (s *Sender) Submit(message []byte) bool {
	s.CheckInvariants()
	if s.AwaitingAck {
		s.Debug("Rejecting message %q while awaiting acknowledgment for seq=%d.", message, s.ExpectedSeq)
		return false
	}
	packet := MakeDataPacket(s.ExpectedSeq, message)
	s.Pending = packet
	s.AwaitingAck = true
	s.Debug("Transmitting %v.", packet)
	s.channel.Send(packet)
	s.timer.Start(s.timeout)
	s.CheckInvariants()
	return true
}

// OnPacketArrival handles an acknowledgment from the receiver. A corrupted
// acknowledgment is indistinguishable from a lost one, so it is ignored and
// the timeout is left to recover. A valid acknowledgment with the wrong
// sequence bit is stale and equally ignored.
func (s *Sender) OnPacketArrival(packet *Packet) {
	s.CheckInvariants()
	if !packet.Validate() {
		s.Debug("Discarding corrupted arrival; still awaiting seq=%d.", s.ExpectedSeq)
		return
	}
	if !s.AwaitingAck {
		s.Debug("Ignoring %v while idle.", packet)
		return
	}
	if packet.Seq != s.ExpectedSeq {
		s.Debug("Ignoring stale %v; still awaiting seq=%d.", packet, s.ExpectedSeq)
		return
	}
	s.Debug("Accepted %v; returning to idle.", packet)
	s.timer.Stop()
	s.ExpectedSeq = 1 - s.ExpectedSeq
	s.Pending = nil
	s.AwaitingAck = false
	s.CheckInvariants()
}

// OnTimeout retransmits the pending packet unchanged and rearms the timer.
// There is no retry limit; retransmission continues until a matching valid
// acknowledgment arrives.
func (s *Sender) OnTimeout() {
	s.CheckInvariants()
	if !s.AwaitingAck {
		log.Panicf("timer fired with no packet pending")
	}
	s.Debug("Timed out; retransmitting %v.", s.Pending)
	s.channel.Send(s.Pending)
	s.timer.Start(s.timeout)
	s.CheckInvariants()
}
