package rdt

import (
	"bytes"
	"testing"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
)

// the test context only needs Now() for debug lines
type testContext struct {
	model.SimContext
}

func (testContext) Now() model.VirtualTime {
	return model.TimeZero
}

type recordingChannel struct {
	sent []*Packet
}

func (c *recordingChannel) Send(packet *Packet) {
	c.sent = append(c.sent, packet.Copy())
}

type recordingTimer struct {
	running bool
	starts  int
	stops   int
}

func (t *recordingTimer) Start(duration time.Duration) {
	t.running = true
	t.starts++
}

func (t *recordingTimer) Stop() {
	t.running = false
	t.stops++
}

type recordingApp struct {
	delivered [][]byte
}

func (a *recordingApp) DeliverData(message []byte) {
	a.delivered = append(a.delivered, append([]byte{}, message...))
}

func makeTestSender() (*Sender, *recordingChannel, *recordingTimer) {
	channel := &recordingChannel{}
	timer := &recordingTimer{}
	return MakeSender(testContext{}, channel, timer, 25*time.Millisecond, "test"), channel, timer
}

func makeTestReceiver() (*Receiver, *recordingChannel, *recordingApp) {
	channel := &recordingChannel{}
	app := &recordingApp{}
	return MakeReceiver(testContext{}, channel, app, "test"), channel, app
}

var testMessage = bytes.Repeat([]byte{'A'}, PayloadSize)

func TestCleanPath(t *testing.T) {
	sender, senderOut, timer := makeTestSender()
	receiver, receiverOut, app := makeTestReceiver()

	if !sender.Submit(testMessage) {
		t.Fatal("idle sender must accept a message")
	}
	if len(senderOut.sent) != 1 {
		t.Fatalf("expected exactly one transmitted packet, got %d", len(senderOut.sent))
	}
	if !timer.running || timer.starts != 1 {
		t.Errorf("timer should be armed exactly once, starts=%d running=%v", timer.starts, timer.running)
	}
	data := senderOut.sent[0]
	if data.Seq != 0 || !data.Validate() || !bytes.Equal(data.Payload, testMessage) {
		t.Errorf("malformed data packet: %v", data)
	}

	receiver.OnPacketArrival(data)
	if len(app.delivered) != 1 || !bytes.Equal(app.delivered[0], testMessage) {
		t.Fatalf("expected exactly one delivery of %q, got %v", testMessage, app.delivered)
	}
	if len(receiverOut.sent) != 1 {
		t.Fatalf("expected exactly one acknowledgment, got %d", len(receiverOut.sent))
	}
	ack := receiverOut.sent[0]
	if ack.Seq != 0 || !ack.IsAck() || !ack.Validate() {
		t.Errorf("malformed acknowledgment: %v", ack)
	}
	if receiver.ExpectedSeq != 1 {
		t.Errorf("receiver should now expect seq=1, not %d", receiver.ExpectedSeq)
	}

	sender.OnPacketArrival(ack)
	if sender.AwaitingAck || sender.Pending != nil {
		t.Error("sender should be idle after a matching acknowledgment")
	}
	if timer.running {
		t.Error("timer should be stopped after acceptance")
	}
	if sender.ExpectedSeq != 1 {
		t.Errorf("sender should advance to seq=1, not %d", sender.ExpectedSeq)
	}
}

func TestBusySenderRejection(t *testing.T) {
	sender, channel, timer := makeTestSender()
	if !sender.Submit(testMessage) {
		t.Fatal("first submission must be accepted")
	}
	pending := sender.Pending
	if sender.Submit(bytes.Repeat([]byte{'B'}, PayloadSize)) {
		t.Error("busy sender must reject a second message")
	}
	if len(channel.sent) != 1 {
		t.Errorf("rejection must not transmit; %d packets on channel", len(channel.sent))
	}
	if timer.starts != 1 {
		t.Errorf("rejection must not touch the timer; starts=%d", timer.starts)
	}
	if sender.Pending != pending {
		t.Error("rejection must not disturb the pending packet")
	}
}

func TestLostAckRecovery(t *testing.T) {
	sender, senderOut, timer := makeTestSender()
	receiver, receiverOut, app := makeTestReceiver()

	sender.Submit(testMessage)
	receiver.OnPacketArrival(senderOut.sent[0])
	// the acknowledgment is lost; the sender times out and retransmits
	sender.OnTimeout()
	if len(senderOut.sent) != 2 {
		t.Fatalf("timeout should retransmit, got %d packets", len(senderOut.sent))
	}
	if !senderOut.sent[1].Equals(senderOut.sent[0]) {
		t.Errorf("retransmission must be identical: %v vs %v", senderOut.sent[1], senderOut.sent[0])
	}
	if timer.starts != 2 {
		t.Errorf("timer should be rearmed on timeout, starts=%d", timer.starts)
	}

	receiver.OnPacketArrival(senderOut.sent[1])
	if len(app.delivered) != 1 {
		t.Fatalf("duplicate must not be redelivered; %d deliveries", len(app.delivered))
	}
	if len(receiverOut.sent) != 2 {
		t.Fatalf("duplicate should trigger a repeated acknowledgment, got %d", len(receiverOut.sent))
	}
	if !receiverOut.sent[1].Equals(receiverOut.sent[0]) {
		t.Errorf("repeated acknowledgment must be identical: %v vs %v", receiverOut.sent[1], receiverOut.sent[0])
	}

	sender.OnPacketArrival(receiverOut.sent[1])
	if sender.AwaitingAck {
		t.Error("sender should accept the repeated acknowledgment and go idle")
	}
}

func TestCorruptedDataHandling(t *testing.T) {
	receiver, channel, app := makeTestReceiver()

	// corruption before anything was ever accepted: nothing useful to say
	garbage := MakeDataPacket(0, testMessage)
	garbage.Payload[3] ^= 0x40
	receiver.OnPacketArrival(garbage)
	if len(app.delivered) != 0 || len(channel.sent) != 0 {
		t.Fatalf("corrupted first packet must produce no delivery and no acknowledgment")
	}

	// accept one packet, then corruption triggers a repeat of its acknowledgment
	receiver.OnPacketArrival(MakeDataPacket(0, testMessage))
	if len(app.delivered) != 1 || len(channel.sent) != 1 {
		t.Fatalf("clean packet should be delivered and acknowledged")
	}
	damaged := MakeDataPacket(1, testMessage)
	damaged.Payload[0] ^= 0x01
	receiver.OnPacketArrival(damaged)
	if len(app.delivered) != 1 {
		t.Error("corrupted packet must not be delivered")
	}
	if len(channel.sent) != 2 || !channel.sent[1].Equals(channel.sent[0]) {
		t.Errorf("corruption should repeat the stored acknowledgment verbatim: %v", channel.sent)
	}
}

func TestStaleAndCorruptAcksIgnored(t *testing.T) {
	sender, senderOut, timer := makeTestSender()

	// complete one exchange so the sender is waiting on seq=1
	sender.Submit(testMessage)
	sender.OnPacketArrival(MakeAckPacket(0))
	sender.Submit(bytes.Repeat([]byte{'B'}, PayloadSize))
	if sender.ExpectedSeq != 1 || !sender.AwaitingAck {
		t.Fatalf("setup failed: seq=%d awaiting=%v", sender.ExpectedSeq, sender.AwaitingAck)
	}
	sent := len(senderOut.sent)

	// a stale acknowledgment for the previous exchange changes nothing
	sender.OnPacketArrival(MakeAckPacket(0))
	if !sender.AwaitingAck || sender.ExpectedSeq != 1 {
		t.Error("stale acknowledgment must be ignored")
	}

	// a corrupted acknowledgment changes nothing either
	corrupt := MakeAckPacket(1)
	corrupt.Checksum++
	sender.OnPacketArrival(corrupt)
	if !sender.AwaitingAck || sender.ExpectedSeq != 1 {
		t.Error("corrupted acknowledgment must be ignored")
	}
	if len(senderOut.sent) != sent {
		t.Error("ignored arrivals must not transmit anything")
	}
	if !timer.running {
		t.Error("timer must stay armed while ignoring arrivals")
	}
}

func TestAckWhileIdleIgnored(t *testing.T) {
	sender, channel, timer := makeTestSender()
	sender.OnPacketArrival(MakeAckPacket(0))
	if sender.AwaitingAck || sender.ExpectedSeq != 0 {
		t.Error("acknowledgment while idle must not change state")
	}
	if len(channel.sent) != 0 || timer.starts != 0 {
		t.Error("acknowledgment while idle must have no side effects")
	}
}
