package collector

import (
	"github.com/ScottHakoda/Networks/sim/rdt"
)

// Direction identifies which way a packet is travelling across the link.
type Direction uint8

const (
	// ToReceiver is the data direction: sending entity toward receiving entity.
	ToReceiver Direction = iota
	// ToSender is the acknowledgment direction.
	ToSender
)

func (d Direction) String() string {
	switch d {
	case ToReceiver:
		return "Sender->Receiver"
	case ToSender:
		return "Receiver->Sender"
	default:
		return "Unknown"
	}
}

// ActivityCollector observes the semantic events of a trial: traffic offered
// to the sender, packets crossing the link (including the ones the link
// destroys), the sender's timeouts, and payloads reaching the application.
// The transport entities themselves never see this interface.
type ActivityCollector interface {
	OnMessageSubmitted(message []byte, accepted bool)
	OnPacketTransmit(dir Direction, packet *rdt.Packet)
	OnPacketLost(dir Direction, packet *rdt.Packet)
	OnPacketCorrupted(dir Direction, packet *rdt.Packet)
	OnPacketArrive(dir Direction, packet *rdt.Packet)
	OnTimeout()
	OnDeliverData(message []byte)
}

// Nop is an ActivityCollector that discards everything.
type Nop struct{}

var _ ActivityCollector = Nop{}

func (Nop) OnMessageSubmitted(message []byte, accepted bool)          {}
func (Nop) OnPacketTransmit(dir Direction, packet *rdt.Packet)        {}
func (Nop) OnPacketLost(dir Direction, packet *rdt.Packet)            {}
func (Nop) OnPacketCorrupted(dir Direction, packet *rdt.Packet)       {}
func (Nop) OnPacketArrive(dir Direction, packet *rdt.Packet)          {}
func (Nop) OnTimeout()                                                {}
func (Nop) OnDeliverData(message []byte)                              {}

// Multi fans every event out to each collector in order.
type Multi []ActivityCollector

var _ ActivityCollector = Multi{}

func (m Multi) OnMessageSubmitted(message []byte, accepted bool) {
	for _, ac := range m {
		ac.OnMessageSubmitted(message, accepted)
	}
}

func (m Multi) OnPacketTransmit(dir Direction, packet *rdt.Packet) {
	for _, ac := range m {
		ac.OnPacketTransmit(dir, packet)
	}
}

func (m Multi) OnPacketLost(dir Direction, packet *rdt.Packet) {
	for _, ac := range m {
		ac.OnPacketLost(dir, packet)
	}
}

func (m Multi) OnPacketCorrupted(dir Direction, packet *rdt.Packet) {
	for _, ac := range m {
		ac.OnPacketCorrupted(dir, packet)
	}
}

func (m Multi) OnPacketArrive(dir Direction, packet *rdt.Packet) {
	for _, ac := range m {
		ac.OnPacketArrive(dir, packet)
	}
}

func (m Multi) OnTimeout() {
	for _, ac := range m {
		ac.OnTimeout()
	}
}

func (m Multi) OnDeliverData(message []byte) {
	for _, ac := range m {
		ac.OnDeliverData(message)
	}
}
