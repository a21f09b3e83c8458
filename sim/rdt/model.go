package rdt

import (
	"time"
)

// The transport entities never hold references to each other; they only drive
// these collaborator interfaces, which the surrounding harness implements.

// Channel carries packets toward the peer entity. Transmission is
// fire-and-forget: the channel may lose or corrupt a packet, but it never
// reorders packets travelling in the same direction.
type Channel interface {
	Send(packet *Packet)
}

// Timer is the sender's one-shot retransmission timer. At most one timer is
// ever armed: Start on a running timer replaces it, so a stale expiry can
// never fire against a packet that is no longer pending.
type Timer interface {
	Start(duration time.Duration)
	// Stop disarms the timer; a no-op if it is not running.
	Stop()
}

// AppLayer accepts payloads on the receiving side. The receiver calls
// DeliverData at most once per accepted packet, in submission order.
type AppLayer interface {
	DeliverData(message []byte)
}
