// Package unreliable simulates the channel between the two transport
// entities: packets travel with a random transit delay and may be lost or
// corrupted along the way, but packets moving in the same direction are never
// reordered.
package unreliable

import (
	"fmt"
	"log"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

type Config struct {
	// LossProbability and CorruptProbability apply independently to every
	// packet, in [0.0, 1.0). At 1.0 the protocol cannot make progress, so
	// Validate rejects it.
	LossProbability    float64
	CorruptProbability float64
	// Transit delay is drawn uniformly from [MinTransit, MaxTransit).
	// Equal bounds mean a fixed delay of exactly MinTransit.
	MinTransit time.Duration
	MaxTransit time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinTransit: 500 * time.Microsecond,
		MaxTransit: 5 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.LossProbability < 0 || c.LossProbability >= 1 {
		return fmt.Errorf("invalid packet loss probability: %v", c.LossProbability)
	}
	if c.CorruptProbability < 0 || c.CorruptProbability >= 1 {
		return fmt.Errorf("invalid packet corruption probability: %v", c.CorruptProbability)
	}
	if c.MinTransit <= 0 || c.MaxTransit < c.MinTransit {
		return fmt.Errorf("invalid transit delay range: [%v, %v)", c.MinTransit, c.MaxTransit)
	}
	return nil
}

// Link is both directions of the channel. Each direction tracks the arrival
// time of the latest packet still in flight so that a fast new packet can
// never overtake a slow old one.
type Link struct {
	ctx    model.SimContext
	config Config
	ac     collector.ActivityCollector

	lastArrival [2]model.VirtualTime
	// receive[dir] handles packets that finish travelling in direction dir
	receive [2]func(packet *rdt.Packet)
}

// Endpoint is one entity's view of the link. Send transmits toward the peer;
// Attach registers the handler for arrivals from the peer.
type Endpoint struct {
	link    *Link
	sendDir collector.Direction
}

var _ rdt.Channel = &Endpoint{}

// MakeLink builds the channel and returns the sender-side and receiver-side
// endpoints.
func MakeLink(ctx model.SimContext, config Config, ac collector.ActivityCollector) (senderSide, receiverSide *Endpoint) {
	if err := config.Validate(); err != nil {
		log.Panicf("invalid link config: %v", err)
	}
	link := &Link{
		ctx:    ctx,
		config: config,
		ac:     ac,
		lastArrival: [2]model.VirtualTime{
			model.TimeNever, model.TimeNever,
		},
	}
	return &Endpoint{link: link, sendDir: collector.ToReceiver},
		&Endpoint{link: link, sendDir: collector.ToSender}
}

func (e *Endpoint) Link() *Link {
	return e.link
}

func (e *Endpoint) Attach(receive func(packet *rdt.Packet)) {
	inbound := opposite(e.sendDir)
	if e.link.receive[inbound] != nil {
		panic("endpoint already attached")
	}
	e.link.receive[inbound] = receive
}

func opposite(dir collector.Direction) collector.Direction {
	if dir == collector.ToReceiver {
		return collector.ToSender
	}
	return collector.ToReceiver
}

func (e *Endpoint) Send(packet *rdt.Packet) {
	// keep a private copy: the sending entity retains its reference for
	// retransmission, and corruption must not touch that copy
	e.link.transmit(e.sendDir, packet.Copy())
}

// QuiesceTime reports the earliest time by which everything currently in
// flight, in either direction, will have arrived.
func (l *Link) QuiesceTime() model.VirtualTime {
	quiesce := l.ctx.Now()
	for _, arrival := range l.lastArrival {
		if arrival.TimeExists() && arrival.After(quiesce) {
			quiesce = arrival
		}
	}
	return quiesce
}

func (l *Link) debug(explanation string, args ...interface{}) {
	log.Printf("%v [Network] %s", l.ctx.Now(), fmt.Sprintf(explanation, args...))
}

func (l *Link) transmit(dir collector.Direction, packet *rdt.Packet) {
	r := l.ctx.Rand()
	l.ac.OnPacketTransmit(dir, packet)

	if r.Float64() < l.config.LossProbability {
		l.debug("Dropped %v (%v).", packet, dir)
		l.ac.OnPacketLost(dir, packet)
		return
	}

	if r.Float64() < l.config.CorruptProbability {
		l.corrupt(packet)
		l.debug("Corrupted %v (%v).", packet, dir)
		l.ac.OnPacketCorrupted(dir, packet)
	}

	// a packet must arrive no earlier than any packet already in flight in
	// the same direction
	departAt := l.ctx.Now()
	if last := l.lastArrival[dir]; last.TimeExists() && last.After(departAt) {
		departAt = last
	}
	transit := l.config.MinTransit
	if width := l.config.MaxTransit - l.config.MinTransit; width > 0 {
		transit += time.Duration(r.Int63n(int64(width)))
	}
	arriveAt := departAt.Add(transit)
	l.lastArrival[dir] = arriveAt

	l.ctx.SetTimer(arriveAt, "sim.unreliable.Link/Arrive", func() {
		l.ac.OnPacketArrive(dir, packet)
		if l.receive[dir] == nil {
			log.Panicf("no entity attached for packets travelling %v", dir)
		}
		l.receive[dir](packet)
	})
}

func (l *Link) corrupt(packet *rdt.Packet) {
	// same damage distribution as the classic simulator: usually a payload
	// byte, sometimes the sequence field, otherwise the checksum itself
	r := l.ctx.Rand()
	x := r.Float64()
	switch {
	case x < 0.75 && len(packet.Payload) > 0:
		pos := r.Intn(len(packet.Payload))
		packet.Payload[pos] = byte(r.Intn(256))
	case x < 0.875:
		packet.Seq = 0xFF
	default:
		packet.Checksum++
	}
}
