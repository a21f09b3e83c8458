// Package harness assembles the pieces the transport core treats as external
// collaborators: the unreliable link, the retransmission timer, traffic
// generation, the application-layer sink, and trial-level observation.
package harness

import (
	"time"

	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/unreliable"
	"github.com/ScottHakoda/Networks/sim/verifier"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

type Options struct {
	MessageCount int
	// MeanInterval is the average spacing between generated messages;
	// actual interarrival times are exponentially distributed.
	MeanInterval time.Duration
	// Timeout is the sender's retransmission timeout. It should comfortably
	// exceed a round trip at the link's maximum transit delay.
	Timeout time.Duration
	Link    unreliable.Config
	// TracePath, when nonempty, records every trial event to a CSV trace
	// that ctrl/plot can render.
	TracePath string
}

func DefaultOptions() Options {
	return Options{
		MessageCount: 20,
		MeanInterval: 50 * time.Millisecond,
		Timeout:      25 * time.Millisecond,
		Link:         unreliable.DefaultConfig(),
	}
}

type Trial struct {
	Sender   *rdt.Sender
	Receiver *rdt.Receiver
	Link     *unreliable.Link
	Sink     *DeliverySink
	Stats    *Stats
	Verifier *verifier.ActivityVerifier
}

// BuildTrial wires a complete simulated trial: sender and receiver joined
// only by the unreliable link, with statistics, verification, and optional
// tracing observing from the outside. onFailure may be nil.
func BuildTrial(ctx model.SimContext, options Options, onFailure func(explanation string)) *Trial {
	stats := &Stats{}
	ver := verifier.MakeActivityVerifier(ctx, onFailure)
	recorder := component.MakeNullTraceRecorder()
	if options.TracePath != "" {
		recorder = component.MakeTraceRecorder(ctx, options.TracePath)
	}
	ac := collector.Multi{stats, ver, MakeTraceCollector(recorder)}

	senderEnd, receiverEnd := unreliable.MakeLink(ctx, options.Link, ac)
	sink := MakeDeliverySink(ctx, ac)
	receiver := rdt.MakeReceiver(ctx, receiverEnd, sink, "B")

	var sender *rdt.Sender
	timer := MakeRetransmitTimer(ctx, "sim.harness.Trial/Retransmit", func() {
		ac.OnTimeout()
		sender.OnTimeout()
	})
	sender = rdt.MakeSender(ctx, senderEnd, timer, options.Timeout, "A")

	senderEnd.Attach(sender.OnPacketArrival)
	receiverEnd.Attach(receiver.OnPacketArrival)

	link := senderEnd.Link()
	AttachMessageGenerator(ctx, sender, link, options.MessageCount, options.MeanInterval, ac)

	return &Trial{
		Sender:   sender,
		Receiver: receiver,
		Link:     link,
		Sink:     sink,
		Stats:    stats,
		Verifier: ver,
	}
}
