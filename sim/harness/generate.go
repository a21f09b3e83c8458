package harness

import (
	"bytes"
	"log"
	"time"

	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/unreliable"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

// MessageContent builds the nth generated message: 20 repetitions of a
// letter cycling a..z, so a misordered or duplicated delivery is obvious in
// logs and traces.
func MessageContent(n int) []byte {
	return bytes.Repeat([]byte{byte('a' + n%26)}, rdt.PayloadSize)
}

// AttachMessageGenerator offers count messages to the sender with
// exponentially distributed interarrival times averaging meanInterval. A
// message the sender rejects is not lost: it is offered again once
// everything currently in flight has had time to arrive.
func AttachMessageGenerator(ctx model.SimContext, sender *rdt.Sender, link *unreliable.Link,
	count int, meanInterval time.Duration, ac collector.ActivityCollector) {
	if meanInterval <= 0 {
		panic("mean interarrival time must be positive")
	}
	next := 0
	var offer func()
	offer = func() {
		message := MessageContent(next)
		accepted := sender.Submit(message)
		ac.OnMessageSubmitted(message, accepted)
		if !accepted {
			// retry just after the link quiesces, by which point the sender
			// has either been acknowledged or timed out at least once
			retryAt := link.QuiesceTime().Add(10 * time.Microsecond)
			log.Printf("%v [Harness] Sender busy; will offer %q again at %v.", ctx.Now(), message, retryAt)
			ctx.SetTimer(retryAt, "sim.harness.MessageGenerator/Retry", offer)
			return
		}
		next++
		if next < count {
			interval := time.Duration(ctx.Rand().ExpFloat64() * float64(meanInterval))
			if interval <= 0 {
				interval = time.Nanosecond
			}
			ctx.SetTimer(ctx.Now().Add(interval), "sim.harness.MessageGenerator/Offer", offer)
		}
	}
	if count > 0 {
		ctx.Later("sim.harness.MessageGenerator/First", offer)
	}
}
