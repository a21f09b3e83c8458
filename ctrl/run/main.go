package main

import (
	"flag"
	"log"
	"time"

	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/harness"
	"github.com/ScottHakoda/Networks/sim/model"
)

func main() {
	nmsgs := flag.Int("n", 20, "number of messages to simulate")
	freq := flag.Duration("freq", 50*time.Millisecond, "average interval between generated messages")
	lossProb := flag.Float64("lossprob", 0.0, "packet loss probability [0.0,1.0), 0 means no loss")
	corruptProb := flag.Float64("corruptprob", 0.0, "packet corruption probability [0.0,1.0), 0 means no corruption")
	timeout := flag.Duration("timeout", 25*time.Millisecond, "sender retransmission timeout")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed for the trial")
	trace := flag.String("trace", "", "path for a CSV event trace (optional)")
	limit := flag.Duration("limit", 10*time.Minute, "maximum virtual time to simulate")
	flag.Parse()

	options := harness.DefaultOptions()
	options.MessageCount = *nmsgs
	options.MeanInterval = *freq
	options.Timeout = *timeout
	options.Link.LossProbability = *lossProb
	options.Link.CorruptProbability = *corruptProb
	options.TracePath = *trace
	if err := options.Link.Validate(); err != nil {
		log.Fatalf("Invalid link parameters: %v", err)
	}

	log.Printf("Running trial: nmsgs=%d freq=%v lossprob=%v corruptprob=%v timeout=%v seed=%d",
		*nmsgs, *freq, *lossProb, *corruptProb, *timeout, *seed)

	sim := component.MakeSimControllerSeeded(*seed, model.TimeZero)
	failures := 0
	trial := harness.BuildTrial(sim, options, func(explanation string) {
		failures++
	})

	// advance in steps so we can stop as soon as the trial finishes
	deadline := model.TimeZero.Add(*limit)
	for sim.Now().Before(deadline) {
		sim.Advance(sim.Now().Add(time.Second))
		if trial.Stats.Delivered >= *nmsgs {
			break
		}
	}

	log.Printf("Trial finished at %v: %s", sim.Now(), trial.Stats.Summary())
	if undelivered := trial.Verifier.Undelivered(); undelivered > 0 {
		log.Fatalf("Trial incomplete: %d accepted messages never delivered", undelivered)
	}
	if failures > 0 {
		log.Fatalf("Trial failed verification: %d failures", failures)
	}
	log.Printf("All messages delivered exactly once, in order.")
}
