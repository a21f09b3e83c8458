package harness

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/model"
)

// runTrial advances the simulation in one-second steps until every message
// has been delivered or the limit passes, then checks exactly-once in-order
// delivery against the generated content.
func runTrial(t *testing.T, seed int64, options Options) *Trial {
	sim := component.MakeSimControllerSeeded(seed, model.TimeZero)
	trial := BuildTrial(sim, options, func(explanation string) {
		t.Errorf("verification failure: %s", explanation)
	})

	limit := model.TimeZero.Add(time.Hour)
	now := model.TimeZero
	for trial.Stats.Delivered < options.MessageCount && now.Before(limit) {
		now = now.Add(time.Second)
		sim.Advance(now)
	}

	if trial.Stats.Delivered != options.MessageCount {
		t.Fatalf("only %d of %d messages delivered by %v", trial.Stats.Delivered, options.MessageCount, now)
	}
	if trial.Verifier.Undelivered() != 0 {
		t.Errorf("%d accepted messages never delivered", trial.Verifier.Undelivered())
	}
	if len(trial.Sink.Received) != options.MessageCount {
		t.Fatalf("sink holds %d messages, expected %d", len(trial.Sink.Received), options.MessageCount)
	}
	for i, message := range trial.Sink.Received {
		if !bytes.Equal(message, MessageContent(i)) {
			t.Errorf("delivery %d: got %q, expected %q", i, message, MessageContent(i))
		}
	}
	return trial
}

func TestTrialScenarios(t *testing.T) {
	scenarios := []struct {
		lossProb    float64
		corruptProb float64
	}{
		{0.0, 0.0},
		{0.0, 0.2},
		{0.1, 0.0},
		{0.1, 0.2},
	}
	for _, scenario := range scenarios {
		scenario := scenario
		name := fmt.Sprintf("loss=%v,corrupt=%v", scenario.lossProb, scenario.corruptProb)
		t.Run(name, func(t *testing.T) {
			options := DefaultOptions()
			options.MessageCount = 50
			options.Link.LossProbability = scenario.lossProb
			options.Link.CorruptProbability = scenario.corruptProb
			trial := runTrial(t, 31415, options)

			if scenario.lossProb == 0 && scenario.corruptProb == 0 {
				if trial.Stats.Lost != 0 || trial.Stats.Corrupted != 0 {
					t.Errorf("clean link lost %d and corrupted %d packets",
						trial.Stats.Lost, trial.Stats.Corrupted)
				}
			} else if trial.Stats.Timeouts == 0 {
				// 50 messages across a lossy or noisy link without a single
				// retransmission would be a miracle worth investigating
				t.Error("expected at least one retransmission timeout")
			}
			t.Log(trial.Stats.Summary())
		})
	}
}

func TestCleanTrialPacketCounts(t *testing.T) {
	options := DefaultOptions()
	options.MessageCount = 1
	trial := runTrial(t, 27182, options)

	if trial.Stats.DataSent != 1 {
		t.Errorf("one message on a clean link should take exactly one data packet, took %d", trial.Stats.DataSent)
	}
	if trial.Stats.AcksSent != 1 {
		t.Errorf("one message on a clean link should take exactly one acknowledgment, took %d", trial.Stats.AcksSent)
	}
	if trial.Stats.Timeouts != 0 {
		t.Errorf("no retransmissions expected on a clean link, counted %d", trial.Stats.Timeouts)
	}
	if trial.Stats.Rejected != 0 {
		t.Errorf("a single message can never find the sender busy, counted %d rejections", trial.Stats.Rejected)
	}
}

func TestBusyMessagesAreEventuallyAccepted(t *testing.T) {
	options := DefaultOptions()
	options.MessageCount = 30
	// offer messages much faster than the link round trip so the generator
	// regularly catches the sender busy
	options.MeanInterval = 500 * time.Microsecond
	trial := runTrial(t, 16180, options)

	if trial.Stats.Rejected == 0 {
		t.Error("expected the generator to catch the sender busy at this offered rate")
	}
	if trial.Stats.Submitted != options.MessageCount {
		t.Errorf("every message must eventually be accepted: %d of %d", trial.Stats.Submitted, options.MessageCount)
	}
}

func TestMessageContentCycles(t *testing.T) {
	if !bytes.Equal(MessageContent(0), bytes.Repeat([]byte{'a'}, 20)) {
		t.Errorf("unexpected first message: %q", MessageContent(0))
	}
	if !bytes.Equal(MessageContent(25), bytes.Repeat([]byte{'z'}, 20)) {
		t.Errorf("unexpected 26th message: %q", MessageContent(25))
	}
	if !bytes.Equal(MessageContent(26), MessageContent(0)) {
		t.Error("message content should cycle after z")
	}
}
