package harness

import (
	"fmt"

	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

// Stats counts trial activity for the end-of-run summary.
type Stats struct {
	Submitted int
	Rejected  int
	DataSent  int
	AcksSent  int
	Lost      int
	Corrupted int
	Timeouts  int
	Delivered int
}

var _ collector.ActivityCollector = &Stats{}

func (s *Stats) OnMessageSubmitted(message []byte, accepted bool) {
	if accepted {
		s.Submitted++
	} else {
		s.Rejected++
	}
}

func (s *Stats) OnPacketTransmit(dir collector.Direction, packet *rdt.Packet) {
	if dir == collector.ToReceiver {
		s.DataSent++
	} else {
		s.AcksSent++
	}
}

func (s *Stats) OnPacketLost(dir collector.Direction, packet *rdt.Packet) {
	s.Lost++
}

func (s *Stats) OnPacketCorrupted(dir collector.Direction, packet *rdt.Packet) {
	s.Corrupted++
}

func (s *Stats) OnPacketArrive(dir collector.Direction, packet *rdt.Packet) {}

func (s *Stats) OnTimeout() {
	s.Timeouts++
}

func (s *Stats) OnDeliverData(message []byte) {
	s.Delivered++
}

func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"%d messages accepted (%d rejections), %d delivered; "+
			"%d data packets and %d acknowledgments transmitted, %d lost, %d corrupted, %d timeouts",
		s.Submitted, s.Rejected, s.Delivered,
		s.DataSent, s.AcksSent, s.Lost, s.Corrupted, s.Timeouts)
}
