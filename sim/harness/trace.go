package harness

import (
	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"github.com/ScottHakoda/Networks/sim/verifier/collector"
)

// Trace channel names, shared with ctrl/plot.
const (
	ChanSubmit   = "app.submit"
	ChanReject   = "app.reject"
	ChanDeliver  = "app.deliver"
	ChanTimeout  = "sender.timeout"
	ChanTransmit = ".transmit"
	ChanLost     = ".lost"
	ChanCorrupt  = ".corrupt"
	ChanArrive   = ".arrive"
)

// DirPrefix is the trace channel prefix for a link direction.
func DirPrefix(dir collector.Direction) string {
	if dir == collector.ToReceiver {
		return "data"
	}
	return "ack"
}

// TraceCollector records every trial event into a TraceRecorder, with packets
// stored in their wire encoding so the trace can be decoded offline.
type TraceCollector struct {
	recorder *component.TraceRecorder
}

var _ collector.ActivityCollector = &TraceCollector{}

func MakeTraceCollector(recorder *component.TraceRecorder) *TraceCollector {
	return &TraceCollector{recorder: recorder}
}

func (tc *TraceCollector) OnMessageSubmitted(message []byte, accepted bool) {
	if accepted {
		tc.recorder.Record(ChanSubmit, message)
	} else {
		tc.recorder.Record(ChanReject, message)
	}
}

func (tc *TraceCollector) OnPacketTransmit(dir collector.Direction, packet *rdt.Packet) {
	tc.recorder.Record(DirPrefix(dir)+ChanTransmit, packet.Encode())
}

func (tc *TraceCollector) OnPacketLost(dir collector.Direction, packet *rdt.Packet) {
	tc.recorder.Record(DirPrefix(dir)+ChanLost, packet.Encode())
}

func (tc *TraceCollector) OnPacketCorrupted(dir collector.Direction, packet *rdt.Packet) {
	tc.recorder.Record(DirPrefix(dir)+ChanCorrupt, packet.Encode())
}

func (tc *TraceCollector) OnPacketArrive(dir collector.Direction, packet *rdt.Packet) {
	tc.recorder.Record(DirPrefix(dir)+ChanArrive, packet.Encode())
}

func (tc *TraceCollector) OnTimeout() {
	tc.recorder.Record(ChanTimeout, nil)
}

func (tc *TraceCollector) OnDeliverData(message []byte) {
	tc.recorder.Record(ChanDeliver, message)
}
