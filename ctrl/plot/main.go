package main

import (
	"flag"
	"image/color"
	"log"
	"strings"

	"github.com/ScottHakoda/Networks/sim/component"
	"github.com/ScottHakoda/Networks/sim/harness"
	"github.com/ScottHakoda/Networks/sim/model"
	"github.com/ScottHakoda/Networks/sim/rdt"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	rowSender   = 2
	rowNetwork  = 1
	rowReceiver = 0
)

var (
	busyColor = color.RGBA{128, 128, 255, 255}
	dataColor = color.RGBA{64, 192, 64, 255}
	ackColor  = color.RGBA{192, 192, 64, 255}
)

func seconds(t model.VirtualTime) float64 {
	return t.Since(model.TimeZero).Seconds()
}

type inFlight struct {
	start float64
	seq   uint8
}

// buildRows turns a decoded trace into three timeline rows: the sender's
// busy spans and timeouts, every packet's transit across the network, and
// the receiver's deliveries.
func buildRows(records []component.TraceRecord) []*TimelineRow {
	var senderSpans, networkSpans []Span
	var senderTicks, networkTicks, receiverTicks []Tick

	lostGlyph := draw.GlyphStyle{Color: color.RGBA{192, 0, 0, 255}, Radius: vg.Points(4), Shape: draw.CrossGlyph{}}
	corruptGlyph := draw.GlyphStyle{Color: color.RGBA{192, 96, 0, 255}, Radius: vg.Points(4), Shape: draw.RingGlyph{}}
	timeoutGlyph := draw.GlyphStyle{Color: color.Black, Radius: vg.Points(5), Shape: draw.PyramidGlyph{}}
	deliverGlyph := draw.GlyphStyle{Color: color.RGBA{0, 128, 0, 255}, Radius: vg.Points(4), Shape: draw.BoxGlyph{}}

	var busyStart float64
	busy := false
	var senderBit uint8
	transit := map[string][]inFlight{}

	for _, record := range records {
		t := seconds(record.Timestamp)
		switch {
		case record.Channel == harness.ChanSubmit:
			busyStart, busy = t, true

		case record.Channel == harness.ChanTimeout:
			senderTicks = append(senderTicks, Tick{Time: t, Glyph: timeoutGlyph})

		case record.Channel == harness.ChanDeliver:
			receiverTicks = append(receiverTicks, Tick{Time: t, Glyph: deliverGlyph})

		case strings.HasSuffix(record.Channel, harness.ChanTransmit):
			packet, err := rdt.DecodePacket(record.Bytes)
			if err != nil {
				log.Fatalf("Undecodable packet in trace: %v", err)
			}
			dir := strings.TrimSuffix(record.Channel, harness.ChanTransmit)
			transit[dir] = append(transit[dir], inFlight{start: t, seq: packet.Seq})

		case strings.HasSuffix(record.Channel, harness.ChanLost):
			// the loss record directly follows its transmit record, so the
			// doomed packet is the most recent one in this direction
			dir := strings.TrimSuffix(record.Channel, harness.ChanLost)
			queue := transit[dir]
			transit[dir] = queue[:len(queue)-1]
			networkTicks = append(networkTicks, Tick{Time: t, Glyph: lostGlyph})

		case strings.HasSuffix(record.Channel, harness.ChanCorrupt):
			networkTicks = append(networkTicks, Tick{Time: t, Glyph: corruptGlyph})

		case strings.HasSuffix(record.Channel, harness.ChanArrive):
			dir := strings.TrimSuffix(record.Channel, harness.ChanArrive)
			queue := transit[dir]
			if len(queue) == 0 {
				log.Fatalf("Arrival without transmission at %v in trace", record.Timestamp)
			}
			flight := queue[0]
			transit[dir] = queue[1:]
			spanColor := dataColor
			if dir == "ack" {
				spanColor = ackColor
			}
			networkSpans = append(networkSpans, Span{
				Start: flight.start,
				End:   t,
				Color: spanColor,
			})
			if dir == "ack" && busy {
				packet, err := rdt.DecodePacket(record.Bytes)
				if err != nil {
					log.Fatalf("Undecodable packet in trace: %v", err)
				}
				if packet.Validate() && packet.Seq == senderBit {
					senderSpans = append(senderSpans, Span{Start: busyStart, End: t, Color: busyColor})
					busy = false
					senderBit = 1 - senderBit
				}
			}
		}
	}
	if busy && len(records) > 0 {
		end := seconds(records[len(records)-1].Timestamp)
		senderSpans = append(senderSpans, Span{Start: busyStart, End: end, Color: busyColor})
	}

	return []*TimelineRow{
		NewTimelineRow(senderSpans, senderTicks, rowSender, vg.Points(18)),
		NewTimelineRow(networkSpans, networkTicks, rowNetwork, vg.Points(12)),
		NewTimelineRow(nil, receiverTicks, rowReceiver, vg.Points(18)),
	}
}

func main() {
	trace := flag.String("trace", "trial.csv", "path of the CSV event trace to render")
	export := flag.String("export", "timeline.png", "path for PNG export")
	headless := flag.Bool("headless", false, "write the PNG without opening a window")
	flag.Parse()

	records, err := component.DecodeTrace(*trace)
	if err != nil {
		log.Fatalf("Cannot decode trace: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("Trace %s contains no events", *trace)
	}

	p := plot.New()
	p.Title.Text = "Stop-and-Wait Transport Timeline"
	p.X.Label.Text = "Seconds"
	for _, row := range buildRows(records) {
		p.Add(row)
	}
	p.NominalY("Receiver", "Network", "Sender")

	if *headless {
		if err := SavePlot(p, 14*vg.Inch, 6*vg.Inch, *export, "png"); err != nil {
			log.Fatalf("Cannot save plot: %v", err)
		}
		log.Printf("Wrote timeline to %s", *export)
		return
	}
	if err := DisplayPlot(p, *export); err != nil {
		log.Fatal(err)
	}
}
