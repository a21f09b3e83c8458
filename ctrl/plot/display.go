package main

import (
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vggio"
)

type plotWidget struct {
	Plot *plot.Plot
	DPI  int
}

func (p *plotWidget) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	width := vg.Points(float64(size.X) * vg.Inch.Points() / float64(p.DPI))
	height := vg.Points(float64(size.Y) * vg.Inch.Points() / float64(p.DPI))
	cnv := vggio.New(gtx, width, height, vggio.UseDPI(p.DPI))
	p.Plot.Draw(draw.New(cnv))
	return layout.Dimensions{Size: size}
}

// DisplayPlot opens an interactive window showing the plot. Q or Escape
// closes it; E exports a PNG next to the trace.
func DisplayPlot(p *plot.Plot, exportPath string) error {
	widget := &plotWidget{
		Plot: p,
		DPI:  128,
	}

	go func() {
		win := app.NewWindow(
			app.Title("Transport Timeline"),
			app.Size(unit.Px(1280), unit.Px(720)),
		)
		defer win.Close()

		for e := range win.Events() {
			switch e := e.(type) {
			case system.FrameEvent:
				ops := new(op.Ops)
				gtx := layout.NewContext(ops, e)
				layout.UniformInset(unit.Dp(24)).Layout(gtx, widget.Layout)
				e.Frame(ops)

			case key.Event:
				switch e.Name {
				case "Q", key.NameEscape:
					win.Close()
				case "E":
					if e.State == key.Press && exportPath != "" {
						if err := SavePlot(p, 14*vg.Inch, 6*vg.Inch, exportPath, "png"); err != nil {
							log.Printf("Export failed: %v", err)
						} else {
							log.Printf("Exported timeline to %s", exportPath)
						}
					}
				}

			case system.DestroyEvent:
				os.Exit(0)
			}
		}
	}()

	app.Main()
	return nil
}
