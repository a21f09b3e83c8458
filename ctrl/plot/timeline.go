package main

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Span is a labelled interval of activity on a row.
type Span struct {
	Start float64
	End   float64
	Color color.Color
	Label string
}

// Tick is an instantaneous event on a row.
type Tick struct {
	Time  float64
	Glyph draw.GlyphStyle
}

// TimelineRow renders one horizontal band of spans and ticks at a fixed Y
// location on a nominal axis.
type TimelineRow struct {
	Spans    []Span
	Ticks    []Tick
	Location float64
	Height   vg.Length
	Box      draw.LineStyle
	Text     draw.TextStyle
}

var _ plot.Plotter = &TimelineRow{}

func NewTimelineRow(spans []Span, ticks []Tick, location float64, height vg.Length) *TimelineRow {
	return &TimelineRow{
		Spans:    spans,
		Ticks:    ticks,
		Location: location,
		Height:   height,
		Box:      plotter.DefaultLineStyle,
		Text: text.Style{
			Font:    font.From(plotter.DefaultFont, plotter.DefaultFontSize),
			XAlign:  draw.XCenter,
			YAlign:  draw.YCenter,
			Handler: plot.DefaultTextHandler,
		},
	}
}

func (t *TimelineRow) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	y := trY(t.Location)
	if !c.ContainsY(y) {
		return
	}
	for _, span := range t.Spans {
		xStart, xEnd := trX(span.Start), trX(span.End)
		corners := []vg.Point{
			{X: xStart, Y: y - t.Height/2},
			{X: xEnd, Y: y - t.Height/2},
			{X: xEnd, Y: y + t.Height/2},
			{X: xStart, Y: y + t.Height/2},
			{X: xStart, Y: y - t.Height/2},
		}
		c.FillPolygon(span.Color, c.ClipPolygonX(corners[0:4]))
		c.StrokeLines(t.Box, c.ClipLinesX(corners)...)
		if span.Label != "" {
			c.FillText(t.Text, vg.Point{X: (xStart + xEnd) / 2, Y: y}, span.Label)
		}
	}
	for _, tick := range t.Ticks {
		c.DrawGlyph(tick.Glyph, vg.Point{X: trX(tick.Time), Y: y})
	}
}

// rowXY exposes every span boundary and tick as XY points so that gonum can
// autoscale the axes around them.
type rowXY TimelineRow

func (t *rowXY) Len() int {
	return len(t.Ticks) + 2*len(t.Spans)
}

func (t *rowXY) XY(i int) (x, y float64) {
	if i < len(t.Ticks) {
		return t.Ticks[i].Time, t.Location
	}
	i -= len(t.Ticks)
	if i < len(t.Spans) {
		return t.Spans[i].Start, t.Location
	}
	return t.Spans[i-len(t.Spans)].End, t.Location
}

func (t *TimelineRow) DataRange() (xmin, xmax, ymin, ymax float64) {
	return plotter.XYRange((*rowXY)(t))
}
