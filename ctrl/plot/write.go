package main

import (
	"io"
	"os"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

func WritePlot(p *plot.Plot, width, height vg.Length, output io.Writer, format string) error {
	w, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

// SavePlot renders the plot to path, with the format inferred by gonum from
// the extension passed in.
func SavePlot(p *plot.Plot, width, height vg.Length, path string, format string) (err error) {
	output, cerr := os.Create(path)
	if cerr != nil {
		return cerr
	}
	defer func() {
		if e := output.Close(); e != nil {
			err = multierror.Append(err, e)
		}
	}()
	return WritePlot(p, width, height, output, format)
}
