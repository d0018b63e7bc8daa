// Package export renders a snapshot of both channels to a PNG image.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/itohio/serialplot/pkg/sample"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ErrEmptySnapshot is returned when there is nothing to export.
var ErrEmptySnapshot = errors.New("no samples to export")

const (
	Width  = 8 * vg.Inch
	Height = 6 * vg.Inch
)

var seriesColors = []color.Color{
	color.RGBA{R: 255, G: 140, B: 0, A: 255},
	color.RGBA{R: 30, G: 120, B: 220, A: 255},
}

// FileName returns the default export path in dir for a snapshot taken at t.
func FileName(dir string, t time.Time) string {
	return filepath.Join(dir, "serialplot-"+t.Format("20060102-150405")+".png")
}

// Save writes snap as PNG to path.
func Save(path string, snap sample.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteTo(f, snap); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// WriteTo renders snap as two stacked plots and encodes them as PNG to w.
func WriteTo(w io.Writer, snap sample.Snapshot) error {
	if len(snap) == 0 {
		return ErrEmptySnapshot
	}

	rows := make([][]*plot.Plot, len(sample.Channels))
	for i, ch := range sample.Channels {
		p, err := channelPlot(snap, ch)
		if err != nil {
			return fmt.Errorf("failed to plot %s: %w", ch, err)
		}
		rows[i] = []*plot.Plot{p}
	}

	img := vgimg.New(Width, Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: len(rows),
		Cols: 1,
		PadX: vg.Millimeter,
		PadY: 2 * vg.Millimeter,
	}

	canvases := plot.Align(rows, tiles, dc)
	for i := range rows {
		rows[i][0].Draw(canvases[i][0])
	}

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

func channelPlot(snap sample.Snapshot, ch sample.Channel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = ch.String()
	p.X.Label.Text = "Sample"
	p.Y.Label.Text = "Value"
	p.X.Min = 0
	p.X.Max = sample.Depth - 1
	p.Add(plotter.NewGrid())

	pts := snap.Points(ch)
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, err
	}
	line.Color = seriesColors[ch]
	line.Width = vg.Points(1.5)
	points.Color = seriesColors[ch]
	points.Shape = draw.CircleGlyph{}
	p.Add(line, points)

	return p, nil
}
