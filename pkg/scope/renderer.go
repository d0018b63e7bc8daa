package scope

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/serialplot/pkg/sample"
)

const (
	hDivisions   = 4
	markerRadius = 3
)

type chartRenderer struct {
	chart *Chart

	bg      *canvas.Rectangle
	objects []fyne.CanvasObject

	lastSize fyne.Size
}

func (r *chartRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 320)
}

func (r *chartRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.chart.BaseWidget.Refresh()
	}
}

// Refresh rebuilds all canvas objects from the current snapshot.
func (r *chartRenderer) Refresh() {
	snap := r.chart.Snapshot()

	size := r.chart.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.bg}
	for i, panel := range panels(size, len(sample.Channels)) {
		ch := sample.Channels[i]
		r.drawPanel(panel, ch, snap)
	}
}

func (r *chartRenderer) drawPanel(panel rect, ch sample.Channel, snap sample.Snapshot) {
	area := panel.plotArea()
	if area.W == 0 || area.H == 0 {
		return
	}
	lo, hi := yRange(snap.Series(ch))

	title := canvas.NewText(ch.String(), seriesColors[ch])
	title.TextSize = 12
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Move(fyne.NewPos(area.X, panel.Y+4))
	r.objects = append(r.objects, title)

	r.drawGrid(area, lo, hi)

	if len(snap) == 0 {
		text := canvas.NewText("No data", labelColor)
		text.TextSize = 11
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(area.X+area.W/2, area.Y+area.H/2-6))
		r.objects = append(r.objects, text)
		return
	}

	points := snap.Points(ch)
	positions := make([]fyne.Position, len(points))
	for i, p := range points {
		positions[i] = project(area, p, lo, hi)
	}

	for i := range len(positions) - 1 {
		line := canvas.NewLine(seriesColors[ch])
		line.Position1 = positions[i]
		line.Position2 = positions[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}

	for _, pos := range positions {
		marker := canvas.NewCircle(seriesColors[ch])
		marker.Move(pos.SubtractXY(markerRadius, markerRadius))
		marker.Resize(fyne.NewSquareSize(2 * markerRadius))
		r.objects = append(r.objects, marker)
	}
}

// drawGrid draws value lines with labels and one vertical line per window slot.
func (r *chartRenderer) drawGrid(area rect, lo, hi float64) {
	step := hi/hDivisions - lo/hDivisions
	precision := labelPrecision(lo, hi, step)

	for i := range hDivisions + 1 {
		y := area.Y + float32(i)*area.H/hDivisions
		r.addLine(fyne.NewPos(area.X, y), fyne.NewPos(area.X+area.W, y))

		value := hi - float64(i)*step
		text := canvas.NewText(formatValue(value, precision), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(area.X-5, y-6))
		r.objects = append(r.objects, text)
	}

	for i := range sample.Depth {
		x := area.X + float32(i)*area.W/float32(sample.Depth-1)
		r.addLine(fyne.NewPos(x, area.Y), fyne.NewPos(x, area.Y+area.H))

		text := canvas.NewText(formatValue(float64(i), 4), labelColor)
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x, area.Y+area.H+4))
		r.objects = append(r.objects, text)
	}
}

func (r *chartRenderer) addLine(from, to fyne.Position) {
	line := canvas.NewLine(gridColor)
	line.Position1 = from
	line.Position2 = to
	line.StrokeWidth = 1
	r.objects = append(r.objects, line)
}

func (r *chartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *chartRenderer) Destroy() {}
