package scope

import (
	"math"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"github.com/itohio/serialplot/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYRange(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"empty", nil, 0, 1},
		{"spread", []float64{0, 10, 5}, -1, 11},
		{"negative", []float64{-20, -10}, -21, -9},
		{"flat", []float64{5, 5, 5}, 4.5, 5.5},
		{"flat zero", []float64{0}, -0.1, 0.1},
		{"close large values", []float64{1e8, 1e8 + 1, 1e8 + 2}, 1e8 - 0.2, 1e8 + 2.2},
		{"beyond float32", []float64{1e300, 2e300}, 0.9e300, 2.1e300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := yRange(tt.values)
			assert.InEpsilon(t, tt.hi-tt.lo, hi-lo, 1e-6)
			assert.InDelta(t, tt.lo, lo, math.Abs(tt.lo)*1e-12+1e-9)
			assert.InDelta(t, tt.hi, hi, math.Abs(tt.hi)*1e-12+1e-9)
		})
	}
}

func TestYRange_Extremes(t *testing.T) {
	lo, hi := yRange([]float64{-math.MaxFloat64, math.MaxFloat64})
	assert.False(t, math.IsInf(lo, 0) || math.IsNaN(lo))
	assert.False(t, math.IsInf(hi, 0) || math.IsNaN(hi))
	assert.Less(t, lo, hi)

	area := rect{W: 90, H: 100}
	pos := project(area, sample.Point{Y: 0}, lo, hi)
	assert.InDelta(t, 50, pos.Y, 1e-3)
}

func TestProject_LargeValues(t *testing.T) {
	area := rect{X: 0, Y: 0, W: 90, H: 100}

	values := []float64{1e8, 1e8 + 1, 1e8 + 2}
	lo, hi := yRange(values)
	var ys []float32
	for i, v := range values {
		ys = append(ys, project(area, sample.Point{X: float64(i), Y: v}, lo, hi).Y)
	}
	// Distinct values map to distinct rows, rising upwards
	assert.Greater(t, ys[0], ys[1])
	assert.Greater(t, ys[1], ys[2])

	lo, hi = yRange([]float64{1e300, 2e300})
	top := project(area, sample.Point{Y: 2e300}, lo, hi)
	bottom := project(area, sample.Point{Y: 1e300}, lo, hi)
	assert.False(t, math.IsNaN(float64(top.Y)) || math.IsNaN(float64(bottom.Y)))
	assert.InDelta(t, 100.0/12*1, top.Y, 1e-3)
	assert.InDelta(t, 100-100.0/12*1, bottom.Y, 1e-3)
}

func TestPanels(t *testing.T) {
	assert.Nil(t, panels(fyne.NewSize(100, 100), 0))

	ps := panels(fyne.NewSize(400, 208), 2)
	require.Len(t, ps, 2)
	assert.Equal(t, rect{Y: 0, W: 400, H: 100}, ps[0])
	assert.Equal(t, rect{Y: 108, W: 400, H: 100}, ps[1])

	area := ps[1].plotArea()
	assert.Equal(t, marginLeft, area.X)
	assert.Equal(t, 108+marginTop, area.Y)
	assert.Equal(t, 400-marginLeft-marginRight, area.W)
	assert.Equal(t, 100-marginTop-marginBottom, area.H)

	tiny := rect{W: 10, H: 10}.plotArea()
	assert.Zero(t, tiny.W)
	assert.Zero(t, tiny.H)
}

func TestProject(t *testing.T) {
	area := rect{X: 10, Y: 20, W: 90, H: 50}

	pos := project(area, sample.Point{X: 0, Y: -1}, -1, 1)
	assert.Equal(t, fyne.NewPos(10, 70), pos)

	pos = project(area, sample.Point{X: float64(sample.Depth - 1), Y: 1}, -1, 1)
	assert.Equal(t, fyne.NewPos(100, 20), pos)

	pos = project(area, sample.Point{X: 3, Y: 0}, -1, 1)
	assert.InDelta(t, 40, pos.X, 1e-4)
	assert.InDelta(t, 45, pos.Y, 1e-4)

	// Degenerate range sits on the bottom edge
	pos = project(area, sample.Point{X: 0, Y: 3}, 3, 3)
	assert.Equal(t, float32(70), pos.Y)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "0", formatValue(0, 4))
	assert.Equal(t, "0", formatValue(1e-9, 4))
	assert.Equal(t, "9", formatValue(9, 4))
	assert.Equal(t, "-1.5", formatValue(-1.5, 4))
	assert.Equal(t, "1235", formatValue(1234.6, 4))
	assert.Equal(t, "1e+300", formatValue(1e300, 4))
}

func TestLabelPrecision(t *testing.T) {
	assert.Equal(t, 4, labelPrecision(-1, 11, 3))
	assert.Equal(t, 4, labelPrecision(0, 0, 0))

	lo, hi := yRange([]float64{1e8, 1e8 + 1, 1e8 + 2})
	step := (hi - lo) / 4
	p := labelPrecision(lo, hi, step)
	assert.Equal(t, 10, p)
	assert.NotEqual(t, formatValue(hi, p), formatValue(hi-step, p))

	assert.Equal(t, 15, labelPrecision(1e15, 1e15+1e-3, 1e-3))
}

func countObjects(objs []fyne.CanvasObject) (circles int, noData int) {
	for _, o := range objs {
		switch v := o.(type) {
		case *canvas.Circle:
			circles++
		case *canvas.Text:
			if v.Text == "No data" {
				noData++
			}
		}
	}
	return circles, noData
}

func TestChart_Render(t *testing.T) {
	test.NewTempApp(t)

	c := New()
	r := test.TempWidgetRenderer(t, c)
	c.Resize(fyne.NewSize(400, 320))
	r.Refresh()

	circles, noData := countObjects(r.Objects())
	assert.Equal(t, 0, circles)
	assert.Equal(t, 2, noData)

	snap := sample.Snapshot{{A: 1, B: 2}, {A: 3, B: 1}, {A: 2, B: 5}}
	c.Update(snap)
	r.Refresh()

	assert.Equal(t, snap, c.Snapshot())
	circles, noData = countObjects(r.Objects())
	assert.Equal(t, 2*len(snap), circles)
	assert.Equal(t, 0, noData)

	var titles []string
	for _, o := range r.Objects() {
		if txt, ok := o.(*canvas.Text); ok && txt.TextStyle.Bold {
			titles = append(titles, txt.Text)
		}
	}
	assert.Equal(t, []string{"Channel 1", "Channel 2"}, titles)
}

func TestChart_ZeroSize(t *testing.T) {
	test.NewTempApp(t)

	c := New()
	r := test.TempWidgetRenderer(t, c)
	c.Update(sample.Snapshot{{A: 1, B: 1}})
	r.Refresh()

	assert.Len(t, r.Objects(), 1, "only the background before layout")
}
