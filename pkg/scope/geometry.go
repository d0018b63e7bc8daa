package scope

import (
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	"github.com/chewxy/math32"
	"github.com/itohio/serialplot/pkg/sample"
)

// Margins around the plot area of each panel.
const (
	marginLeft   float32 = 60
	marginRight  float32 = 20
	marginTop    float32 = 22
	marginBottom float32 = 24
	panelGap     float32 = 8
)

type rect struct {
	X, Y, W, H float32
}

// panels splits size into n equally tall panels stacked top to bottom.
func panels(size fyne.Size, n int) []rect {
	if n <= 0 {
		return nil
	}
	h := math32.Max((size.Height-panelGap*float32(n-1))/float32(n), 0)
	out := make([]rect, n)
	for i := range out {
		out[i] = rect{Y: float32(i) * (h + panelGap), W: size.Width, H: h}
	}
	return out
}

// plotArea is the part of a panel the series is drawn in.
func (r rect) plotArea() rect {
	return rect{
		X: r.X + marginLeft,
		Y: r.Y + marginTop,
		W: math32.Max(r.W-marginLeft-marginRight, 0),
		H: math32.Max(r.H-marginTop-marginBottom, 0),
	}
}

// yRange autoscales values with a 10% margin on both ends.
// A flat series is centered in a band of 10% of its magnitude, at least 0.1.
// The range is kept in float64 since records may exceed float32 range or precision.
func yRange(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 1
	}

	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if math.IsInf(span, 0) {
		span = math.MaxFloat64
	}
	if span == 0 {
		span = math.Max(math.Abs(hi), 1)
	}
	margin := span * 0.1
	return math.Max(lo-margin, -math.MaxFloat64), math.Min(hi+margin, math.MaxFloat64)
}

// fraction returns where v sits between lo and hi, 0 at lo and 1 at hi.
// Halving the operands keeps the differences finite across the whole float64 range.
func fraction(v, lo, hi float64) float32 {
	if hi <= lo {
		return 0
	}
	return float32((v/2 - lo/2) / (hi/2 - lo/2))
}

// project maps a chart point to canvas coordinates inside area.
// X spans 0..Depth-1 across the full width regardless of how many samples exist.
func project(area rect, p sample.Point, lo, hi float64) fyne.Position {
	x := area.X + float32(p.X)/float32(sample.Depth-1)*area.W
	y := area.Y + area.H - fraction(p.Y, lo, hi)*area.H
	return fyne.NewPos(x, y)
}

// labelPrecision returns the significant digits needed to tell apart
// labels spaced step apart within lo..hi, at least 4.
func labelPrecision(lo, hi, step float64) int {
	mag := math.Max(math.Abs(lo), math.Abs(hi))
	if step <= 0 || mag == 0 || math.IsInf(mag/step, 0) {
		return 4
	}
	return min(max(int(math.Ceil(math.Log10(mag/step)))+1, 4), 15)
}

func formatValue(v float64, precision int) string {
	if math.Abs(v) < 1e-6 {
		return "0"
	}
	return strconv.FormatFloat(v, 'g', precision, 64)
}
