package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/serialplot/pkg/sample"
)

var (
	background = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	gridColor  = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	labelColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}

	// Series colors indexed by sample.Channel
	seriesColors = []color.Color{
		color.RGBA{R: 255, G: 165, B: 0, A: 255},   // Orange
		color.RGBA{R: 100, G: 200, B: 255, A: 255}, // Light blue
	}
)

// Chart is a Fyne widget that plots both channels of a snapshot in stacked panels.
type Chart struct {
	widget.BaseWidget

	mu       sync.RWMutex
	snapshot sample.Snapshot
}

// New creates an empty Chart.
func New() *Chart {
	c := &Chart{}
	c.ExtendBaseWidget(c)
	return c
}

// Update replaces the plotted samples.
// This should be called on the Fyne goroutine, e.g. via fyne.Do().
func (c *Chart) Update(snap sample.Snapshot) {
	c.mu.Lock()
	c.snapshot = snap
	c.mu.Unlock()

	// Outside the lock, the renderer reads the snapshot
	c.Refresh()
}

// Snapshot returns the samples currently plotted.
func (c *Chart) Snapshot() sample.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// CreateRenderer creates the widget renderer.
func (c *Chart) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(background)
	return &chartRenderer{
		chart:   c,
		bg:      bg,
		objects: []fyne.CanvasObject{bg},
	}
}
