//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	gridWidth  = 24
	gridHeight = 24
	cellSize   = 8
)

// Ring palettes, outermost last.
var (
	colorsLit = []color.Color{
		color.RGBA{18, 18, 18, 255},    // 0: background
		color.RGBA{255, 255, 255, 255}, // 1: core
		color.RGBA{175, 255, 175, 255},
		color.RGBA{135, 255, 135, 255},
		color.RGBA{95, 235, 120, 255},
		color.RGBA{52, 199, 89, 255},
		color.RGBA{30, 150, 65, 255},
		color.RGBA{20, 100, 45, 255},
		color.RGBA{15, 60, 30, 255},
		color.RGBA{40, 40, 40, 255}, // 9: rim
	}

	colorsDim = []color.Color{
		color.RGBA{18, 18, 18, 255},
		color.RGBA{200, 200, 200, 255},
		color.RGBA{170, 170, 170, 255},
		color.RGBA{140, 140, 140, 255},
		color.RGBA{110, 110, 110, 255},
		color.RGBA{85, 85, 85, 255},
		color.RGBA{65, 65, 65, 255},
		color.RGBA{52, 52, 52, 255},
		color.RGBA{44, 44, 44, 255},
		color.RGBA{40, 40, 40, 255},
	}
)

// PulseWidget is the visual beat indicator. It is lit on even beats while
// playing and swells briefly each time a beat fires.
type PulseWidget struct {
	widget.BaseWidget
	mu      sync.Mutex
	running bool
	lit     bool
	beat    uint64
	flash   float64 // 1 right after a beat, decays to 0
	stopCh  chan struct{}
}

func NewPulseWidget() *PulseWidget {
	p := &PulseWidget{stopCh: make(chan struct{})}
	p.ExtendBaseWidget(p)
	go p.animate()
	return p
}

// SetBeat updates the indicator from a session snapshot.
func (p *PulseWidget) SetBeat(running, lit bool, beat uint64) {
	p.mu.Lock()
	if running && beat != p.beat {
		p.flash = 1
	}
	if !running {
		p.flash = 0
	}
	p.running, p.lit, p.beat = running, lit, beat
	p.mu.Unlock()
}

func (p *PulseWidget) Stop() {
	select {
	case <-p.stopCh:
	default:
		close(p.stopCh)
	}
}

func (p *PulseWidget) animate() {
	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.flash *= 0.7
			if p.flash < 0.01 {
				p.flash = 0
			}
			p.mu.Unlock()
			fyne.Do(func() {
				p.Refresh()
			})
		}
	}
}

func (p *PulseWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(gridWidth*cellSize), float32(gridHeight*cellSize))
}

func (p *PulseWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &pulseRenderer{pulse: p}
	r.rects = make([][]*canvas.Rectangle, gridHeight)
	for y := 0; y < gridHeight; y++ {
		r.rects[y] = make([]*canvas.Rectangle, gridWidth)
		for x := 0; x < gridWidth; x++ {
			r.rects[y][x] = canvas.NewRectangle(colorsDim[0])
		}
	}
	return r
}

type pulseRenderer struct {
	pulse *PulseWidget
	rects [][]*canvas.Rectangle
}

func (r *pulseRenderer) Layout(size fyne.Size) {
	cellW := size.Width / float32(gridWidth)
	cellH := size.Height / float32(gridHeight)
	for y := 0; y < gridHeight; y++ {
		for x := 0; x < gridWidth; x++ {
			r.rects[y][x].Move(fyne.NewPos(float32(x)*cellW, float32(y)*cellH))
			r.rects[y][x].Resize(fyne.NewSize(cellW, cellH))
		}
	}
}

func (r *pulseRenderer) MinSize() fyne.Size {
	return r.pulse.MinSize()
}

func (r *pulseRenderer) Refresh() {
	r.pulse.mu.Lock()
	lit := r.pulse.running && r.pulse.lit
	flash := r.pulse.flash
	r.pulse.mu.Unlock()

	pixels := computePixels(flash)
	colors := colorsDim
	if lit {
		colors = colorsLit
	}
	for y := 0; y < gridHeight; y++ {
		for x := 0; x < gridWidth; x++ {
			c := colors[pixels[y][x]]
			if r.rects[y][x].FillColor != c {
				r.rects[y][x].FillColor = c
				r.rects[y][x].Refresh()
			}
		}
	}
}

func (r *pulseRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, gridWidth*gridHeight)
	for y := 0; y < gridHeight; y++ {
		for x := 0; x < gridWidth; x++ {
			objs = append(objs, r.rects[y][x])
		}
	}
	return objs
}

func (r *pulseRenderer) Destroy() {
	r.pulse.Stop()
}

// computePixels maps every cell to a palette index. flash in [0,1] swells
// the inner rings.
func computePixels(flash float64) [][]int {
	centerX := float64(gridWidth) / 2
	centerY := float64(gridHeight) / 2

	type ring struct {
		radius   float64
		swellAmt float64
		colorIdx int
	}
	rings := []ring{
		{1.2, 1.5, 1},
		{2.4, 1.6, 2},
		{3.6, 1.6, 3},
		{4.8, 1.4, 4},
		{6.0, 1.2, 5},
		{7.2, 0.9, 6},
		{8.4, 0.6, 7},
		{9.6, 0.3, 8},
		{10.8, 0.0, 9},
	}

	pixels := make([][]int, gridHeight)
	for y := range pixels {
		pixels[y] = make([]int, gridWidth)
		for x := 0; x < gridWidth; x++ {
			dx := float64(x) - centerX + 0.5
			dy := float64(y) - centerY + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)
			for _, r := range rings {
				if dist < r.radius+flash*r.swellAmt {
					pixels[y][x] = r.colorIdx
					break
				}
			}
		}
	}
	return pixels
}
