//go:build darwin

package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
)

// Menu bar icons: a metronome body with its pendulum. Idle icons are
// template images (macOS tints them); while playing the pendulum swings
// to one side or the other on alternate beats.
var (
	iconIdle    []byte
	iconIdleHi  []byte
	iconPlayHi  []byte
	iconPulseHi []byte
)

const swing = 22 * math.Pi / 180

func init() {
	green := color.RGBA{R: 52, G: 199, B: 89, A: 255}
	bright := color.RGBA{R: 150, G: 255, B: 170, A: 255}
	iconIdle = renderIcon(22, color.RGBA{A: 255}, 0)
	iconIdleHi = renderIcon(44, color.RGBA{A: 255}, 0)
	iconPlayHi = renderIcon(44, green, -swing)
	iconPulseHi = renderIcon(44, bright, swing)
}

func encodePNG(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic("encodePNG: " + err.Error())
	}
	return buf.Bytes()
}

// drawMetronome paints a trapezoid body outline and a pendulum pivoting near
// its base at angle (radians, 0 is upright).
func drawMetronome(img *image.RGBA, size int, arm color.RGBA, angle float64) {
	s := float64(size)
	top, bottom := s*0.08, s*0.92
	halfTop, halfBottom := s*0.12, s*0.40
	stroke := s / 14
	cx := s / 2

	for y := range size {
		fy := float64(y) + 0.5
		if fy < top || fy > bottom {
			continue
		}
		t := (fy - top) / (bottom - top)
		half := halfTop + t*(halfBottom-halfTop)
		for x := range size {
			dx := math.Abs(float64(x) + 0.5 - cx)
			edge := dx > half-stroke && dx <= half
			base := fy > bottom-stroke && dx <= half
			if edge || base {
				img.Set(x, y, color.Black)
			}
		}
	}

	pivotX, pivotY := cx, bottom-s*0.14
	length := s * 0.72
	tipX := pivotX + math.Sin(angle)*length
	tipY := pivotY - math.Cos(angle)*length
	for y := range size {
		for x := range size {
			if segmentDist(float64(x)+0.5, float64(y)+0.5, pivotX, pivotY, tipX, tipY) <= stroke*0.8 {
				img.Set(x, y, arm)
			}
		}
	}
}

// segmentDist is the distance from (px,py) to the segment (ax,ay)-(bx,by).
func segmentDist(px, py, ax, ay, bx, by float64) float64 {
	vx, vy := bx-ax, by-ay
	t := ((px-ax)*vx + (py-ay)*vy) / (vx*vx + vy*vy)
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(px-(ax+t*vx), py-(ay+t*vy))
}

func renderIcon(size int, arm color.RGBA, angle float64) []byte {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	drawMetronome(img, size, arm, angle)
	return encodePNG(img)
}
