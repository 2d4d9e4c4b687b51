//go:build gui

package gui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"fyne.io/fyne/v2"
)

// trayIcon draws the 22px system tray icon: a green beat dot in a dark ring.
func trayIcon() fyne.Resource {
	const size = 22
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	center := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) - center + 0.5
			dy := float64(y) - center + 0.5
			dist := math.Sqrt(dx*dx + dy*dy)

			switch {
			case dist < 4:
				img.Set(x, y, color.RGBA{120, 255, 150, 255})
			case dist < 7:
				t := (dist - 4) / 3
				img.Set(x, y, color.RGBA{uint8(52 - t*30), uint8(199 - t*100), uint8(89 - t*40), 255})
			case dist < 9:
				img.Set(x, y, color.RGBA{20, 60, 30, 255})
			case dist < 10:
				img.Set(x, y, color.RGBA{10, 30, 15, 255})
			}
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return fyne.NewStaticResource("tray.png", buf.Bytes())
}
