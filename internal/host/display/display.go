// Package display presents a screen.Device's BG/FG layers in a window,
// adapted from the teacher's pixel package: faiface/pixel + pixelgl for
// the window and GL context, imdraw for painting (the same
// push-rectangles-then-Draw pattern the teacher used for its own
// pixel grid), and golang.org/x/image/colornames for the initial clear.
package display

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
	"github.com/bradford-hamilton/uxngo/internal/uxn/screen"
)

// Window wraps a pixelgl window sized to the SCREEN device's current
// dimensions, redrawing only the dirty rectangle the device reports.
type Window struct {
	*pixelgl.Window
	scale float64
}

// NewWindow opens a window at w*scale by h*scale pixels.
func NewWindow(title string, w, h uint16, scale float64) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, float64(w)*scale, float64(h)*scale),
		VSync:  true,
	}
	win, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	win.Clear(colornames.Black)
	win.Update()
	return &Window{Window: win, scale: scale}, nil
}

// Resize matches screen.Device's OnResize hook, growing the window's
// bounds to the new screen size.
func (w *Window) Resize(width, height uint16) {
	w.SetBounds(pixel.R(0, 0, float64(width)*w.scale, float64(height)*w.scale))
}

// Present draws every dirty pixel of scr onto the window as a filled
// square, then clears the dirty rectangle. It is a no-op when nothing
// changed since the last call.
func (w *Window) Present(m *uxn.Machine, scr *screen.Device) {
	x1, y1, x2, y2, dirty := scr.Changed()
	if !dirty {
		return
	}
	pal := scr.Palette(m)
	im := imdraw.New(nil)
	height := float64(scr.Height)

	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			rgb := pal[colorIndex(scr, x, y)]
			im.Color = toRGB(rgb)
			fx, fy := float64(x)*w.scale, (height-1-float64(y))*w.scale
			im.Push(pixel.V(fx, fy))
			im.Push(pixel.V(fx+w.scale, fy+w.scale))
			im.Rectangle(0)
		}
	}

	im.Draw(w)
	w.Update()
	scr.ResetDirty()
}

// colorIndex picks the foreground pixel unless it is transparent (index
// 0), falling back to the background layer, matching the reference
// compositor's BG/FG blend rule.
func colorIndex(scr *screen.Device, x, y int) uint8 {
	const margin = 8
	s := int(scr.Width) + 2*margin
	off := (y+margin)*s + x + margin
	if fg := scr.FG[off]; fg != 0 {
		return fg
	}
	return scr.BG[off]
}

func toRGB(c screen.RGB) pixel.RGBA {
	return pixel.RGB(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
}
