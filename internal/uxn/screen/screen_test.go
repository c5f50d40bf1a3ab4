package screen

import (
	"testing"

	"github.com/bradford-hamilton/uxngo/internal/uxn"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestResizeAllocatesMarginedLayers(t *testing.T) {
	d := New()
	d.Resize(16, 8)
	assert(t, d.Width == 16 && d.Height == 8, "expected 16x8, got %dx%d", d.Width, d.Height)
	want := (16 + 2*margin) * (8 + 2*margin)
	assert(t, len(d.BG) == want, "expected BG len %d, got %d", want, len(d.BG))
}

func TestResizeIgnoresOutOfRange(t *testing.T) {
	d := New()
	d.Resize(16, 8)
	d.Resize(4, 8) // width below 8: ignored
	assert(t, d.Width == 16, "expected resize to be ignored, width still 16, got %d", d.Width)
}

func TestPixelOpSetsRawColorIndex(t *testing.T) {
	m := uxn.New()
	d := New()
	d.Resize(16, 16)

	m.Dev[0x28], m.Dev[0x29] = 0, 2 // rX = 2
	d.DEO(m, 0x28)
	d.DEO(m, 0x29)
	m.Dev[0x2a], m.Dev[0x2b] = 0, 3 // rY = 3
	d.DEO(m, 0x2a)
	d.DEO(m, 0x2b)

	m.Dev[0x2e] = 0x01 // color=1, background layer, no auto-advance
	d.DEO(m, 0x2e)

	s := stride(d.Width)
	off := (3+margin)*s + 2 + margin
	assert(t, d.BG[off] == 1, "expected BG pixel set to palette index 1, got %d", d.BG[off])
}

func TestPixelFillMarksDirtyRect(t *testing.T) {
	m := uxn.New()
	d := New()
	d.Resize(16, 16)
	d.ResetDirty()

	m.Dev[0x2e] = 0x82 // fill bit + color 2
	d.DEO(m, 0x2e)

	x1, y1, x2, y2, dirty := d.Changed()
	assert(t, dirty, "expected fill to mark the screen dirty")
	assert(t, x1 == 0 && y1 == 0 && x2 == 16 && y2 == 16,
		"expected full-screen dirty rect, got (%d,%d)-(%d,%d)", x1, y1, x2, y2)
}

func TestPaletteDerivesFromDeviceBytes(t *testing.T) {
	m := uxn.New()
	d := New()
	m.Dev[0x08] = 0xf0 // color 0 red nibble = f
	m.Dev[0x0a] = 0x00
	m.Dev[0x0c] = 0x00

	pal := d.Palette(m)
	assert(t, pal[0].R == 0xff, "expected red nibble f to expand to 0xff, got 0x%02x", pal[0].R)
}

func TestSpriteOpDrawsOpaqueTile(t *testing.T) {
	m := uxn.New()
	d := New()
	d.Resize(16, 16)

	addr := uint16(0x400)
	m.RAM.Pages[0][addr] = 0xff // top row: all 8 bits set
	m.Dev[0x2c], m.Dev[0x2d] = uint8(addr>>8), uint8(addr)
	d.DEO(m, 0x2c)
	d.DEO(m, 0x2d)

	m.Dev[0x2f] = 0x01 // 1bpp, opaque blend (mode 1), background layer
	d.DEO(m, 0x2f)

	s := stride(d.Width)
	off := margin*s + margin // (0,0)
	assert(t, d.BG[off] != 0, "expected top-left pixel of sprite painted")
}
