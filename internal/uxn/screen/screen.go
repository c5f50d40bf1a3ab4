// Package screen implements the SCREEN device (ports 0x20-0x2F): palette
// derivation, the two pixel layers, the pixel/fill and sprite blitters,
// and dirty-rectangle change tracking.
package screen

import "github.com/bradford-hamilton/uxngo/internal/uxn"

// margin is the off-screen border baked into each layer's dimensions so
// that sprite writes near the edge can be bounds-checked per pixel
// without special-casing partial coverage, per the spec's off-by-eight
// design note.
const margin = 8

// blending is the 4x16 lookup from a 2-bit source color and a 4-bit blend
// mode to an output palette index.
var blending = [4][16]uint8{
	{0, 0, 0, 0, 1, 0, 1, 1, 2, 2, 0, 2, 3, 3, 3, 0},
	{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
	{1, 2, 3, 1, 1, 2, 3, 1, 1, 2, 3, 1, 1, 2, 3, 1},
	{2, 3, 1, 2, 2, 3, 1, 2, 2, 3, 1, 2, 2, 3, 1, 2},
}

// RGB is one resolved palette entry, each channel replicated from a
// 4-bit nibble to 8 bits.
type RGB struct{ R, G, B uint8 }

// Device is the SCREEN device handler plus its own buffered pixel state.
// Presentation (turning BG/FG + Palette into actual pixels on a window) is
// the display backend's job; this device only maintains the buffers.
type Device struct {
	Width, Height uint16
	BG, FG        []uint8
	Vector        uint16

	x1, y1, x2, y2 int // dirty rectangle, in screen (non-margin) coordinates

	rX, rY     int16
	rA         uint16
	rMX, rMY   uint8 // 0 or the raw control-byte mask value (not normalized to 0/1)
	rMA        uint8
	rML        uint8
	rDX, rDY   int

	// OnResize mirrors the emu_resize host hook: called after a successful
	// resize so a display backend can reallocate its own presentation
	// surface. May be nil.
	OnResize func(w, h uint16)
}

// New returns a SCREEN device with no buffers allocated; Resize must be
// called (directly, or via a DEO to 0x23/0x25) before blitting.
func New() *Device {
	return &Device{}
}

func stride(w uint16) int { return int(w) + 2*margin }

// Resize reallocates BG/FG for the given dimensions, per spec: widths and
// heights outside [8, 0x800) are silently ignored, as is an unchanged size.
func (d *Device) Resize(w, h uint16) {
	if w < 8 || w >= 0x800 || h < 8 || h >= 0x800 {
		return
	}
	if w == d.Width && h == d.Height {
		return
	}
	size := stride(w) * (int(h) + 2*margin)
	d.Width, d.Height = w, h
	d.BG = make([]uint8, size)
	d.FG = make([]uint8, size)
	d.changeRect(0, 0, int(w), int(h))
	if d.OnResize != nil {
		d.OnResize(w, h)
	}
}

// changeRect expands the dirty rectangle to cover (x1,y1)-(x2,y2).
func (d *Device) changeRect(x1, y1, x2, y2 int) {
	if x1 < d.x1 {
		d.x1 = x1
	}
	if y1 < d.y1 {
		d.y1 = y1
	}
	if x2 > d.x2 {
		d.x2 = x2
	}
	if y2 > d.y2 {
		d.y2 = y2
	}
}

// Changed reports whether the clamped dirty rectangle is non-empty, and
// returns the clamped rectangle itself.
func (d *Device) Changed() (x1, y1, x2, y2 int, dirty bool) {
	x1, y1, x2, y2 = clamp(d.x1, 0, int(d.Width)), clamp(d.y1, 0, int(d.Height)),
		clamp(d.x2, 0, int(d.Width)), clamp(d.y2, 0, int(d.Height))
	return x1, y1, x2, y2, x2 > x1 && y2 > y1
}

// ResetDirty clears the dirty rectangle, called by a host after presenting
// a frame.
func (d *Device) ResetDirty() {
	d.x1, d.y1, d.x2, d.y2 = 0, 0, 0, 0
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Palette reads device bytes 0x08-0x0D (owned by the system device's
// shared register block) and derives the 4-entry RGB palette live.
func (d *Device) Palette(m *uxn.Machine) [4]RGB {
	var pal [4]RGB
	shift := uint(4)
	for i := 0; i < 4; i++ {
		r := (m.Dev[0x08+i/2] >> shift) & 0xf
		g := (m.Dev[0x0a+i/2] >> shift) & 0xf
		b := (m.Dev[0x0c+i/2] >> shift) & 0xf
		pal[i] = RGB{nibble(r), nibble(g), nibble(b)}
		shift ^= 4
	}
	return pal
}

func nibble(n uint8) uint8 { return n<<4 | n }

// DEI returns live registers for width/height/X/Y/A; everything else
// reads back the stored device byte.
func (d *Device) DEI(m *uxn.Machine, addr uint8) uint8 {
	switch addr {
	case 0x22:
		return uint8(d.Width >> 8)
	case 0x23:
		return uint8(d.Width)
	case 0x24:
		return uint8(d.Height >> 8)
	case 0x25:
		return uint8(d.Height)
	case 0x28:
		return uint8(uint16(d.rX) >> 8)
	case 0x29:
		return uint8(d.rX)
	case 0x2a:
		return uint8(uint16(d.rY) >> 8)
	case 0x2b:
		return uint8(d.rY)
	case 0x2c:
		return uint8(d.rA >> 8)
	case 0x2d:
		return uint8(d.rA)
	default:
		return m.Dev[addr]
	}
}

// DEO dispatches writes against the screen's 16-byte port block.
func (d *Device) DEO(m *uxn.Machine, addr uint8) {
	switch addr {
	case 0x21:
		d.Vector = peek2(m, 0x20)
	case 0x23:
		d.Resize(peek2(m, 0x22), d.Height)
	case 0x25:
		d.Resize(d.Width, peek2(m, 0x24))
	case 0x26:
		ctrl := m.Dev[0x26]
		d.rMX = ctrl & 0x1
		d.rMY = ctrl & 0x2
		d.rMA = ctrl & 0x4
		d.rML = ctrl >> 4
		d.rDX = int(d.rMX) << 3
		d.rDY = int(d.rMY) << 2
	case 0x28, 0x29:
		d.rX = int16(peek2(m, 0x28))
	case 0x2a, 0x2b:
		d.rY = int16(peek2(m, 0x2a))
	case 0x2c, 0x2d:
		d.rA = peek2(m, 0x2c)
	case 0x2e:
		d.pixelOp(m.Dev[0x2e])
	case 0x2f:
		d.spriteOp(m, m.Dev[0x2f])
	}
}

func peek2(m *uxn.Machine, addr uint8) uint16 {
	return uint16(m.Dev[addr])<<8 | uint16(m.Dev[addr+1])
}

func (d *Device) layer(ctrl uint8) []uint8 {
	if ctrl&0x40 != 0 {
		return d.FG
	}
	return d.BG
}

// pixelOp implements DEO 0x2e: pixel paint (with auto-advance) or
// rectangle fill, anchored per the control byte.
func (d *Device) pixelOp(ctrl uint8) {
	color := ctrl & 0x03
	layer := d.layer(ctrl)
	s := stride(d.Width)

	if ctrl&0x80 != 0 {
		var x1, x2, y1, y2 int
		if ctrl&0x10 != 0 {
			x1, x2 = 0, int(d.rX)
		} else {
			x1, x2 = int(d.rX), int(d.Width)
		}
		if ctrl&0x20 != 0 {
			y1, y2 = 0, int(d.rY)
		} else {
			y1, y2 = int(d.rY), int(d.Height)
		}
		x1, x2 = clamp(x1, 0, int(d.Width)), clamp(x2, 0, int(d.Width))
		y1, y2 = clamp(y1, 0, int(d.Height)), clamp(y2, 0, int(d.Height))
		for y := y1; y < y2; y++ {
			row := (y + margin) * s
			for x := x1; x < x2; x++ {
				layer[row+x+margin] = color
			}
		}
		d.changeRect(x1, y1, x2, y2)
		return
	}

	x, y := int(d.rX), int(d.rY)
	if x >= 0 && y >= 0 && x < int(d.Width) && y < int(d.Height) {
		layer[(y+margin)*s+x+margin] = color
		d.changeRect(x, y, x+1, y+1)
	}
	if d.rMX != 0 {
		d.rX++
	}
	if d.rMY != 0 {
		d.rY++
	}
}

// spriteOp implements DEO 0x2f: draw rML+1 sprites in a row, 1bpp or 2bpp,
// flipped and blended per the control byte.
func (d *Device) spriteOp(m *uxn.Machine, ctrl uint8) {
	twobpp := ctrl&0x80 != 0
	layer := d.layer(ctrl)
	blend := int(ctrl & 0x0f)
	opaque := blend%5 != 0
	flipX := ctrl&0x10 != 0
	flipY := ctrl&0x20 != 0

	fx, fy := 1, 1
	if flipX {
		fx = -1
	}
	if flipY {
		fy = -1
	}

	s := stride(d.Width)
	x, y := int(d.rX), int(d.rY)
	addrIncr := uint16(d.rMA) << 1
	if twobpp {
		addrIncr = uint16(d.rMA) << 2
	}

	for i := 0; i <= int(d.rML); i++ {
		d.drawTile(m, layer, s, x, y, twobpp, flipX, flipY, blend, opaque)
		x += fx * d.rDY
		y += fy * d.rDX
		d.rA += addrIncr
	}

	var x1, x2, y1, y2 int
	if fx < 0 {
		x1, x2 = x, int(d.rX)
	} else {
		x1, x2 = int(d.rX), x
	}
	if fy < 0 {
		y1, y2 = y, int(d.rY)
	} else {
		y1, y2 = int(d.rY), y
	}
	d.changeRect(x1-margin, y1-margin, x2+margin, y2+margin)

	if d.rMX != 0 {
		d.rX += int16(fx * d.rDX)
	}
	if d.rMY != 0 {
		d.rY += int16(fy * d.rDY)
	}
}

func (d *Device) drawTile(m *uxn.Machine, layer []uint8, s, tx, ty int, twobpp, flipX, flipY bool, blend int, opaque bool) {
	spriteByte := func(off int) uint8 { return m.RAM.Pages[0][uint16(int(d.rA)+off)] }
	for py := 0; py < 8; py++ {
		row := py
		if flipY {
			row = 7 - py
		}
		ch1 := spriteByte(row)
		var ch2 uint8
		if twobpp {
			ch2 = spriteByte(row + 8)
		}
		py2 := ty + py
		if py2 < 0 || py2 >= int(d.Height) {
			continue
		}
		dst := (py2 + margin) * s
		for px := 0; px < 8; px++ {
			bit := px
			if !flipX {
				bit = 7 - px
			}
			color := (ch1 >> uint(bit)) & 1
			if twobpp {
				color |= ((ch2 >> uint(bit)) & 1) << 1
			}
			if !opaque && color == 0 {
				continue
			}
			px2 := tx + px
			if px2 < 0 || px2 >= int(d.Width) {
				continue
			}
			layer[dst+px2+margin] = blending[color][blend]
		}
	}
}
