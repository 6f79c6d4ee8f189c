package preview

import "github.com/chazu/twirl/pkg/raster"

// brailleBuf is a grid of braille cells, each holding 2x4 dots.
type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell dot mask
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	for i := range m {
		m[i] = make([]uint8, w)
	}
	return &brailleBuf{w: w, h: h, m: m}
}

// dotBits maps a dot's position within its cell to the braille bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setDot sets the dot at dot coordinates (mx, my).
func (b *brailleBuf) setDot(mx, my int) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= b.w || cy >= b.h {
		return
	}
	b.m[cy][cx] |= dotBits[mx%2][my%4]
}

func (b *brailleBuf) toLines() []string {
	out := make([]string, b.h)
	for y := 0; y < b.h; y++ {
		row := make([]rune, b.w)
		for x := 0; x < b.w; x++ {
			if mask := b.m[y][x]; mask == 0 {
				row[x] = ' '
			} else {
				row[x] = rune(0x2800 + int(mask))
			}
		}
		out[y] = string(row)
	}
	return out
}

// renderSlice draws img into a w x h cell canvas. The slice stays square:
// it is drawn onto side x side dots, side being the smaller canvas
// dimension in dots. Downsampling ORs pixels into dots so thin outlines
// survive.
func renderSlice(img *raster.Image, w, h int) []string {
	b := newBrailleBuf(w, h)
	res := img.Resolution()
	side := min(2*w, 4*h)
	if res == 0 || side <= 0 {
		return b.toLines()
	}
	if side >= res {
		for my := 0; my < side; my++ {
			row := my * res / side
			for mx := 0; mx < side; mx++ {
				if img.Get(mx*res/side, row) {
					b.setDot(mx, my)
				}
			}
		}
		return b.toLines()
	}
	for row := 0; row < res; row++ {
		for col, v := range img.Row(row) {
			if v {
				b.setDot(col*side/res, row*side/res)
			}
		}
	}
	return b.toLines()
}
