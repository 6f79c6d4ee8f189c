// Package raster converts polygon rings into square boolean images.
//
// Pixel space has its origin at the bottom-left of the grid with y
// increasing upward; image rows are stored top-down, so pixel row py lives
// in image row R-1-py.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Image is an R x R boolean raster. It implements image.Image as a
// black-and-white grayscale image so it can be handed to any encoder.
type Image struct {
	res int
	pix []bool // row-major, row 0 is the top
}

// NewImage allocates an all-false image of the given resolution.
func NewImage(res int) *Image {
	if res < 0 {
		res = 0
	}
	return &Image{res: res, pix: make([]bool, res*res)}
}

// Resolution returns the side length in pixels.
func (m *Image) Resolution() int {
	return m.res
}

func (m *Image) inside(col, row int) bool {
	return col >= 0 && row >= 0 && col < m.res && row < m.res
}

// Get returns the pixel at column col, row row (row 0 is the top).
// Out-of-range pixels read as false.
func (m *Image) Get(col, row int) bool {
	if !m.inside(col, row) {
		return false
	}
	return m.pix[row*m.res+col]
}

// Set sets the pixel to true. Out-of-range writes are dropped.
func (m *Image) Set(col, row int) {
	if m.inside(col, row) {
		m.pix[row*m.res+col] = true
	}
}

// Toggle inverts the pixel. Out-of-range writes are dropped.
func (m *Image) Toggle(col, row int) {
	if m.inside(col, row) {
		i := row*m.res + col
		m.pix[i] = !m.pix[i]
	}
}

// plot sets the pixel at pixel-space coordinates (px, py).
func (m *Image) plot(px, py int) {
	m.Set(px, m.res-1-py)
}

// Row returns row r as a slice aliasing the image storage.
func (m *Image) Row(r int) []bool {
	return m.pix[r*m.res : (r+1)*m.res]
}

// Rows returns every row, top first. The slices alias the image storage.
func (m *Image) Rows() [][]bool {
	rows := make([][]bool, m.res)
	for r := range rows {
		rows[r] = m.Row(r)
	}
	return rows
}

// Count returns the number of set pixels.
func (m *Image) Count() int {
	n := 0
	for _, v := range m.pix {
		if v {
			n++
		}
	}
	return n
}

// Or sets every pixel that is set in o. Both images must share a resolution.
func (m *Image) Or(o *Image) {
	if o.res != m.res {
		panic(fmt.Sprintf("raster: Or of %dpx and %dpx images", m.res, o.res))
	}
	for i, v := range o.pix {
		if v {
			m.pix[i] = true
		}
	}
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	return color.GrayModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.res, m.res)
}

// At implements image.Image: set pixels are white, the rest black.
func (m *Image) At(x, y int) color.Color {
	if m.Get(x, y) {
		return color.Gray{Y: 0xff}
	}
	return color.Gray{}
}

// String renders the image with '#' for set pixels, one line per row.
func (m *Image) String() string {
	var b strings.Builder
	for r := 0; r < m.res; r++ {
		for _, v := range m.Row(r) {
			if v {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
