package raster

import (
	"image/color"
	"testing"

	"github.com/chazu/twirl/pkg/shape"
)

var grid100 = Grid{Bound: 5, Resolution: 100}

func square4() []shape.Point {
	return shape.Square(4, shape.Point{}, shape.SquareAngle).Points()
}

func pt(x, y float64) shape.Point { return shape.Point{X: x, Y: y} }

func TestNormalize(t *testing.T) {
	g := Grid{Bound: 5, Resolution: 10}
	got := g.Normalize([]shape.Point{pt(-5, -5), pt(0, 0), pt(4.99, -0.01)})
	want := []Pixel{{0, 0}, {5, 5}, {9, 4}, {0, 0}}
	if len(got) != len(want) {
		t.Fatalf("got %d pixels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNormalizeDoesNotTouchInput(t *testing.T) {
	pts := make([]shape.Point, 3, 8)
	pts[0], pts[1], pts[2] = pt(1, 1), pt(2, 1), pt(1, 2)
	Grid{Bound: 5, Resolution: 10}.Normalize(pts)
	if full := pts[:4]; full[3] != (shape.Point{}) {
		t.Errorf("Normalize wrote past the caller's slice: %v", full[3])
	}
}

func TestFillSquare(t *testing.T) {
	img := Fill(square4(), grid100)

	// The square spans world [-2, 2], which is pixels 30..70.
	for row := 32; row < 68; row++ {
		for col := 32; col < 68; col++ {
			if !img.Get(col, row) {
				t.Fatalf("interior pixel (%d, %d) not set", col, row)
			}
		}
	}
	for row := 0; row < 100; row++ {
		for col := 0; col < 100; col++ {
			inBand := col >= 29 && col <= 70 && row >= 29 && row <= 70
			if !inBand && img.Get(col, row) {
				t.Fatalf("background pixel (%d, %d) set", col, row)
			}
		}
	}
	if n := img.Count(); n < 38*38 || n > 41*41 {
		t.Errorf("filled %d pixels, want about 1600", n)
	}
}

func TestFillConcave(t *testing.T) {
	// An L shape: the notch in the upper right must stay empty.
	l := []shape.Point{pt(-4, -4), pt(4, -4), pt(4, 0), pt(0, 0), pt(0, 4), pt(-4, 4)}
	img := Fill(l, Grid{Bound: 5, Resolution: 10})
	// Pixel-space (x, y) -> image (col, 9-y).
	cases := []struct {
		x, y int
		want bool
	}{
		{2, 2, true},  // lower left
		{7, 2, true},  // lower right arm
		{2, 7, true},  // upper left arm
		{7, 7, false}, // notch
		{0, 0, false}, // outside
	}
	for _, c := range cases {
		if got := img.Get(c.x, 9-c.y); got != c.want {
			t.Errorf("pixel (%d, %d) = %v, want %v\n%s", c.x, c.y, got, c.want, img)
		}
	}
}

func TestFillVerticalAndHorizontalEdges(t *testing.T) {
	// Axis-aligned rectangle: every edge is either vertical or horizontal.
	rect := []shape.Point{pt(-3, -1), pt(3, -1), pt(3, 1), pt(-3, 1)}
	img := Fill(rect, Grid{Bound: 5, Resolution: 10})
	if n := img.Count(); n != 6*2 {
		t.Errorf("filled %d pixels, want 12\n%s", n, img)
	}
}

func TestFillDegenerate(t *testing.T) {
	img := Fill([]shape.Point{pt(1, 1), pt(2, 2)}, grid100)
	if img.Count() != 0 {
		t.Errorf("two-point ring filled %d pixels", img.Count())
	}
}

func TestFillOutOfGridIsClipped(t *testing.T) {
	big := shape.Square(40, shape.Point{}, shape.SquareAngle).Points()
	img := Fill(big, Grid{Bound: 5, Resolution: 20})
	if img.Count() != 400 {
		t.Errorf("oversized square filled %d pixels, want all 400", img.Count())
	}
}

func TestWiresSquareIsHollow(t *testing.T) {
	img := Wires(square4(), grid100, nil)
	for row := 32; row < 68; row++ {
		for col := 32; col < 68; col++ {
			if img.Get(col, row) {
				t.Fatalf("interior pixel (%d, %d) set in wireframe", col, row)
			}
		}
	}
	// Every side of the outline must be present.
	if !img.Get(50, 100-1-30) && !img.Get(50, 100-1-29) {
		t.Error("bottom edge missing")
	}
	if !img.Get(50, 100-1-70) && !img.Get(50, 100-1-69) {
		t.Error("top edge missing")
	}
	if !img.Get(30, 50) && !img.Get(29, 50) {
		t.Error("left edge missing")
	}
	if !img.Get(70, 50) && !img.Get(69, 50) {
		t.Error("right edge missing")
	}
}

func TestWiresNoGapsOnDiagonal(t *testing.T) {
	tri := []shape.Point{pt(-4, -4), pt(4, -3), pt(-3, 4)}
	img := Wires(tri, grid100, nil)
	// Each row crossed by the outline should have at least one pixel.
	first, last := -1, -1
	for row := 0; row < 100; row++ {
		n := 0
		for _, v := range img.Row(row) {
			if v {
				n++
			}
		}
		if n > 0 {
			if first < 0 {
				first = row
			}
			last = row
		} else if first >= 0 && last == row-1 {
			// Only a trailing empty run is allowed.
			for r := row; r < 100; r++ {
				for _, v := range img.Row(r) {
					if v {
						t.Fatalf("gap at row %d", row)
					}
				}
			}
			break
		}
	}
	if first < 0 {
		t.Fatal("nothing drawn")
	}
}

func TestWiresDrawsOntoExisting(t *testing.T) {
	dst := NewImage(100)
	a := Wires(shape.Square(2, pt(-3, 0), shape.SquareAngle).Points(), grid100, dst)
	b := Wires(shape.Square(2, pt(3, 0), shape.SquareAngle).Points(), grid100, dst)
	if a != dst || b != dst {
		t.Fatal("Wires should return the destination image")
	}
	left := Wires(shape.Square(2, pt(-3, 0), shape.SquareAngle).Points(), grid100, nil)
	right := Wires(shape.Square(2, pt(3, 0), shape.SquareAngle).Points(), grid100, nil)
	if dst.Count() != left.Count()+right.Count() {
		t.Errorf("shared image has %d pixels, want %d", dst.Count(), left.Count()+right.Count())
	}
}

func TestWiresVerticalEdge(t *testing.T) {
	// Must not divide by zero on a vertical edge.
	img := Wires([]shape.Point{pt(0, -2), pt(0, 2), pt(1, 0)}, grid100, nil)
	if img.Count() == 0 {
		t.Fatal("nothing drawn")
	}
}

func TestImageOr(t *testing.T) {
	a, b := NewImage(4), NewImage(4)
	a.Set(0, 0)
	b.Set(0, 0)
	b.Set(3, 3)
	a.Or(b)
	if a.Count() != 2 || !a.Get(3, 3) {
		t.Errorf("Or result:\n%s", a)
	}
}

func TestImageIsGray(t *testing.T) {
	img := NewImage(2)
	img.Set(1, 0)
	if img.At(1, 0) != (color.Gray{Y: 0xff}) {
		t.Error("set pixel should be white")
	}
	if img.At(0, 0) != (color.Gray{}) {
		t.Error("unset pixel should be black")
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("Bounds() = %v", img.Bounds())
	}
}

func TestImageOutOfRange(t *testing.T) {
	img := NewImage(3)
	img.Set(-1, 0)
	img.Set(3, 3)
	img.Toggle(0, 7)
	if img.Count() != 0 {
		t.Error("out-of-range writes should be dropped")
	}
	if img.Get(5, 5) {
		t.Error("out-of-range reads should be false")
	}
}
