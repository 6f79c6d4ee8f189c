// Package volume stacks per-depth rasters of an animation into a 3D boolean
// volume indexed [depth][row][col].
package volume

import (
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/raster"
)

var (
	// ErrFrameMismatch is returned when shapes disagree on depth.
	ErrFrameMismatch = errors.New("volume: frame sets have different depths")
	// ErrInvalidGrid is returned for a non-positive bound or resolution.
	ErrInvalidGrid = errors.New("volume: bound and resolution must be positive")
)

// Volume is a stack of square boolean slices, one per depth index.
type Volume struct {
	Grid   raster.Grid
	slices []*raster.Image
}

// New allocates an all-false volume with depth+1 slices.
func New(depth int, g raster.Grid) *Volume {
	v := &Volume{Grid: g, slices: make([]*raster.Image, depth+1)}
	for i := range v.slices {
		v.slices[i] = raster.NewImage(g.Resolution)
	}
	return v
}

// Len returns the number of slices.
func (v *Volume) Len() int {
	return len(v.slices)
}

// Slice returns the image at depth index i.
func (v *Volume) Slice(i int) *raster.Image {
	return v.slices[i]
}

// Get returns the voxel at [depth][row][col].
func (v *Volume) Get(depth, row, col int) bool {
	return v.slices[depth].Get(col, row)
}

// Count returns the number of set voxels.
func (v *Volume) Count() int {
	n := 0
	for _, s := range v.slices {
		n += s.Count()
	}
	return n
}

// Bools returns the volume as nested slices aliasing its storage.
func (v *Volume) Bools() [][][]bool {
	out := make([][][]bool, len(v.slices))
	for i, s := range v.slices {
		out[i] = s.Rows()
	}
	return out
}

// Options controls volume assembly.
type Options struct {
	// Fast draws wireframes onto one shared image per depth index. When
	// false every shape is filled into its own image and OR-ed in.
	Fast bool
	// Workers bounds the number of goroutines. Zero means GOMAXPROCS.
	Workers int
}

// Assemble rasterizes every frame set at every depth index.
//
// Work is split by depth index and each index is owned by one goroutine, so
// shapes at the same depth are always combined in entry order by a single
// writer. Wireframe mode draws every shape straight onto the shared slice;
// that is only safe because drawing sets pixels and never clears them.
// Filled mode uses parity toggles, so each shape is filled into a scratch
// image first and OR-ed into the slice afterwards.
func Assemble(frames []animation.Frames, g raster.Grid, opts Options) (*Volume, error) {
	if !g.Valid() {
		return nil, ErrInvalidGrid
	}
	if len(frames) == 0 {
		return nil, animation.ErrNoShapes
	}
	depth := frames[0].Depth()
	for i, f := range frames[1:] {
		if f.Depth() != depth {
			return nil, fmt.Errorf("%w: shape %d has depth %d, shape 0 has %d",
				ErrFrameMismatch, i+1, f.Depth(), depth)
		}
	}

	v := New(depth, g)
	layer := func(d int) {
		dst := v.slices[d]
		for _, f := range frames {
			if opts.Fast {
				raster.Wires(f[d], g, dst)
			} else {
				dst.Or(raster.Fill(f[d], g))
			}
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, v.Len())
	if workers <= 1 {
		for d := range v.slices {
			layer(d)
		}
		return v, nil
	}

	var eg errgroup.Group
	eg.SetLimit(workers)
	for d := range v.slices {
		eg.Go(func() error {
			layer(d)
			return nil
		})
	}
	return v, eg.Wait()
}

// Render composes the animation and assembles its volume.
func Render(a *animation.Animation, g raster.Grid, opts Options) (*Volume, error) {
	frames, err := a.Render()
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	return Assemble(frames, g, opts)
}
