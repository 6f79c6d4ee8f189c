// Package export turns rendered animations into files: a stacked-extrusion
// solid written through a geometry kernel, or a stack of slice images.
package export

import (
	"fmt"

	"github.com/chazu/twirl/pkg/animation"
	"github.com/chazu/twirl/pkg/kernel"
)

// SolidOptions controls how frames are stacked into a solid.
type SolidOptions struct {
	// LayerHeight is the vertical distance between consecutive depth
	// indices.
	LayerHeight float64
	// ExtrudeHeight is the thickness of one layer. Keeping it slightly above
	// LayerHeight makes neighbouring layers overlap and fuse.
	ExtrudeHeight float64
	// Stride exports every Stride-th depth index. Skipped layers are covered
	// by thickening the exported ones. The final depth index is always kept.
	Stride int
}

// DefaultSolidOptions returns 0.2 layers extruded 0.21 high, every depth.
func DefaultSolidOptions() SolidOptions {
	return SolidOptions{LayerHeight: 0.2, ExtrudeHeight: 0.21, Stride: 1}
}

// layer is one exported depth index and the thickness it is extruded to.
type layer struct {
	index  int
	height float64
}

// layers picks the exported depth indices for a frame set of the given depth.
func (o SolidOptions) layers(depth int) []layer {
	stride := max(o.Stride, 1)
	var idx []int
	for i := 0; i <= depth; i += stride {
		idx = append(idx, i)
	}
	if idx[len(idx)-1] != depth {
		idx = append(idx, depth)
	}
	overlap := o.ExtrudeHeight - o.LayerHeight
	out := make([]layer, len(idx))
	for n, i := range idx {
		h := o.ExtrudeHeight
		if n+1 < len(idx) {
			h = float64(idx[n+1]-i)*o.LayerHeight + overlap
		}
		out[n] = layer{index: i, height: h}
	}
	return out
}

// ShapeSolid stacks one shape's frames: every exported depth index is
// extruded and lifted to index·LayerHeight.
func ShapeSolid(f animation.Frames, k kernel.Kernel, opts SolidOptions) (kernel.Solid, error) {
	if len(f) == 0 {
		return nil, fmt.Errorf("export: shape has no frames")
	}
	var slabs []kernel.Solid
	for _, l := range opts.layers(f.Depth()) {
		slab, err := k.Extrude(f[l.index], l.height)
		if err != nil {
			return nil, fmt.Errorf("export: depth %d: %w", l.index, err)
		}
		slabs = append(slabs, k.Translate(slab, 0, 0, float64(l.index)*opts.LayerHeight))
	}
	return k.Union(slabs...), nil
}

// Solids returns one stacked solid per shape, in shape order.
func Solids(frames []animation.Frames, k kernel.Kernel, opts SolidOptions) ([]kernel.Solid, error) {
	if len(frames) == 0 {
		return nil, animation.ErrNoShapes
	}
	out := make([]kernel.Solid, 0, len(frames))
	for i, f := range frames {
		s, err := ShapeSolid(f, k, opts)
		if err != nil {
			return nil, fmt.Errorf("shape %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Solid unions every shape's stacked solid into one.
func Solid(frames []animation.Frames, k kernel.Kernel, opts SolidOptions) (kernel.Solid, error) {
	solids, err := Solids(frames, k, opts)
	if err != nil {
		return nil, err
	}
	return k.Union(solids...), nil
}

// WriteSTL builds the combined solid and writes it to path.
func WriteSTL(path string, frames []animation.Frames, k kernel.Kernel, opts SolidOptions) error {
	s, err := Solid(frames, k, opts)
	if err != nil {
		return err
	}
	return k.WriteSTL(s, path)
}

// Meshes tessellates every shape separately. Each mesh is named
// "shape-<index>".
func Meshes(frames []animation.Frames, k kernel.Kernel, opts SolidOptions) ([]*kernel.Mesh, error) {
	solids, err := Solids(frames, k, opts)
	if err != nil {
		return nil, err
	}
	meshes := make([]*kernel.Mesh, 0, len(solids))
	for i, s := range solids {
		m, err := k.ToMesh(s)
		if err != nil {
			return nil, fmt.Errorf("export: ToMesh failed for shape %d: %w", i, err)
		}
		m.Name = fmt.Sprintf("shape-%d", i)
		meshes = append(meshes, m)
	}
	return meshes, nil
}
