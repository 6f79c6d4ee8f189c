//go:build manifold

// Package manifold provides a CGo-based geometry kernel binding to the
// Manifold library (https://github.com/elalish/manifold). Manifold provides
// guaranteed-manifold mesh boolean operations, so stacked layers fuse into
// one watertight solid without a marching cubes pass.
//
// This package requires the Manifold C library (manifoldc) to be installed.
// Build with: go build -tags=manifold
package manifold

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/twirl/pkg/kernel"
	"github.com/chazu/twirl/pkg/shape"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*ManifoldKernel)(nil)
var _ kernel.Solid = (*manifoldSolid)(nil)

// manifoldSolid wraps a C ManifoldManifold pointer and implements kernel.Solid.
type manifoldSolid struct {
	ptr *C.ManifoldManifold
}

// BoundingBox returns the axis-aligned bounding box of the solid.
func (s *manifoldSolid) BoundingBox() (min, max [3]float64) {
	alloc := C.manifold_alloc_box()
	bbox := C.manifold_bounding_box(alloc, s.ptr)
	defer C.manifold_delete_box(bbox)

	min[0] = float64(C.manifold_box_min_x(bbox))
	min[1] = float64(C.manifold_box_min_y(bbox))
	min[2] = float64(C.manifold_box_min_z(bbox))
	max[0] = float64(C.manifold_box_max_x(bbox))
	max[1] = float64(C.manifold_box_max_y(bbox))
	max[2] = float64(C.manifold_box_max_z(bbox))
	return min, max
}

// newSolid wraps a C ManifoldManifold pointer with a finalizer that frees it.
func newSolid(ptr *C.ManifoldManifold) *manifoldSolid {
	s := &manifoldSolid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *manifoldSolid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

func unwrap(s kernel.Solid) *manifoldSolid {
	return s.(*manifoldSolid)
}

// ManifoldKernel implements kernel.Kernel using the Manifold C library.
type ManifoldKernel struct{}

// New creates a new ManifoldKernel.
func New() (kernel.Kernel, error) {
	return &ManifoldKernel{}, nil
}

// signedArea is positive for counter-clockwise rings.
func signedArea(ring []shape.Point) float64 {
	var a float64
	for i, p := range ring {
		q := ring[(i+1)%len(ring)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Extrude builds a prism of the given height on the XY plane. Manifold
// wants counter-clockwise outlines, so clockwise rings are reversed.
func (k *ManifoldKernel) Extrude(ring []shape.Point, height float64) (kernel.Solid, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("manifold: extrude needs at least 3 points, got %d", len(ring))
	}
	if height <= 0 {
		return nil, fmt.Errorf("manifold: extrude height %g must be positive", height)
	}
	area := signedArea(ring)
	if area == 0 {
		return nil, errors.New("manifold: ring has zero area")
	}

	n := len(ring)
	pts := (*C.ManifoldVec2)(C.malloc(C.size_t(n) * C.size_t(unsafe.Sizeof(C.ManifoldVec2{}))))
	defer C.free(unsafe.Pointer(pts))
	view := unsafe.Slice(pts, n)
	for i, p := range ring {
		if area < 0 {
			p = ring[n-1-i]
		}
		view[i] = C.ManifoldVec2{x: C.double(p.X), y: C.double(p.Y)}
	}

	simple := C.manifold_simple_polygon(C.manifold_alloc_simple_polygon(), pts, C.size_t(n))
	defer C.manifold_delete_simple_polygon(simple)
	polys := C.manifold_polygons(C.manifold_alloc_polygons(), &simple, 1)
	defer C.manifold_delete_polygons(polys)

	ptr := C.manifold_extrude(C.manifold_alloc_manifold(), polys,
		C.double(height),
		C.int(0),      // slices
		C.double(0),   // twist
		C.double(1.0), // scale x
		C.double(1.0), // scale y
	)
	if st := C.manifold_status(ptr); st != C.MANIFOLD_NO_ERROR {
		C.manifold_delete_manifold(ptr)
		return nil, fmt.Errorf("manifold: extrude failed with status %d", int(st))
	}
	return newSolid(ptr), nil
}

// Union folds the solids together pairwise.
func (k *ManifoldKernel) Union(solids ...kernel.Solid) kernel.Solid {
	if len(solids) == 1 {
		return solids[0]
	}
	acc := unwrap(solids[0])
	for _, s := range solids[1:] {
		ptr := C.manifold_union(C.manifold_alloc_manifold(), acc.ptr, unwrap(s).ptr)
		acc = newSolid(ptr)
	}
	return acc
}

// Translate moves the solid by (x, y, z).
func (k *ManifoldKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	ptr := C.manifold_translate(C.manifold_alloc_manifold(), unwrap(s).ptr,
		C.double(x), C.double(y), C.double(z),
	)
	return newSolid(ptr)
}

// ToMesh extracts a triangle mesh from the solid using Manifold's MeshGL
// format. Vertex properties are interleaved in MeshGL; this method
// separates them into the kernel.Mesh flat-array layout.
func (k *ManifoldKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	meshGL := C.manifold_get_meshgl(C.manifold_alloc_meshgl(), unwrap(s).ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return &kernel.Mesh{}, nil
	}

	// The first 3 properties are position; normals follow at 3..5 when
	// present.
	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties((*C.float)(unsafe.Pointer(&propData[0])), meshGL)

	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts((*C.uint32_t)(unsafe.Pointer(&indices[0])), meshGL)

	vertices := make([]float32, numVert*3)
	var normals []float32
	hasNormals := numProp >= 6
	if hasNormals {
		normals = make([]float32, numVert*3)
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		copy(vertices[i*3:i*3+3], propData[base:base+3])
		if hasNormals {
			copy(normals[i*3:i*3+3], propData[base+3:base+6])
		}
	}
	if !hasNormals {
		normals = vertexNormals(vertices, indices)
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}

// vertexNormals averages the face normals of the triangles around each
// vertex.
func vertexNormals(vertices []float32, indices []uint32) []float32 {
	normals := make([]float32, len(vertices))
	for t := 0; t+2 < len(indices); t += 3 {
		tri := [3]uint32{indices[t], indices[t+1], indices[t+2]}
		a, b, c := vertexAt(vertices, tri[0]), vertexAt(vertices, tri[1]), vertexAt(vertices, tri[2])
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range tri {
			normals[idx*3+0] += float32(n.X)
			normals[idx*3+1] += float32(n.Y)
			normals[idx*3+2] += float32(n.Z)
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		l := math.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2]))
		if l > 1e-12 {
			normals[i] = float32(float64(normals[i]) / l)
			normals[i+1] = float32(float64(normals[i+1]) / l)
			normals[i+2] = float32(float64(normals[i+2]) / l)
		}
	}
	return normals
}

func vertexAt(vertices []float32, i uint32) v3.Vec {
	return v3.Vec{X: float64(vertices[i*3]), Y: float64(vertices[i*3+1]), Z: float64(vertices[i*3+2])}
}

// WriteSTL meshes the solid and writes it with the sdfx STL writer.
func (k *ManifoldKernel) WriteSTL(s kernel.Solid, path string) error {
	m, err := k.ToMesh(s)
	if err != nil {
		return err
	}
	if m.TriangleCount() == 0 {
		return errors.New("manifold: solid has no triangles")
	}
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tris = append(tris, &sdf.Triangle3{
			vertexAt(m.Vertices, m.Indices[t]),
			vertexAt(m.Vertices, m.Indices[t+1]),
			vertexAt(m.Vertices, m.Indices[t+2]),
		})
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("manifold: write %s: %w", path, err)
	}
	return nil
}
