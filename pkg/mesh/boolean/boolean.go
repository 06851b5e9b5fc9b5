//go:build manifold

// Package boolean combines mesh fragments with guaranteed-manifold
// boolean operations via a CGo binding to the Manifold library
// (https://github.com/elalish/manifold).
//
// This build requires the Manifold C library (manifoldc) to be
// installed. Build with: go build -tags=manifold
//
// Without the tag the stub implementation is compiled instead and Union
// reports ErrUnavailable, leaving callers on their documented
// concatenation fallback.
package boolean

/*
#cgo CFLAGS: -I/usr/local/include
#cgo LDFLAGS: -L/usr/local/lib -lmanifoldc

#include <stdlib.h>
#include <manifold/manifoldc.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/chazu/loft/pkg/mesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// solid wraps a C ManifoldManifold pointer with a finalizer for
// automatic memory management.
type solid struct {
	ptr *C.ManifoldManifold
}

func newSolid(ptr *C.ManifoldManifold) *solid {
	s := &solid{ptr: ptr}
	runtime.SetFinalizer(s, func(s *solid) {
		if s.ptr != nil {
			C.manifold_delete_manifold(s.ptr)
			s.ptr = nil
		}
	})
	return s
}

// Union combines fragments into a single watertight fragment. It fails
// when any input is not a closed orientable mesh, which is exactly the
// case the concatenation fallback exists for.
func Union(frags []*mesh.Fragment) (*mesh.Fragment, error) {
	if len(frags) == 0 {
		return nil, fmt.Errorf("boolean: no fragments")
	}
	if len(frags) == 1 {
		return frags[0], nil
	}

	acc, err := toSolid(frags[0])
	if err != nil {
		return nil, err
	}
	for _, f := range frags[1:] {
		s, err := toSolid(f)
		if err != nil {
			return nil, err
		}
		alloc := C.manifold_alloc_manifold()
		acc = newSolid(C.manifold_union(alloc, acc.ptr, s.ptr))
		if C.manifold_status(acc.ptr) != C.MANIFOLD_NO_ERROR {
			return nil, fmt.Errorf("boolean: union produced an invalid manifold")
		}
	}

	out, err := toFragment(acc)
	if err != nil {
		return nil, err
	}
	out.CreationPose = frags[0].CreationPose
	out.Material = frags[0].Material
	return out, nil
}

// toSolid converts a fragment into a Manifold solid.
func toSolid(f *mesh.Fragment) (*solid, error) {
	if f.IsEmpty() {
		return nil, fmt.Errorf("boolean: empty fragment")
	}
	props := make([]float32, len(f.Vertices)*3)
	for i, v := range f.Vertices {
		props[i*3+0] = float32(v.X)
		props[i*3+1] = float32(v.Y)
		props[i*3+2] = float32(v.Z)
	}
	tris := make([]uint32, len(f.Faces)*3)
	for i, face := range f.Faces {
		tris[i*3+0] = uint32(face[0])
		tris[i*3+1] = uint32(face[1])
		tris[i*3+2] = uint32(face[2])
	}

	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_meshgl(meshAlloc,
		(*C.float)(unsafe.Pointer(&props[0])),
		C.size_t(len(f.Vertices)),
		C.size_t(3),
		(*C.uint32_t)(unsafe.Pointer(&tris[0])),
		C.size_t(len(f.Faces)),
	)
	defer C.manifold_delete_meshgl(meshGL)

	alloc := C.manifold_alloc_manifold()
	s := newSolid(C.manifold_of_meshgl(alloc, meshGL))
	if C.manifold_status(s.ptr) != C.MANIFOLD_NO_ERROR {
		return nil, fmt.Errorf("boolean: fragment is not a closed manifold mesh")
	}
	return s, nil
}

// toFragment extracts the solid's mesh back into a fragment.
func toFragment(s *solid) (*mesh.Fragment, error) {
	meshAlloc := C.manifold_alloc_meshgl()
	meshGL := C.manifold_get_meshgl(meshAlloc, s.ptr)
	defer C.manifold_delete_meshgl(meshGL)

	numVert := int(C.manifold_meshgl_num_vert(meshGL))
	numTri := int(C.manifold_meshgl_num_tri(meshGL))
	if numVert == 0 || numTri == 0 {
		return nil, fmt.Errorf("boolean: union result is empty")
	}

	numProp := int(C.manifold_meshgl_num_prop(meshGL))
	propData := make([]float32, numVert*numProp)
	C.manifold_meshgl_vert_properties(
		(*C.float)(unsafe.Pointer(&propData[0])),
		meshGL,
	)
	indices := make([]uint32, numTri*3)
	C.manifold_meshgl_tri_verts(
		(*C.uint32_t)(unsafe.Pointer(&indices[0])),
		meshGL,
	)

	out := &mesh.Fragment{
		Vertices: make([]v3.Vec, numVert),
		Faces:    make([][3]int, numTri),
	}
	for i := 0; i < numVert; i++ {
		base := i * numProp
		out.Vertices[i] = v3.Vec{
			X: float64(propData[base+0]),
			Y: float64(propData[base+1]),
			Z: float64(propData[base+2]),
		}
	}
	for i := 0; i < numTri; i++ {
		out.Faces[i] = [3]int{
			int(indices[i*3+0]),
			int(indices[i*3+1]),
			int(indices[i*3+2]),
		}
	}
	return out, nil
}
