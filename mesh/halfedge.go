// Package mesh implements the half-edge indexed mesh structure backing
// convex polyhedron colliders.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// HalfEdge is one directed edge of a face loop. Twin points at the
// half-edge travelling the opposite direction along the same undirected
// edge; for a closed convex mesh every half-edge has a twin.
type HalfEdge struct {
	Origin int // index into Mesh.Vertices
	Next   int // index into Mesh.HalfEdges, next edge around the same face
	Twin   int // index into Mesh.HalfEdges, -1 if this is a boundary edge
	Face   int // index into Mesh.Faces
}

// Face is a planar loop of half-edges plus its outward normal.
type Face struct {
	Edge   int // index of one half-edge bounding this face
	Normal mgl64.Vec3
}

// HalfEdgeMesh is an indexed vertex/edge/face structure for convex
// polyhedra. Invariant: every half-edge has a Twin except on open
// boundaries; convex colliders built from closed meshes never hit that
// case at runtime.
type HalfEdgeMesh struct {
	Vertices  []mgl64.Vec3
	HalfEdges []HalfEdge
	Faces     []Face
}

// NewFromFaces builds a HalfEdgeMesh from a vertex list and a list of
// faces, each face given as a CCW (outward-normal) loop of vertex indices.
// Twins are resolved by matching each directed edge (a,b) against the
// reverse-directed edge (b,a) produced by an adjacent face.
func NewFromFaces(vertices []mgl64.Vec3, faceLoops [][]int) (*HalfEdgeMesh, error) {
	m := &HalfEdgeMesh{Vertices: vertices}

	type edgeKey struct{ a, b int }
	halfEdgeOf := make(map[edgeKey]int)

	for fi, loop := range faceLoops {
		if len(loop) < 3 {
			return nil, fmt.Errorf("mesh: face %d has fewer than 3 vertices", fi)
		}

		start := len(m.HalfEdges)
		for i, v := range loop {
			next := start + (i+1)%len(loop)
			m.HalfEdges = append(m.HalfEdges, HalfEdge{Origin: v, Next: next, Twin: -1, Face: fi})
		}

		normal := faceNormal(vertices, loop)
		m.Faces = append(m.Faces, Face{Edge: start, Normal: normal})

		for i := range loop {
			a := loop[i]
			b := loop[(i+1)%len(loop)]
			halfEdgeOf[edgeKey{a, b}] = start + i
		}
	}

	for key, he := range halfEdgeOf {
		if twin, ok := halfEdgeOf[edgeKey{key.b, key.a}]; ok {
			e := m.HalfEdges[he]
			e.Twin = twin
			m.HalfEdges[he] = e
		}
	}

	return m, nil
}

func faceNormal(vertices []mgl64.Vec3, loop []int) mgl64.Vec3 {
	a, b, c := vertices[loop[0]], vertices[loop[1]], vertices[loop[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < 1e-20 {
		return mgl64.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// FaceVertices returns the vertex positions of face f in loop order.
func (m *HalfEdgeMesh) FaceVertices(f int) []mgl64.Vec3 {
	var out []mgl64.Vec3
	start := m.Faces[f].Edge
	e := start
	for {
		out = append(out, m.Vertices[m.HalfEdges[e].Origin])
		e = m.HalfEdges[e].Next
		if e == start {
			break
		}
	}
	return out
}
