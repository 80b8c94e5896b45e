package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/mesh"
	"github.com/ignis-engine/physics/spatial"
)

// Polyhedron is a general convex collider backed by a half-edge mesh.
// Support/GetContactFeature argmax over the mesh's local-space vertices
// (the local-space contract every Convex.Support caller relies on);
// SetWorldTransform only needs to derive the world AABB.
type Polyhedron struct {
	base
	Mesh          *mesh.HalfEdgeMesh
	localCentroid mgl64.Vec3
}

func NewPolyhedron(m *mesh.HalfEdgeMesh) *Polyhedron {
	p := &Polyhedron{Mesh: m}
	var sum mgl64.Vec3
	for _, v := range m.Vertices {
		sum = sum.Add(v)
	}
	if len(m.Vertices) > 0 {
		p.localCentroid = sum.Mul(1.0 / float64(len(m.Vertices)))
	}
	return p
}

func (p *Polyhedron) Kind() Kind { return KindConvex }

func (p *Polyhedron) SetWorldTransform(t spatial.Transform) {
	worldCorner := t.Rotation.Rotate(p.Mesh.Vertices[0]).Add(t.Position)
	min, max := worldCorner, worldCorner

	for i := 1; i < len(p.Mesh.Vertices); i++ {
		wv := t.Rotation.Rotate(p.Mesh.Vertices[i]).Add(t.Position)
		min[0], min[1], min[2] = minf(min[0], wv[0]), minf(min[1], wv[1]), minf(min[2], wv[2])
		max[0], max[1], max[2] = maxf(max[0], wv[0]), maxf(max[1], wv[1]), maxf(max[2], wv[2])
	}

	p.markUpdated(spatial.AABB{Min: min, Max: max})
}

// ComputeMass treats the polyhedron as a uniform-density convex hull and
// estimates its volume via tetrahedral decomposition from the centroid.
func (p *Polyhedron) ComputeMass(density float64) float64 {
	volume := 0.0
	for f := range p.Mesh.Faces {
		verts := p.Mesh.FaceVertices(f)
		for i := 1; i+1 < len(verts); i++ {
			volume += signedTetraVolume(p.localCentroid, verts[0], verts[i], verts[i+1])
		}
	}
	return density * math.Abs(volume)
}

func signedTetraVolume(a, b, c, d mgl64.Vec3) float64 {
	return b.Sub(a).Cross(c.Sub(a)).Dot(d.Sub(a)) / 6.0
}

// ComputeInertia approximates the polyhedron with the inertia of its
// bounding box at the same mass; acceptable for a broad-phase/PGS core that
// does not promise exact inertia for arbitrary hulls.
func (p *Polyhedron) ComputeInertia(mass float64) mgl64.Mat3 {
	var minL, maxL mgl64.Vec3 = p.Mesh.Vertices[0], p.Mesh.Vertices[0]
	for _, v := range p.Mesh.Vertices {
		minL[0], minL[1], minL[2] = minf(minL[0], v[0]), minf(minL[1], v[1]), minf(minL[2], v[2])
		maxL[0], maxL[1], maxL[2] = maxf(maxL[0], v[0]), maxf(maxL[1], v[1]), maxf(maxL[2], v[2])
	}
	ext := maxL.Sub(minL)
	x, y, z := ext.X(), ext.Y(), ext.Z()
	factor := mass / 12.0
	return mgl64.Mat3{
		factor * (y*y + z*z), 0, 0,
		0, factor * (x*x + z*z), 0,
		0, 0, factor * (x*x + y*y),
	}
}

func (p *Polyhedron) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := p.Mesh.Vertices[0]
	bestDot := best.Dot(direction)
	for _, v := range p.Mesh.Vertices[1:] {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

// GetContactFeature returns the vertices of the face whose normal is best
// aligned with direction.
func (p *Polyhedron) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	bestFace := 0
	bestDot := -math.MaxFloat64
	for i, f := range p.Mesh.Faces {
		if d := f.Normal.Dot(direction); d > bestDot {
			bestDot = d
			bestFace = i
		}
	}

	verts := p.Mesh.FaceVertices(bestFace)
	n := len(verts)
	if n > MaxContactFeaturePoints {
		n = MaxContactFeaturePoints
	}
	for i := 0; i < n; i++ {
		buffer[i] = verts[i]
	}
	return n
}

// Triangle is a single-face convex collider used both standalone and as the
// implicit cell geometry synthesised by Terrain.
type Triangle struct {
	base
	V0, V1, V2 mgl64.Vec3
}

func NewTriangle(v0, v1, v2 mgl64.Vec3) *Triangle { return &Triangle{V0: v0, V1: v1, V2: v2} }

func (tr *Triangle) Kind() Kind { return KindConvex }

func (tr *Triangle) SetWorldTransform(t spatial.Transform) {
	w0 := t.Rotation.Rotate(tr.V0).Add(t.Position)
	w1 := t.Rotation.Rotate(tr.V1).Add(t.Position)
	w2 := t.Rotation.Rotate(tr.V2).Add(t.Position)

	min := mgl64.Vec3{minf(w0[0], minf(w1[0], w2[0])), minf(w0[1], minf(w1[1], w2[1])), minf(w0[2], minf(w1[2], w2[2]))}
	max := mgl64.Vec3{maxf(w0[0], maxf(w1[0], w2[0])), maxf(w0[1], maxf(w1[1], w2[1])), maxf(w0[2], maxf(w1[2], w2[2]))}
	tr.markUpdated(spatial.AABB{Min: min, Max: max})
}

// ComputeMass/ComputeInertia: a triangle is a zero-thickness shape, only
// meaningful as a static (infinite-mass) collider, matching Terrain's usage.
func (tr *Triangle) ComputeMass(density float64) float64    { return math.Inf(1) }
func (tr *Triangle) ComputeInertia(mass float64) mgl64.Mat3 { return mgl64.Mat3{} }

func (tr *Triangle) Support(direction mgl64.Vec3) mgl64.Vec3 {
	best := tr.V0
	bestDot := best.Dot(direction)
	for _, v := range [2]mgl64.Vec3{tr.V1, tr.V2} {
		if d := v.Dot(direction); d > bestDot {
			bestDot = d
			best = v
		}
	}
	return best
}

func (tr *Triangle) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	buffer[0], buffer[1], buffer[2] = tr.V0, tr.V1, tr.V2
	return 3
}
