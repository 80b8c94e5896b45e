package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

// Box is an oriented box collider defined by its half-extents.
type Box struct {
	base
	HalfExtents mgl64.Vec3
}

func NewBox(halfExtents mgl64.Vec3) *Box {
	return &Box{HalfExtents: halfExtents}
}

func (b *Box) Kind() Kind { return KindConvex }

func (b *Box) SetWorldTransform(t spatial.Transform) {
	local := spatial.AABB{Min: b.HalfExtents.Mul(-1), Max: b.HalfExtents}
	b.markUpdated(local.Transform(t.Position, t.Rotation))
}

func (b *Box) ComputeMass(density float64) float64 {
	volume := 8.0 * b.HalfExtents.X() * b.HalfExtents.Y() * b.HalfExtents.Z()
	return density * volume
}

func (b *Box) ComputeInertia(mass float64) mgl64.Mat3 {
	x := b.HalfExtents.X() * 2
	y := b.HalfExtents.Y() * 2
	z := b.HalfExtents.Z() * 2

	factor := mass / 12.0
	ix := factor * (y*y + z*z)
	iy := factor * (x*x + z*z)
	iz := factor * (x*x + y*y)

	return mgl64.Mat3{
		ix, 0, 0,
		0, iy, 0,
		0, 0, iz,
	}
}

func (b *Box) Support(direction mgl64.Vec3) mgl64.Vec3 {
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	if direction.X() < 0 {
		hx = -hx
	}
	if direction.Y() < 0 {
		hy = -hy
	}
	if direction.Z() < 0 {
		hz = -hz
	}

	return mgl64.Vec3{hx, hy, hz}
}

// boxFaceSigns holds the 6 faces of a unit box in the +/-X, +/-Y, +/-Z
// winding order used by GetContactFeature, scaled per-call by HalfExtents.
var boxFaceSigns = [6][4][3]float64{
	{{1, -1, -1}, {1, -1, 1}, {1, 1, 1}, {1, 1, -1}},     // +X
	{{-1, -1, 1}, {-1, -1, -1}, {-1, 1, -1}, {-1, 1, 1}}, // -X
	{{-1, 1, -1}, {-1, 1, 1}, {1, 1, 1}, {1, 1, -1}},     // +Y
	{{-1, -1, 1}, {1, -1, 1}, {1, -1, -1}, {-1, -1, -1}}, // -Y
	{{-1, -1, 1}, {-1, 1, 1}, {1, 1, 1}, {1, -1, 1}},     // +Z
	{{1, -1, -1}, {1, 1, -1}, {-1, 1, -1}, {-1, -1, -1}}, // -Z
}

var boxFaceNormals = [6]mgl64.Vec3{
	{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
}

func (b *Box) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	dir := direction.Normalize()
	hx, hy, hz := b.HalfExtents.X(), b.HalfExtents.Y(), b.HalfExtents.Z()

	bestDot := -math.MaxFloat64
	bestFace := 0
	for i, n := range boxFaceNormals {
		if d := dir.Dot(n); d > bestDot {
			bestDot = d
			bestFace = i
		}
	}

	for i, sign := range boxFaceSigns[bestFace] {
		buffer[i] = mgl64.Vec3{sign[0] * hx, sign[1] * hy, sign[2] * hz}
	}
	return 4
}
