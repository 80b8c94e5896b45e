package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

// Plane is an infinite plane collider modelled as a very large thin box so
// it composes with the rest of the support-mapping machinery without a
// special-cased GJK/EPA path.
type Plane struct {
	base
	Normal   mgl64.Vec3
	Distance float64
}

func NewPlane(normal mgl64.Vec3, distance float64) *Plane {
	return &Plane{Normal: normal.Normalize(), Distance: distance}
}

func (p *Plane) Kind() Kind { return KindConvex }

func (p *Plane) SetWorldTransform(t spatial.Transform) {
	const thickness = 1.0
	const infinity = 1e10

	planePoint := p.Normal.Mul(-p.Distance)
	min := planePoint.Sub(p.Normal.Mul(thickness)).Add(t.Position)
	max := planePoint.Add(t.Position)

	absNormal := mgl64.Vec3{math.Abs(p.Normal.X()), math.Abs(p.Normal.Y()), math.Abs(p.Normal.Z())}
	const threshold = 1.0

	if absNormal.X() < threshold {
		min[0], max[0] = -infinity, infinity
	}
	if absNormal.Y() < threshold {
		min[1], max[1] = -infinity, infinity
	}
	if absNormal.Z() < threshold {
		min[2], max[2] = -infinity, infinity
	}

	p.markUpdated(spatial.AABB{Min: min, Max: max})
}

// ComputeMass always returns +Inf: planes are immovable ground geometry.
func (p *Plane) ComputeMass(density float64) float64 { return math.Inf(1) }

func (p *Plane) ComputeInertia(mass float64) mgl64.Mat3 { return mgl64.Mat3{} }

// Support approximates the plane as a 2000x0.5x2000 slab with its top face
// at y=0 in its own local frame (Y-up, Normal implicitly {0,1,0} in local
// space).
func (p *Plane) Support(direction mgl64.Vec3) mgl64.Vec3 {
	const halfWidth, halfHeight, halfDepth = 1000.0, 0.5, 1000.0

	x := halfWidth
	if direction.X() < 0 {
		x = -halfWidth
	}
	y := -halfHeight
	if direction.Y() > 0 {
		y = 0
	}
	z := halfDepth
	if direction.Z() < 0 {
		z = -halfDepth
	}
	return mgl64.Vec3{x, y, z}
}

func (p *Plane) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	tangent1, tangent2 := getTangentBasis(p.Normal)
	const size = 1000.0

	buffer[0] = tangent1.Mul(-size).Add(tangent2.Mul(-size))
	buffer[1] = tangent1.Mul(-size).Add(tangent2.Mul(size))
	buffer[2] = tangent1.Mul(size).Add(tangent2.Mul(size))
	buffer[3] = tangent1.Mul(size).Add(tangent2.Mul(-size))
	return 4
}
