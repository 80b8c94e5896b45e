package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

// Sphere is a spherical collider. Its AABB is invariant under rotation.
type Sphere struct {
	base
	Radius float64
}

func NewSphere(radius float64) *Sphere { return &Sphere{Radius: radius} }

func (s *Sphere) Kind() Kind { return KindConvex }

func (s *Sphere) SetWorldTransform(t spatial.Transform) {
	r := mgl64.Vec3{s.Radius, s.Radius, s.Radius}
	s.markUpdated(spatial.AABB{Min: t.Position.Sub(r), Max: t.Position.Add(r)})
}

func (s *Sphere) ComputeMass(density float64) float64 {
	volume := (4.0 / 3.0) * math.Pi * math.Pow(s.Radius, 3)
	return density * volume
}

func (s *Sphere) ComputeInertia(mass float64) mgl64.Mat3 {
	i := (2.0 / 5.0) * mass * s.Radius * s.Radius
	return mgl64.Mat3{
		i, 0, 0,
		0, i, 0,
		0, 0, i,
	}
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-16 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return direction.Normalize().Mul(s.Radius)
}

func (s *Sphere) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	buffer[0] = s.Support(direction)
	return 1
}

// Capsule is a sphere swept along its local Y axis between +/-halfHeight,
// i.e. support mapping reduces to choosing which end-cap centre maximises
// d·c, then applying sphere support from that centre.
type Capsule struct {
	base
	Radius     float64
	HalfHeight float64
}

func NewCapsule(radius, halfHeight float64) *Capsule {
	return &Capsule{Radius: radius, HalfHeight: halfHeight}
}

func (c *Capsule) Kind() Kind { return KindConvex }

func (c *Capsule) SetWorldTransform(t spatial.Transform) {
	local := spatial.AABB{
		Min: mgl64.Vec3{-c.Radius, -c.HalfHeight - c.Radius, -c.Radius},
		Max: mgl64.Vec3{c.Radius, c.HalfHeight + c.Radius, c.Radius},
	}
	c.markUpdated(local.Transform(t.Position, t.Rotation))
}

func (c *Capsule) ComputeMass(density float64) float64 {
	cylinderVolume := math.Pi * c.Radius * c.Radius * (2 * c.HalfHeight)
	sphereVolume := (4.0 / 3.0) * math.Pi * math.Pow(c.Radius, 3)
	return density * (cylinderVolume + sphereVolume)
}

func (c *Capsule) ComputeInertia(mass float64) mgl64.Mat3 {
	// Approximate as a cylinder plus two hemispherical end-caps contributing
	// their sphere inertia about the capsule's own axis; adequate for a
	// rigid-body core that does not claim sub-percent inertia accuracy.
	r2 := c.Radius * c.Radius
	h := 2 * c.HalfHeight
	iY := 0.5 * mass * r2
	iXZ := mass*(3*r2+h*h)/12.0 + mass*0.4*r2

	return mgl64.Mat3{
		iXZ, 0, 0,
		0, iY, 0,
		0, 0, iXZ,
	}
}

func (c *Capsule) endCap(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.Y() >= 0 {
		return mgl64.Vec3{0, c.HalfHeight, 0}
	}
	return mgl64.Vec3{0, -c.HalfHeight, 0}
}

func (c *Capsule) Support(direction mgl64.Vec3) mgl64.Vec3 {
	center := c.endCap(direction)
	if direction.LenSqr() < 1e-16 {
		return center.Add(mgl64.Vec3{c.Radius, 0, 0})
	}
	return center.Add(direction.Normalize().Mul(c.Radius))
}

func (c *Capsule) GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int {
	buffer[0] = c.Support(direction)
	return 1
}
