package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
)

var worldAxes = [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// HingeConstraint restricts two bodies to rotate relative to each other only
// about a shared axis - the "hinge-style" user constraint named alongside
// Distance in spec.md S3/S4.7. It couples two Jacobian blocks: a
// point-to-point row per world axis pinning LocalAnchorA to LocalAnchorB
// (so the bodies share a pivot), and two angular-only rows that drive the
// bodies' hinge axes toward coincidence. Both blocks reuse the same
// bilateral, unbounded-lambda shape as DistanceConstraint - only the
// Jacobian geometry differs.
type HingeConstraint struct {
	BodyA, BodyB               *body.RigidBody
	LocalAnchorA, LocalAnchorB mgl64.Vec3
	LocalAxisA, LocalAxisB     mgl64.Vec3

	rA, rB      mgl64.Vec3
	pointMass   [3]float64
	pointBias   [3]float64
	pointLambda [3]float64

	angAxis   [2]mgl64.Vec3
	angMass   [2]float64
	angBias   [2]float64
	angLambda [2]float64
}

func NewHingeConstraint(a, b *body.RigidBody, localAnchorA, localAnchorB, localAxisA, localAxisB mgl64.Vec3) *HingeConstraint {
	return &HingeConstraint{
		BodyA: a, BodyB: b,
		LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB,
		LocalAxisA: localAxisA.Normalize(), LocalAxisB: localAxisB.Normalize(),
	}
}

// Bodies reports the two bodies this constraint couples, for sleep-island
// union-find.
func (c *HingeConstraint) Bodies() (*body.RigidBody, *body.RigidBody) { return c.BodyA, c.BodyB }

func angularEffectiveMass(axis mgl64.Vec3, invIA, invIB mgl64.Mat3) float64 {
	denom := invIA.Mul3x1(axis).Dot(axis) + invIB.Mul3x1(axis).Dot(axis)
	if denom < 1e-10 {
		return 0
	}
	return 1.0 / denom
}

func applyAngularImpulsePair(a, b *body.RigidBody, axis mgl64.Vec3, impulse float64, invIA, invIB mgl64.Mat3) {
	if a.BodyType == body.Dynamic {
		a.AngularVelocity = a.AngularVelocity.Sub(invIA.Mul3x1(axis).Mul(impulse))
	}
	if b.BodyType == body.Dynamic {
		b.AngularVelocity = b.AngularVelocity.Add(invIB.Mul3x1(axis).Mul(impulse))
	}
}

func (c *HingeConstraint) Prepare(dt float64) {
	a, b := c.BodyA, c.BodyB

	worldAnchorA := a.Transform.LocalToWorldPoint(c.LocalAnchorA)
	worldAnchorB := b.Transform.LocalToWorldPoint(c.LocalAnchorB)
	c.rA = worldAnchorA.Sub(a.Transform.Position)
	c.rB = worldAnchorB.Sub(b.Transform.Position)

	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()

	const beta = 0.2
	posError := worldAnchorB.Sub(worldAnchorA)
	for k := 0; k < 3; k++ {
		c.pointMass[k] = effectiveMass(c.rA, c.rB, worldAxes[k], invMassA, invMassB, invIA, invIB)
		c.pointBias[k] = beta * posError[k] / dt
	}

	worldAxisA := a.Transform.Rotation.Rotate(c.LocalAxisA).Normalize()
	worldAxisB := b.Transform.Rotation.Rotate(c.LocalAxisB).Normalize()
	c.angAxis[0], c.angAxis[1] = tangentBasis(worldAxisA)

	// Small-angle swing error between the two axes: its projection onto
	// each perpendicular tangent is (approximately) the rotation needed
	// about that tangent to bring worldAxisB back onto worldAxisA.
	swingError := worldAxisA.Cross(worldAxisB)
	for k := 0; k < 2; k++ {
		c.angMass[k] = angularEffectiveMass(c.angAxis[k], invIA, invIB)
		c.angBias[k] = beta * swingError.Dot(c.angAxis[k]) / dt
	}

	for k := 0; k < 3; k++ {
		applyImpulsePair(a, b, c.rA, c.rB, worldAxes[k].Mul(c.pointLambda[k]), invMassA, invMassB, invIA, invIB)
	}
	for k := 0; k < 2; k++ {
		applyAngularImpulsePair(a, b, c.angAxis[k], c.angLambda[k], invIA, invIB)
	}
}

func (c *HingeConstraint) Solve(dt float64) {
	a, b := c.BodyA, c.BodyB
	if a.IsSleeping && b.IsSleeping {
		return
	}
	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()

	for k := 0; k < 3; k++ {
		if c.pointMass[k] < 1e-10 {
			continue
		}
		axis := worldAxes[k]
		vA := a.Velocity.Add(a.AngularVelocity.Cross(c.rA))
		vB := b.Velocity.Add(b.AngularVelocity.Cross(c.rB))
		relVel := vB.Sub(vA).Dot(axis)

		deltaLambda := (-c.pointBias[k] - relVel) * c.pointMass[k]
		c.pointLambda[k] += deltaLambda
		applyImpulsePair(a, b, c.rA, c.rB, axis.Mul(deltaLambda), invMassA, invMassB, invIA, invIB)
	}

	for k := 0; k < 2; k++ {
		if c.angMass[k] < 1e-10 {
			continue
		}
		axis := c.angAxis[k]
		relAngVel := b.AngularVelocity.Sub(a.AngularVelocity).Dot(axis)

		deltaLambda := (-c.angBias[k] - relAngVel) * c.angMass[k]
		c.angLambda[k] += deltaLambda
		applyAngularImpulsePair(a, b, axis, deltaLambda, invIA, invIB)
	}
}

func (c *HingeConstraint) StoreImpulses() {
	clampSmallVelocities(c.BodyA)
	clampSmallVelocities(c.BodyB)
}
