package constraint

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
)

// DistanceConstraint pins the distance between a local anchor on BodyA and
// a local anchor on BodyB to RestLength, the classic two-body rod/rope
// joint. Its Jacobian is the textbook (-d, -r1xd, d, r2xd) row, grounded on
// the original engine's DistanceConstraint: a bilateral equality row with
// an unbounded lambda, unlike a contact's one-sided normal.
type DistanceConstraint struct {
	BodyA, BodyB       *body.RigidBody
	LocalAnchorA       mgl64.Vec3
	LocalAnchorB       mgl64.Vec3
	RestLength         float64

	rA, rB mgl64.Vec3
	axis   mgl64.Vec3
	mass   float64
	bias   float64
	lambda float64
}

func NewDistanceConstraint(a, b *body.RigidBody, localAnchorA, localAnchorB mgl64.Vec3, restLength float64) *DistanceConstraint {
	return &DistanceConstraint{BodyA: a, BodyB: b, LocalAnchorA: localAnchorA, LocalAnchorB: localAnchorB, RestLength: restLength}
}

// Bodies reports the two bodies this constraint couples, for sleep-island
// union-find.
func (c *DistanceConstraint) Bodies() (*body.RigidBody, *body.RigidBody) { return c.BodyA, c.BodyB }

func (c *DistanceConstraint) Prepare(dt float64) {
	a, b := c.BodyA, c.BodyB

	worldA := a.Transform.LocalToWorldPoint(c.LocalAnchorA)
	worldB := b.Transform.LocalToWorldPoint(c.LocalAnchorB)

	c.rA = worldA.Sub(a.Transform.Position)
	c.rB = worldB.Sub(b.Transform.Position)

	delta := worldB.Sub(worldA)
	currentLength := delta.Len()
	if currentLength < 1e-9 {
		c.axis = mgl64.Vec3{1, 0, 0}
		currentLength = 0
	} else {
		c.axis = delta.Mul(1.0 / currentLength)
	}

	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()
	c.mass = effectiveMass(c.rA, c.rB, c.axis, invMassA, invMassB, invIA, invIB)

	positionError := currentLength - c.RestLength
	const beta = 0.2
	c.bias = beta * positionError / dt

	impulse := c.axis.Mul(c.lambda)
	applyImpulsePair(a, b, c.rA, c.rB, impulse, invMassA, invMassB, invIA, invIB)
}

func (c *DistanceConstraint) Solve(dt float64) {
	a, b := c.BodyA, c.BodyB
	if a.IsSleeping && b.IsSleeping {
		return
	}
	if c.mass < 1e-10 {
		return
	}

	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()

	vA := a.Velocity.Add(a.AngularVelocity.Cross(c.rA))
	vB := b.Velocity.Add(b.AngularVelocity.Cross(c.rB))
	relVel := vB.Sub(vA).Dot(c.axis)

	deltaLambda := (-c.bias - relVel) * c.mass
	c.lambda += deltaLambda

	applyImpulsePair(a, b, c.rA, c.rB, c.axis.Mul(deltaLambda), invMassA, invMassB, invIA, invIB)
}

func (c *DistanceConstraint) StoreImpulses() {
	clampSmallVelocities(c.BodyA)
	clampSmallVelocities(c.BodyB)
}
