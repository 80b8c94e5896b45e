package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/manifold"
)

// DefaultBaumgarte, DefaultPenetrationSlop and DefaultRestitutionSlop seed a
// ContactConstraint built through NewContactConstraint without an explicit
// World - every World-driven path overrides these with its own Config, per
// spec.md S9's "treat all epsilons as configuration, not literals".
const (
	DefaultBaumgarte       = 0.2
	DefaultPenetrationSlop = 0.005
	DefaultRestitutionSlop = 0.5
)

// slipVelocityThreshold is the tangential speed above which a contact point
// is treated as sliding (dynamicFriction applies) rather than sticking
// (staticFriction applies), the usual Coulomb static/kinetic switch.
const slipVelocityThreshold = 1e-3

// contactRow is one contact point's precomputed solver data: the Jacobian
// geometry (rA, rB, normal, tangents) and effective masses are assembled
// once per step in Prepare; NormalImpulse/TangentImpulse are the running
// lambda accumulators the PGS loop refines every iteration and that get
// written back to the manifold for next-frame warm starting.
type contactRow struct {
	rA, rB      mgl64.Vec3
	tangent     [2]mgl64.Vec3
	normalMass  float64
	tangentMass [2]float64
	bias        float64

	normalImpulse  float64
	tangentImpulse [2]float64
}

// ContactConstraint resolves one persistent Manifold between two bodies: up
// to manifold.MaxContactPoints normal rows plus two friction rows each,
// solved by Projected Gauss-Seidel with warm-started, clamped lambdas.
type ContactConstraint struct {
	BodyA, BodyB *body.RigidBody
	Manifold     *manifold.Manifold

	restitution     float64
	staticFriction  float64
	dynamicFriction float64

	baumgarte       float64
	penetrationSlop float64
	restitutionSlop float64

	rows []contactRow
}

// NewContactConstraint derives the combined material coefficients once,
// using the package defaults for Baumgarte stabilisation and the two slop
// terms; Prepare is called fresh every step to rebuild per-point geometry.
func NewContactConstraint(a, b *body.RigidBody, m *manifold.Manifold) *ContactConstraint {
	return NewContactConstraintWithConfig(a, b, m, DefaultBaumgarte, DefaultPenetrationSlop, DefaultRestitutionSlop)
}

// NewContactConstraintWithConfig is NewContactConstraint with the three
// solver tunables taken from a World's Config instead of the package
// defaults.
func NewContactConstraintWithConfig(a, b *body.RigidBody, m *manifold.Manifold, baumgarte, penetrationSlop, restitutionSlop float64) *ContactConstraint {
	return &ContactConstraint{
		BodyA:           a,
		BodyB:           b,
		Manifold:        m,
		restitution:     ComputeRestitution(a.Material, b.Material),
		staticFriction:  ComputeStaticFriction(a.Material, b.Material),
		dynamicFriction: ComputeDynamicFriction(a.Material, b.Material),
		baumgarte:       baumgarte,
		penetrationSlop: penetrationSlop,
		restitutionSlop: restitutionSlop,
	}
}

// Prepare computes the Jacobian geometry and bias for every manifold point,
// then warm-starts by applying each point's carried-over impulse from the
// prior step exactly once before the PGS loop begins.
func (c *ContactConstraint) Prepare(dt float64) {
	a, b := c.BodyA, c.BodyB
	normal := c.Manifold.Normal
	c.rows = c.rows[:0]

	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()

	for i := range c.Manifold.Contacts {
		contact := &c.Manifold.Contacts[i]

		rA := contact.WorldPosition.Sub(a.Transform.Position)
		rB := contact.WorldPosition.Sub(b.Transform.Position)

		row := contactRow{rA: rA, rB: rB}
		row.tangent[0], row.tangent[1] = tangentBasis(normal)

		row.normalMass = effectiveMass(rA, rB, normal, invMassA, invMassB, invIA, invIB)
		row.tangentMass[0] = effectiveMass(rA, rB, row.tangent[0], invMassA, invMassB, invIA, invIB)
		row.tangentMass[1] = effectiveMass(rA, rB, row.tangent[1], invMassA, invMassB, invIA, invIB)

		vA := a.Velocity.Add(a.AngularVelocity.Cross(rA))
		vB := b.Velocity.Add(b.AngularVelocity.Cross(rB))
		approachVelocity := vB.Sub(vA).Dot(normal)

		positionBias := c.baumgarte * math.Max(0, contact.Penetration-c.penetrationSlop) / dt
		restitutionBias := 0.0
		if -approachVelocity > c.restitutionSlop {
			restitutionBias = c.restitution * (-approachVelocity - c.restitutionSlop)
		}
		row.bias = positionBias + restitutionBias

		row.normalImpulse = contact.NormalImpulse
		row.tangentImpulse = contact.TangentImpulse

		c.rows = append(c.rows, row)

		impulse := normal.Mul(row.normalImpulse).
			Add(row.tangent[0].Mul(row.tangentImpulse[0])).
			Add(row.tangent[1].Mul(row.tangentImpulse[1]))
		applyImpulsePair(a, b, rA, rB, impulse, invMassA, invMassB, invIA, invIB)
	}
}

// Solve runs one Gauss-Seidel sweep: every point's normal row first (so the
// same-iteration normal impulse bounds each point's friction rows), then
// every point's two friction rows clamped to [-mu*lambdaN, +mu*lambdaN].
func (c *ContactConstraint) Solve(dt float64) {
	if len(c.rows) == 0 {
		return
	}
	a, b := c.BodyA, c.BodyB
	if a.IsSleeping && b.IsSleeping {
		return
	}
	normal := c.Manifold.Normal
	invMassA, invMassB := a.InvMass(), b.InvMass()
	invIA, invIB := a.GetInverseInertiaWorld(), b.GetInverseInertiaWorld()

	for i := range c.rows {
		row := &c.rows[i]

		vA := a.Velocity.Add(a.AngularVelocity.Cross(row.rA))
		vB := b.Velocity.Add(b.AngularVelocity.Cross(row.rB))
		relVel := vB.Sub(vA).Dot(normal)

		deltaLambda := (-row.bias - relVel) * row.normalMass
		newImpulse := math.Max(row.normalImpulse+deltaLambda, 0)
		deltaLambda = newImpulse - row.normalImpulse
		row.normalImpulse = newImpulse

		applyImpulsePair(a, b, row.rA, row.rB, normal.Mul(deltaLambda), invMassA, invMassB, invIA, invIB)
	}

	for i := range c.rows {
		row := &c.rows[i]

		vA := a.Velocity.Add(a.AngularVelocity.Cross(row.rA))
		vB := b.Velocity.Add(b.AngularVelocity.Cross(row.rB))
		tangentRelVel := [2]float64{
			vB.Sub(vA).Dot(row.tangent[0]),
			vB.Sub(vA).Dot(row.tangent[1]),
		}

		friction := c.staticFriction
		if math.Hypot(tangentRelVel[0], tangentRelVel[1]) > slipVelocityThreshold {
			friction = c.dynamicFriction
		}
		maxFriction := friction * row.normalImpulse

		for axis := 0; axis < 2; axis++ {
			vA := a.Velocity.Add(a.AngularVelocity.Cross(row.rA))
			vB := b.Velocity.Add(b.AngularVelocity.Cross(row.rB))
			relVel := vB.Sub(vA).Dot(row.tangent[axis])

			deltaLambda := -relVel * row.tangentMass[axis]
			newImpulse := clamp(row.tangentImpulse[axis]+deltaLambda, -maxFriction, maxFriction)
			deltaLambda = newImpulse - row.tangentImpulse[axis]
			row.tangentImpulse[axis] = newImpulse

			applyImpulsePair(a, b, row.rA, row.rB, row.tangent[axis].Mul(deltaLambda), invMassA, invMassB, invIA, invIB)
		}
	}
}

// Bodies reports the two bodies this constraint couples, for sleep-island
// union-find.
func (c *ContactConstraint) Bodies() (*body.RigidBody, *body.RigidBody) { return c.BodyA, c.BodyB }

// StoreImpulses writes each row's converged lambda back onto the manifold's
// contact points, the warm-start seed for next step's Prepare.
func (c *ContactConstraint) StoreImpulses() {
	for i := range c.rows {
		c.Manifold.Contacts[i].NormalImpulse = c.rows[i].normalImpulse
		c.Manifold.Contacts[i].TangentImpulse = c.rows[i].tangentImpulse
	}
	clampSmallVelocities(c.BodyA)
	clampSmallVelocities(c.BodyB)
}

func effectiveMass(rA, rB, axis mgl64.Vec3, invMassA, invMassB float64, invIA, invIB mgl64.Mat3) float64 {
	rAxN := rA.Cross(axis)
	rBxN := rB.Cross(axis)
	denom := invMassA + invMassB + invIA.Mul3x1(rAxN).Dot(rAxN) + invIB.Mul3x1(rBxN).Dot(rBxN)
	if denom < 1e-10 {
		return 0
	}
	return 1.0 / denom
}

func applyImpulsePair(a, b *body.RigidBody, rA, rB, impulse mgl64.Vec3, invMassA, invMassB float64, invIA, invIB mgl64.Mat3) {
	if a.BodyType == body.Dynamic {
		a.Velocity = a.Velocity.Sub(impulse.Mul(invMassA))
		a.AngularVelocity = a.AngularVelocity.Sub(invIA.Mul3x1(rA.Cross(impulse)))
	}
	if b.BodyType == body.Dynamic {
		b.Velocity = b.Velocity.Add(impulse.Mul(invMassB))
		b.AngularVelocity = b.AngularVelocity.Add(invIB.Mul3x1(rB.Cross(impulse)))
	}
}

func tangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	t1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > 0.9 {
		t1 = mgl64.Vec3{0, 1, 0}
	}
	t1 = t1.Sub(normal.Mul(t1.Dot(normal))).Normalize()
	t2 := normal.Cross(t1).Normalize()
	return t1, t2
}
