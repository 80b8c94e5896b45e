// Package constraint implements the sequential-impulse (Projected
// Gauss-Seidel) velocity solver: contact constraints with warm-started,
// clamped normal/friction lambdas, and bilateral joint constraints such as
// DistanceConstraint.
package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
)

// Constraint is one row (or block of rows, for contacts) the PGS solver
// visits once per Gauss-Seidel iteration. Prepare runs once per step before
// the iteration loop starts: it computes the Jacobian geometry, effective
// mass and bias, then applies the carried-over (warm-started) impulse once.
// Solve runs once per iteration, projecting and clamping its accumulated
// impulse. StoreImpulses persists the converged lambda for next step's
// warm start (contacts) or is a no-op (bilateral joints with no manifold).
type Constraint interface {
	Prepare(dt float64)
	Solve(dt float64)
	StoreImpulses()
}

// Bodied is implemented by every Constraint to expose the body pair it
// couples, letting a World build sleep-island union-find groups and
// event-pair tracking generically without type-switching on constraint kind.
type Bodied interface {
	Bodies() (*body.RigidBody, *body.RigidBody)
}

// ComputeRestitution combines two materials' restitution as an average -
// the common middle ground between "max" (anything bounces if one side is
// bouncy) and "geometric mean" (Box2D's choice); either side can still be
// tuned back toward either extreme with its own Restitution value.
func ComputeRestitution(matA, matB body.Material) float64 {
	return (matA.Restitution + matB.Restitution) / 2.0
}

// ComputeStaticFriction combines two materials' static friction
// coefficients as their geometric mean, the standard combination rule.
func ComputeStaticFriction(matA, matB body.Material) float64 {
	return math.Sqrt(matA.StaticFriction * matB.StaticFriction)
}

// ComputeDynamicFriction combines two materials' dynamic friction
// coefficients as their geometric mean.
func ComputeDynamicFriction(matA, matB body.Material) float64 {
	return math.Sqrt(matA.DynamicFriction * matB.DynamicFriction)
}

func clampSmallVelocities(rb *body.RigidBody) {
	const velocityThreshold = 1e-5
	if rb.Velocity.Len() < velocityThreshold {
		rb.Velocity = mgl64.Vec3{}
	}
	if rb.AngularVelocity.Len() < velocityThreshold {
		rb.AngularVelocity = mgl64.Vec3{}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
