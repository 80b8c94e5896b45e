// Package manifold builds and persists contact manifolds from EPA's raw
// penetration results: clipping incident/reference features into up to 4
// contact points, and carrying warm-start impulses for those points across
// ticks so the constraint solver converges in fewer iterations.
package manifold

import "github.com/go-gl/mathgl/mgl64"

// Contact is one persistent point of a Manifold. LocalAnchorA/B are stored
// in each body's local space so the point can be re-projected into world
// space every tick as the bodies move, without re-running EPA - the
// "refresh" step of manifold accumulation.
type Contact struct {
	LocalAnchorA mgl64.Vec3
	LocalAnchorB mgl64.Vec3

	WorldPosition mgl64.Vec3
	Penetration   float64

	// NormalImpulse and TangentImpulse are the sequential-impulse solver's
	// accumulated lambda for this point, warm-started from the previous
	// tick's solve so the solver starts near the converged answer.
	NormalImpulse  float64
	TangentImpulse [2]float64
}
