// Package shape implements the collider hierarchy: convex primitives with a
// support-mapping interface, and concave colliders that lazily yield convex
// sub-parts to the narrow-phase.
package shape

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

// Kind distinguishes the two collider capability sets so the narrow-phase
// can recover convex/concave identity without type probing every shape.
type Kind int

const (
	KindConvex Kind = iota
	KindConcave
)

// Collider is the capability set shared by every collider variant.
type Collider interface {
	Kind() Kind
	SetWorldTransform(t spatial.Transform)
	AABB() spatial.AABB
	Updated() bool
	ResetUpdatedState()
}

// Convex is a collider that supports the GJK/EPA support-mapping query.
// MaxContactFeaturePoints bounds the buffer GetContactFeature writes into.
const MaxContactFeaturePoints = 8

type Convex interface {
	Collider

	// ComputeMass returns the mass of the shape at the given density.
	ComputeMass(density float64) float64
	// ComputeInertia returns the local-space inertia tensor for the given mass.
	ComputeInertia(mass float64) mgl64.Mat3
	// Support returns the point of the shape (in local space) maximising
	// direction·p.
	Support(direction mgl64.Vec3) mgl64.Vec3
	// GetContactFeature writes into buffer the vertices (in local space) of
	// the face/edge/point best aligned with direction, and returns the
	// count written. Zero-allocation: callers own buffer.
	GetContactFeature(direction mgl64.Vec3, buffer *[MaxContactFeaturePoints]mgl64.Vec3) int
}

// Concave colliders lazily enumerate convex sub-parts overlapping a query
// region instead of exposing a single support mapping.
type Concave interface {
	Collider
	// ProcessOverlappingParts calls fn once per convex sub-shape whose AABB
	// overlaps aabb within slack eps, together with the world transform the
	// sub-shape's local-space Support/GetContactFeature results must be
	// composed through. Enumeration order is unspecified but stable for a
	// fixed configuration.
	ProcessOverlappingParts(aabb spatial.AABB, eps float64, fn func(Convex, spatial.Transform))
	// ProcessIntersectingParts calls fn once per convex sub-shape whose AABB
	// is pierced by the ray (origin, dir) within slack eps, together with
	// the world transform to compose local-space results through. Used by
	// ray casts against concave geometry instead of walking every sub-part.
	ProcessIntersectingParts(origin, dir mgl64.Vec3, eps float64, fn func(Convex, spatial.Transform))
}

// base is embedded by every concrete shape to provide the updated-flag
// bookkeeping contract common to all colliders.
type base struct {
	aabb    spatial.AABB
	updated bool
}

func (b *base) AABB() spatial.AABB     { return b.aabb }
func (b *base) Updated() bool          { return b.updated }
func (b *base) ResetUpdatedState()     { b.updated = false }
func (b *base) markUpdated(a spatial.AABB) {
	b.aabb = a
	b.updated = true
}

// getTangentBasis builds an orthonormal tangent frame for normal, used by
// plane contact-feature generation.
func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var tangent1 mgl64.Vec3
	if math.Abs(normal.X()) > 0.9 {
		tangent1 = mgl64.Vec3{0, 1, 0}
	} else {
		tangent1 = mgl64.Vec3{1, 0, 0}
	}

	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()
	return tangent1, tangent2
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
