package physics

import (
	"bytes"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/body"
	"github.com/ignis-engine/physics/epa"
	"github.com/ignis-engine/physics/gjk"
	"github.com/ignis-engine/physics/manifold"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

// convexPart pairs a convex sub-shape yielded by a Concave collider's
// ProcessOverlappingParts with its world transform, so it can stand in for
// a gjk.Supporter exactly as a RigidBody does. Used only for the GJK/EPA
// geometry query, which needs nothing but correct world-space points.
type convexPart struct {
	Shape     shape.Convex
	Transform spatial.Transform
}

func (p convexPart) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	local := p.Transform.WorldToLocalDirection(direction)
	return p.Transform.LocalToWorldPoint(p.Shape.Support(local))
}

func (p convexPart) Center() mgl64.Vec3 { return p.Transform.Position }

// localizedConvex re-expresses a concave collider's convex sub-part
// directly in the OWNING BODY's local frame via a fixed relative offset,
// so manifold.Instance can always use the body's own Transform - the same
// invariant a directly-attached convex collider gets for free. Without
// this, a retained contact's local anchor would be tied to whichever
// sub-part transform happened to produce it, and BeginFrame's single-
// transform refresh (spec.md S4.4) would re-project it incorrectly once a
// different sub-part (or none) is yielded on a later tick.
type localizedConvex struct {
	shape.Convex
	offset spatial.Transform
}

func (l localizedConvex) Support(direction mgl64.Vec3) mgl64.Vec3 {
	childLocal := l.offset.WorldToLocalDirection(direction)
	return l.offset.LocalToWorldPoint(l.Convex.Support(childLocal))
}

func (l localizedConvex) GetContactFeature(direction mgl64.Vec3, buffer *[shape.MaxContactFeaturePoints]mgl64.Vec3) int {
	childLocal := l.offset.WorldToLocalDirection(direction)
	var childBuffer [shape.MaxContactFeaturePoints]mgl64.Vec3
	n := l.Convex.GetContactFeature(childLocal, &childBuffer)
	for i := 0; i < n; i++ {
		buffer[i] = l.offset.LocalToWorldPoint(childBuffer[i])
	}
	return n
}

// relativeTransform returns child's pose expressed relative to parent:
// composing parent with the result reproduces child. Since a concave
// collider's sub-parts are rigidly attached to their owning body, this
// relative offset is frame-invariant across ticks even though both parent
// and child transforms change every tick.
func relativeTransform(parent, child spatial.Transform) spatial.Transform {
	invRot := parent.InverseRotation
	rot := invRot.Mul(child.Rotation).Normalize()
	return spatial.Transform{
		Position:        invRot.Rotate(child.Position.Sub(parent.Position)),
		Rotation:        rot,
		InverseRotation: rot.Inverse(),
	}
}

func bodyInstance(rb *body.RigidBody) manifold.Instance {
	convex, _ := rb.Collider.(shape.Convex)
	return manifold.Instance{Transform: rb.Transform, Shape: convex}
}

// manifoldEntry is the world-owned record of one body pair's persistent
// contact patch, keyed by canonical BodyHandle pair; it also remembers the
// (bodyA, bodyB) pointers in the same canonical order so a later
// constraint-assembly pass can build a ContactConstraint from it without
// re-deriving orientation.
type manifoldEntry struct {
	manifold     *manifold.Manifold
	bodyA, bodyB *body.RigidBody
}

// canonicalPair orders a and b by BodyHandle so the same unordered pair
// always produces the same (first, second) orientation across ticks,
// regardless of which order the broad-phase happened to discover them in -
// required since a manifold's local anchors and EPA's normal direction are
// orientation-sensitive.
func canonicalPair(a, b *body.RigidBody) (*body.RigidBody, *body.RigidBody) {
	if bytes.Compare(a.Handle[:], b.Handle[:]) > 0 {
		return b, a
	}
	return a, b
}

// narrowPhase runs the narrow-phase test for every broad-phase candidate
// pair, folding results into each pair's persistent manifold, and returns
// the manifoldEntry for every pair that ended the frame Intersecting.
// Manifolds for pairs no longer reported by the broad-phase, or that ended
// the frame Disjoint, are dropped rather than carried forever (spec.md
// S4.4/S9).
func (w *World) narrowPhase(pairs []BodyPair) []*manifoldEntry {
	touched := make(map[pairKey]bool, len(pairs))
	active := make([]*manifoldEntry, 0, len(pairs))

	for _, pair := range pairs {
		a, b := canonicalPair(pair.BodyA, pair.BodyB)
		key := makePairKey(a.Handle, b.Handle)
		touched[key] = true

		entry := w.manifolds[key]
		if entry == nil {
			entry = &manifoldEntry{manifold: &manifold.Manifold{ContactSeparation: w.config.ContactSeparation}, bodyA: a, bodyB: b}
			w.manifolds[key] = entry
		}

		w.testPair(a, b, entry.manifold)

		if entry.manifold.State == manifold.Intersecting {
			active = append(active, entry)
		} else {
			delete(w.manifolds, key)
		}
	}

	for key := range w.manifolds {
		if !touched[key] {
			delete(w.manifolds, key)
		}
	}

	return active
}

// testPair dispatches on each side's collider Kind and folds every
// resulting EPA hit into m via BeginFrame/Accumulate/EndFrame.
func (w *World) testPair(a, b *body.RigidBody, m *manifold.Manifold) {
	m.BeginFrame(bodyInstance(a), bodyInstance(b))

	aConvex := a.Collider.Kind() == shape.KindConvex
	bConvex := b.Collider.Kind() == shape.KindConvex
	convexA, _ := a.Collider.(shape.Convex)
	convexB, _ := b.Collider.(shape.Convex)

	switch {
	case aConvex && bConvex:
		w.accumulateConvexConvex(a, convexA, a.Transform, b, convexB, b.Transform, m)

	case aConvex && !bConvex:
		concaveB := b.Collider.(shape.Concave)
		concaveB.ProcessOverlappingParts(a.Collider.AABB(), w.config.ContactPrecision, func(part shape.Convex, partTransform spatial.Transform) {
			w.accumulateConvexConvex(a, convexA, a.Transform, b, part, partTransform, m)
		})

	case !aConvex && bConvex:
		concaveA := a.Collider.(shape.Concave)
		concaveA.ProcessOverlappingParts(b.Collider.AABB(), w.config.ContactPrecision, func(part shape.Convex, partTransform spatial.Transform) {
			w.accumulateConvexConvex(a, part, partTransform, b, convexB, b.Transform, m)
		})

	default:
		concaveA := a.Collider.(shape.Concave)
		concaveB := b.Collider.(shape.Concave)
		concaveA.ProcessOverlappingParts(b.Collider.AABB(), w.config.ContactPrecision, func(partA shape.Convex, partTransformA spatial.Transform) {
			partAABB := aabbOf(partA, partTransformA)
			concaveB.ProcessOverlappingParts(partAABB, w.config.ContactPrecision, func(partB shape.Convex, partTransformB spatial.Transform) {
				w.accumulateConvexConvex(a, partA, partTransformA, b, partB, partTransformB, m)
			})
		})
	}

	m.EndFrame()
}

// accumulateConvexConvex runs one GJK/EPA test between a convex part of
// bodyA (shapeA under transformA) and a convex part of bodyB (shapeB under
// transformB), folding a hit into m using each side's OWN body transform
// as the manifold's persistent anchor frame - see localizedConvex.
func (w *World) accumulateConvexConvex(bodyA *body.RigidBody, shapeA shape.Convex, transformA spatial.Transform, bodyB *body.RigidBody, shapeB shape.Convex, transformB spatial.Transform, m *manifold.Manifold) {
	supporterA := convexPart{Shape: shapeA, Transform: transformA}
	supporterB := convexPart{Shape: shapeB, Transform: transformB}

	var simplex gjk.Simplex
	if !gjk.GJKWithConfig(supporterA, supporterB, &simplex, w.config.GJKEpsilon, w.config.GJKMaxIterations) {
		return
	}

	result, err := epa.EPAWithConfig(supporterA, supporterB, &simplex, w.config.EPAMinFaceDelta, w.config.EPAMaxIterations)
	if err != nil {
		w.Logger.Debug("narrow-phase EPA did not converge, treating pair as separated this frame",
			slog.String("bodyA", bodyA.Handle.String()), slog.String("bodyB", bodyB.Handle.String()), slog.Any("err", err))
		return
	}

	instanceA := manifold.Instance{Transform: bodyA.Transform, Shape: localizeIfNeeded(shapeA, bodyA.Transform, transformA)}
	instanceB := manifold.Instance{Transform: bodyB.Transform, Shape: localizeIfNeeded(shapeB, bodyB.Transform, transformB)}
	m.Accumulate(instanceA, instanceB, result.Normal, result.Depth)
}

// localizeIfNeeded wraps shapePart in localizedConvex when its transform
// differs from the owning body's transform (a concave sub-part); a
// directly-attached convex collider's part transform is always identical
// to its body's transform, so it passes through unchanged.
func localizeIfNeeded(shapePart shape.Convex, bodyTransform, partTransform spatial.Transform) shape.Convex {
	if partTransform == bodyTransform {
		return shapePart
	}
	return localizedConvex{Convex: shapePart, offset: relativeTransform(bodyTransform, partTransform)}
}

// aabbOf computes the world AABB of a convex part under transform, used to
// scope the second half of a concave-vs-concave double iteration (spec.md
// S4.4) without requiring every Convex to carry a standalone AABB method.
func aabbOf(part shape.Convex, transform spatial.Transform) spatial.AABB {
	part.SetWorldTransform(transform)
	return part.AABB()
}
