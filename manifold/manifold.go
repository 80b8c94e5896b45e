package manifold

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

const (
	// MaxContactPoints bounds a manifold to the canonical 4-point contact
	// patch (Erin Catto, GDC 2007) needed for stable box-on-box resting.
	MaxContactPoints = 4

	maxBufferSize = 8

	epsilonColinear       = 1e-6
	epsilonDistance       = 1e-6
	epsilonParallel       = 1e-10
	tangentBasisThreshold = 0.9

	// defaultContactSeparation is the local-space distance under which a
	// freshly produced contact is considered "the same point" as a
	// retained one and fuses with it (carrying over its warm-start
	// impulses) instead of being inserted alongside it. Used whenever a
	// Manifold's own ContactSeparation is left at its zero value, so
	// manifolds built directly (tests, a zero-value &Manifold{}) keep
	// working without a caller having to set it explicitly.
	defaultContactSeparation = 0.02
)

// Instance pairs a convex shape with the world transform it should be
// interpreted under - a body's directly attached collider, or a convex
// sub-part yielded by a Concave collider's ProcessOverlappingParts.
type Instance struct {
	Transform spatial.Transform
	Shape     shape.Convex
}

// State distinguishes whether a Manifold's owning pair is currently
// touching; a World prunes manifolds that stay Disjoint across a frame
// rather than carrying them forever.
type State int

const (
	Disjoint State = iota
	Intersecting
)

// Manifold is the accumulated, persistent contact patch between one pair of
// convex instances (or, for a concave owner, the single patch shared by all
// of its overlapping convex sub-parts, per spec.md S4.4). It survives
// across ticks: Update refreshes existing points from the bodies' current
// transforms, folds in the newest EPA result(s), and reduces back down to
// MaxContactPoints.
type Manifold struct {
	Normal   mgl64.Vec3
	Contacts []Contact
	State    State

	// ContactSeparation overrides defaultContactSeparation for this
	// manifold's insertOrFuse test (Config.ContactSeparation, spec.md
	// S4.4 invariant (b)); zero means "use the default".
	ContactSeparation float64
}

// separationThreshold returns the configured fusion distance, falling back
// to defaultContactSeparation for a zero-value Manifold.
func (m *Manifold) separationThreshold() float64 {
	if m.ContactSeparation > 0 {
		return m.ContactSeparation
	}
	return defaultContactSeparation
}

// Update is the full per-tick accumulation for a single convex/convex EPA
// result: refresh retained points, insert-or-fuse the new point, then
// reduce to at most MaxContactPoints. Equivalent to calling BeginFrame once,
// Accumulate once, and EndFrame.
func (m *Manifold) Update(a, b Instance, normal mgl64.Vec3, depth float64) {
	m.BeginFrame(a, b)
	m.Accumulate(a, b, normal, depth)
	m.EndFrame()
}

// BeginFrame refreshes the manifold's retained points against the pair's
// current transforms. Convex/concave pairs call this once per frame before
// accumulating one EPA result per overlapping convex sub-part.
func (m *Manifold) BeginFrame(a, b Instance) {
	m.refresh(a, b)
	m.State = Disjoint
}

// Accumulate folds one EPA result (one convex/convex test, possibly one of
// several sub-part tests against a concave collider) into the manifold.
// The manifold's Normal is overwritten by the latest call - callers
// processing a concave owner should call this deepest-penetration-last so
// the retained Normal best represents the overall contact.
func (m *Manifold) Accumulate(a, b Instance, normal mgl64.Vec3, depth float64) {
	fresh := GenerateContacts(a, b, normal, depth)
	for _, c := range fresh {
		m.insertOrFuse(c)
	}
	m.Normal = normal
	m.State = Intersecting
}

// EndFrame reduces the accumulated point set back down to MaxContactPoints.
func (m *Manifold) EndFrame() {
	if len(m.Contacts) > MaxContactPoints {
		m.reduceToMax(m.Normal)
	}
}

// refresh re-projects each retained contact's local anchors into world
// space and recomputes penetration from the manifold's last normal,
// dropping points that separated beyond tolerance or drifted tangentially
// too far to still describe the same contact.
func (m *Manifold) refresh(a, b Instance) {
	if len(m.Contacts) == 0 {
		return
	}

	const separationTolerance = 0.01
	const tangentDriftTolerance = 0.05

	kept := m.Contacts[:0]
	for _, c := range m.Contacts {
		worldA := a.Transform.LocalToWorldPoint(c.LocalAnchorA)
		worldB := b.Transform.LocalToWorldPoint(c.LocalAnchorB)

		penetration := -worldB.Sub(worldA).Dot(m.Normal)
		if penetration < -separationTolerance {
			continue
		}

		tangentialDrift := worldB.Sub(worldA).Sub(m.Normal.Mul(-penetration))
		if tangentialDrift.Len() > tangentDriftTolerance {
			continue
		}

		c.WorldPosition = worldA.Add(worldB).Mul(0.5)
		c.Penetration = penetration
		kept = append(kept, c)
	}
	m.Contacts = kept
}

// insertOrFuse adds freshPoint unless it is within separationThreshold (in
// either body's local space) of a retained point, in which case the
// retained point's warm-start impulses are preserved and only its geometry
// is refreshed - keeping the solver's accumulated lambda alive across ticks.
func (m *Manifold) insertOrFuse(freshPoint Contact) {
	threshold := m.separationThreshold()
	for i := range m.Contacts {
		if m.Contacts[i].LocalAnchorA.Sub(freshPoint.LocalAnchorA).LenSqr() < threshold*threshold ||
			m.Contacts[i].LocalAnchorB.Sub(freshPoint.LocalAnchorB).LenSqr() < threshold*threshold {
			m.Contacts[i].WorldPosition = freshPoint.WorldPosition
			m.Contacts[i].Penetration = freshPoint.Penetration
			m.Contacts[i].LocalAnchorA = freshPoint.LocalAnchorA
			m.Contacts[i].LocalAnchorB = freshPoint.LocalAnchorB
			return
		}
	}
	m.Contacts = append(m.Contacts, freshPoint)
}

// reduceToMax keeps the deepest point, then greedily picks three more, each
// time the one whose summed squared tangent-plane distance to the points
// already kept is largest - a "deepest + spread" 4-point reduction rule.
func (m *Manifold) reduceToMax(normal mgl64.Vec3) {
	deepestIdx := 0
	for i, c := range m.Contacts {
		if c.Penetration > m.Contacts[deepestIdx].Penetration {
			deepestIdx = i
		}
	}

	t1, t2 := getTangentBasis(normal)
	kept := []Contact{m.Contacts[deepestIdx]}
	used := map[int]bool{deepestIdx: true}

	for len(kept) < MaxContactPoints && len(kept) < len(m.Contacts) {
		bestIdx := -1
		bestScore := -math.MaxFloat64
		for i, c := range m.Contacts {
			if used[i] {
				continue
			}
			score := 0.0
			for _, k := range kept {
				d := c.WorldPosition.Sub(k.WorldPosition)
				x, y := d.Dot(t1), d.Dot(t2)
				score += x*x + y*y
			}
			if score > bestScore {
				bestScore, bestIdx = score, i
			}
		}
		if bestIdx < 0 {
			break
		}
		used[bestIdx] = true
		kept = append(kept, m.Contacts[bestIdx])
	}

	m.Contacts = kept
}

// contactBuilder holds the fixed-size working buffers for one GenerateContacts
// call, pooled to avoid per-collision-pair allocation.
type contactBuilder struct {
	localFeatureA [maxBufferSize]mgl64.Vec3
	localFeatureB [maxBufferSize]mgl64.Vec3
	worldFeatureA [maxBufferSize]mgl64.Vec3
	worldFeatureB [maxBufferSize]mgl64.Vec3
	clipBuffer1   [maxBufferSize]mgl64.Vec3
	clipBuffer2   [maxBufferSize]mgl64.Vec3
	tempPoints    [maxBufferSize]Contact

	localFeatureACount int
	localFeatureBCount int
	worldFeatureACount int
	worldFeatureBCount int
	clipBuffer1Count   int
	clipBuffer2Count   int
	tempPointsCount    int
}

var contactBuilderPool = sync.Pool{New: func() interface{} { return &contactBuilder{} }}

func (b *contactBuilder) Reset() {
	b.localFeatureACount = 0
	b.localFeatureBCount = 0
	b.worldFeatureACount = 0
	b.worldFeatureBCount = 0
	b.clipBuffer1Count = 0
	b.clipBuffer2Count = 0
	b.tempPointsCount = 0
}

// GenerateContacts clips a's and b's contact features (the faces/edges/
// points nearest the separating normal) against each other via
// Sutherland-Hodgman polygon clipping, yielding the raw world-space contact
// points EPA's single normal+depth answer doesn't provide by itself.
func GenerateContacts(a, b Instance, normal mgl64.Vec3, depth float64) []Contact {
	builder := contactBuilderPool.Get().(*contactBuilder)
	defer contactBuilderPool.Put(builder)
	builder.Reset()
	return builder.generate(a, b, normal, depth)
}

func (b *contactBuilder) generate(a, bb Instance, normal mgl64.Vec3, depth float64) []Contact {
	localNormalA := a.Transform.WorldToLocalDirection(normal)
	localNormalB := bb.Transform.WorldToLocalDirection(normal.Mul(-1))

	b.localFeatureACount = a.Shape.GetContactFeature(localNormalA, &b.localFeatureA)
	b.localFeatureBCount = bb.Shape.GetContactFeature(localNormalB, &b.localFeatureB)

	for i := 0; i < b.localFeatureACount; i++ {
		b.worldFeatureA[i] = a.Transform.LocalToWorldPoint(b.localFeatureA[i])
	}
	b.worldFeatureACount = b.localFeatureACount

	for i := 0; i < b.localFeatureBCount; i++ {
		b.worldFeatureB[i] = bb.Transform.LocalToWorldPoint(b.localFeatureB[i])
	}
	b.worldFeatureBCount = b.localFeatureBCount

	var incident, reference *[maxBufferSize]mgl64.Vec3
	var incidentCount, referenceCount int

	if b.worldFeatureBCount <= b.worldFeatureACount {
		incident, incidentCount = &b.worldFeatureB, b.worldFeatureBCount
		reference, referenceCount = &b.worldFeatureA, b.worldFeatureACount
	} else {
		incident, incidentCount = &b.worldFeatureA, b.worldFeatureACount
		reference, referenceCount = &b.worldFeatureB, b.worldFeatureBCount
	}

	makeContact := func(world mgl64.Vec3) Contact {
		localA := a.Transform.InverseRotation.Rotate(world.Sub(a.Transform.Position))
		localB := bb.Transform.InverseRotation.Rotate(world.Sub(bb.Transform.Position))
		return Contact{LocalAnchorA: localA, LocalAnchorB: localB, WorldPosition: world, Penetration: depth}
	}

	if incidentCount == 1 {
		b.tempPoints[0] = makeContact(incident[0])
		b.tempPointsCount = 1
		return b.buildResult()
	}

	if incidentCount == 0 {
		b.tempPoints[0] = makeContact(a.Transform.Position.Add(bb.Transform.Position).Mul(0.5))
		b.tempPointsCount = 1
		return b.buildResult()
	}

	clippedCount := b.clipIncidentAgainstReference(incident, incidentCount, reference, referenceCount, normal)
	if clippedCount > 0 && referenceCount >= 3 {
		b.clipAgainstReferencePlane(clippedCount, reference, normal, makeContact)
	}

	if b.tempPointsCount == 0 {
		b.tempPoints[0] = makeContact(incident[0])
		b.tempPointsCount = 1
	}

	return b.buildResult()
}

func (b *contactBuilder) clipIncidentAgainstReference(incident *[maxBufferSize]mgl64.Vec3, incidentCount int, reference *[maxBufferSize]mgl64.Vec3, referenceCount int, normal mgl64.Vec3) int {
	if referenceCount < 2 {
		for i := 0; i < incidentCount; i++ {
			b.clipBuffer1[i] = incident[i]
		}
		b.clipBuffer1Count = incidentCount
		return incidentCount
	}

	for i := 0; i < incidentCount; i++ {
		b.clipBuffer1[i] = incident[i]
	}
	b.clipBuffer1Count = incidentCount
	b.clipBuffer2Count = 0

	useBuffer1 := true
	center := centroid(reference, referenceCount)

	for i := 0; i < referenceCount; i++ {
		var inputBuffer, outputBuffer *[maxBufferSize]mgl64.Vec3
		var inputCount int
		var outputCount *int

		if useBuffer1 {
			inputBuffer, inputCount = &b.clipBuffer1, b.clipBuffer1Count
			outputBuffer, outputCount = &b.clipBuffer2, &b.clipBuffer2Count
		} else {
			inputBuffer, inputCount = &b.clipBuffer2, b.clipBuffer2Count
			outputBuffer, outputCount = &b.clipBuffer1, &b.clipBuffer1Count
		}
		*outputCount = 0
		if inputCount == 0 {
			break
		}

		v1 := reference[i]
		v2 := reference[(i+1)%referenceCount]

		edge := v2.Sub(v1)
		edgeCrossNormal := edge.Cross(normal)
		edgeCrossLen := edgeCrossNormal.Len()
		if edgeCrossLen < epsilonColinear {
			continue
		}
		clipNormal := edgeCrossNormal.Mul(1.0 / edgeCrossLen)

		if center.Sub(v1).Dot(clipNormal) < 0 {
			clipNormal = clipNormal.Mul(-1)
		}

		clipPolygonAgainstPlane(inputBuffer, inputCount, v1, clipNormal, outputBuffer, outputCount)
		useBuffer1 = !useBuffer1
	}

	if useBuffer1 {
		return b.clipBuffer1Count
	}
	b.clipBuffer1Count = b.clipBuffer2Count
	copy(b.clipBuffer1[:b.clipBuffer2Count], b.clipBuffer2[:b.clipBuffer2Count])
	return b.clipBuffer1Count
}

func clipPolygonAgainstPlane(input *[maxBufferSize]mgl64.Vec3, inputCount int, planePoint, planeNormal mgl64.Vec3, output *[maxBufferSize]mgl64.Vec3, outputCount *int) {
	*outputCount = 0
	if inputCount == 0 {
		return
	}

	for i := 0; i < inputCount; i++ {
		current := input[i]
		next := input[(i+1)%inputCount]

		currentDist := current.Sub(planePoint).Dot(planeNormal)
		nextDist := next.Sub(planePoint).Dot(planeNormal)

		if currentDist >= -epsilonDistance {
			if *outputCount < maxBufferSize {
				output[*outputCount] = current
				*outputCount++
			}
			if nextDist < -epsilonDistance && *outputCount < maxBufferSize {
				output[*outputCount] = lineIntersectPlane(current, next, planePoint, planeNormal)
				*outputCount++
			}
		} else if nextDist >= -epsilonDistance && *outputCount < maxBufferSize {
			output[*outputCount] = lineIntersectPlane(current, next, planePoint, planeNormal)
			*outputCount++
		}
	}
}

func (b *contactBuilder) clipAgainstReferencePlane(clippedCount int, reference *[maxBufferSize]mgl64.Vec3, normal mgl64.Vec3, makeContact func(mgl64.Vec3) Contact) {
	b.tempPointsCount = 0

	edge1 := reference[1].Sub(reference[0])
	edge2 := reference[2].Sub(reference[0])
	refNormal := edge1.Cross(edge2)
	if refNormal.LenSqr() < 1e-16 {
		refNormal = normal
	} else {
		refNormal = refNormal.Normalize()
	}
	if refNormal.Dot(normal) < 0 {
		refNormal = refNormal.Mul(-1)
	}

	offset := reference[0].Dot(refNormal)

	for i := 0; i < clippedCount && b.tempPointsCount < maxBufferSize; i++ {
		point := b.clipBuffer1[i]
		if point.Dot(refNormal)-offset <= 0 {
			b.tempPoints[b.tempPointsCount] = makeContact(point)
			b.tempPointsCount++
		}
	}
}

func (b *contactBuilder) buildResult() []Contact {
	result := make([]Contact, b.tempPointsCount)
	copy(result, b.tempPoints[:b.tempPointsCount])
	return result
}

func centroid(points *[maxBufferSize]mgl64.Vec3, count int) mgl64.Vec3 {
	if count == 0 {
		return mgl64.Vec3{}
	}
	sum := mgl64.Vec3{}
	for i := 0; i < count; i++ {
		sum = sum.Add(points[i])
	}
	return sum.Mul(1.0 / float64(count))
}

func lineIntersectPlane(p1, p2, planePoint, planeNormal mgl64.Vec3) mgl64.Vec3 {
	dir := p2.Sub(p1)
	dist := p1.Sub(planePoint).Dot(planeNormal)
	denom := dir.Dot(planeNormal)
	if math.Abs(denom) < epsilonParallel {
		return p1
	}
	t := -dist / denom
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return p1.Add(dir.Mul(t))
}

func getTangentBasis(normal mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	tangent1 := mgl64.Vec3{1, 0, 0}
	if math.Abs(normal.X()) > tangentBasisThreshold {
		tangent1 = mgl64.Vec3{0, 1, 0}
	}
	tangent1 = tangent1.Sub(normal.Mul(tangent1.Dot(normal))).Normalize()
	tangent2 := normal.Cross(tangent1).Normalize()
	return tangent1, tangent2
}
