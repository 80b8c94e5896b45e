package manifold

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/shape"
	"github.com/ignis-engine/physics/spatial"
)

func boxInstance(t *testing.T, halfExtents mgl64.Vec3, pos mgl64.Vec3) Instance {
	t.Helper()
	b := shape.NewBox(halfExtents)
	tr := spatial.NewTransform()
	tr.Position = pos
	b.SetWorldTransform(tr)
	return Instance{Transform: tr, Shape: b}
}

func TestManifoldAccumulateProducesContactPoints(t *testing.T) {
	a := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 0})
	b := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1.9, 0, 0})

	var m Manifold
	m.Update(a, b, mgl64.Vec3{1, 0, 0}, 0.1)

	if m.State != Intersecting {
		t.Fatalf("expected Intersecting state, got %v", m.State)
	}
	if len(m.Contacts) == 0 {
		t.Fatal("expected at least one contact point from two overlapping boxes")
	}
	if len(m.Contacts) > MaxContactPoints {
		t.Fatalf("expected at most %d contacts, got %d", MaxContactPoints, len(m.Contacts))
	}
}

func TestManifoldRefreshDropsSeparatedContacts(t *testing.T) {
	a := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 0})
	b := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1.9, 0, 0})

	var m Manifold
	m.Update(a, b, mgl64.Vec3{1, 0, 0}, 0.1)
	if len(m.Contacts) == 0 {
		t.Fatal("setup failed: expected contacts before separation")
	}

	// Move b far away and refresh: every retained point should now read as
	// separated beyond tolerance and be dropped.
	bFar := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{100, 0, 0})
	m.BeginFrame(a, bFar)

	if len(m.Contacts) != 0 {
		t.Fatalf("expected refresh to drop all contacts once separated, got %d", len(m.Contacts))
	}
}

func TestManifoldWarmStartImpulsesSurviveFusion(t *testing.T) {
	a := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 0})
	b := boxInstance(t, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1.9, 0, 0})

	var m Manifold
	m.Update(a, b, mgl64.Vec3{1, 0, 0}, 0.1)
	if len(m.Contacts) == 0 {
		t.Fatal("setup failed: expected at least one contact")
	}
	m.Contacts[0].NormalImpulse = 42.0

	// A near-identical second EPA result for the same pair should fuse with
	// the retained point (within contactSeparation) rather than replacing it,
	// keeping the warm-started impulse.
	m.Update(a, b, mgl64.Vec3{1, 0, 0}, 0.11)

	found := false
	for _, c := range m.Contacts {
		if c.NormalImpulse == 42.0 {
			found = true
		}
	}
	if !found {
		t.Fatal("expected warm-started NormalImpulse to survive a fused refresh")
	}
}

func TestGenerateContactsSinglePointFallback(t *testing.T) {
	// Two spheres only ever produce a single contact feature point each;
	// GenerateContacts must still return exactly one contact, not clip an
	// empty polygon.
	sphereInstance := func(radius float64, pos mgl64.Vec3) Instance {
		s := shape.NewSphere(radius)
		tr := spatial.NewTransform()
		tr.Position = pos
		s.SetWorldTransform(tr)
		return Instance{Transform: tr, Shape: s}
	}

	a := sphereInstance(1, mgl64.Vec3{0, 0, 0})
	b := sphereInstance(1, mgl64.Vec3{1.5, 0, 0})

	contacts := GenerateContacts(a, b, mgl64.Vec3{1, 0, 0}, 0.5)
	if len(contacts) != 1 {
		t.Fatalf("expected exactly one contact point for sphere-sphere, got %d", len(contacts))
	}
}
