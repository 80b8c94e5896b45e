package shape

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/ignis-engine/physics/spatial"
)

func TestBoxSupportPicksFarthestCorner(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 2, 3})
	got := b.Support(mgl64.Vec3{1, 1, 1})
	want := mgl64.Vec3{1, 2, 3}
	if got != want {
		t.Fatalf("expected support %v, got %v", want, got)
	}
}

func TestBoxGetContactFeatureReturnsFourCoplanarPoints(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 1, 1})
	var buf [MaxContactFeaturePoints]mgl64.Vec3
	n := b.GetContactFeature(mgl64.Vec3{0, 1, 0}, &buf)
	if n != 4 {
		t.Fatalf("expected 4 face vertices, got %d", n)
	}
	for i := 0; i < n; i++ {
		if buf[i].Y() != 1 {
			t.Fatalf("expected all face vertices on y=1 plane, got %v", buf[i])
		}
	}
}

func TestBoxComputeMassAndInertia(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 1, 1})
	mass := b.ComputeMass(1.0)
	if mass != 8.0 {
		t.Fatalf("expected mass 8 for a 2x2x2 box at density 1, got %v", mass)
	}

	inertia := b.ComputeInertia(mass)
	if inertia[0] != inertia[4] || inertia[4] != inertia[8] {
		t.Fatalf("expected a cube's inertia tensor to be isotropic, got %v", inertia)
	}
}

func TestBoxSetWorldTransformProducesAxisAlignedAABBAtOrigin(t *testing.T) {
	b := NewBox(mgl64.Vec3{1, 2, 3})
	b.SetWorldTransform(spatial.NewTransform())

	aabb := b.AABB()
	if aabb.Min != (mgl64.Vec3{-1, -2, -3}) || aabb.Max != (mgl64.Vec3{1, 2, 3}) {
		t.Fatalf("unexpected AABB: %+v", aabb)
	}
	if !b.Updated() {
		t.Fatal("expected Updated() to be true right after SetWorldTransform")
	}
	b.ResetUpdatedState()
	if b.Updated() {
		t.Fatal("expected Updated() to be false after ResetUpdatedState")
	}
}

func TestSphereSupportIsRadiusAlongDirection(t *testing.T) {
	s := NewSphere(2)
	got := s.Support(mgl64.Vec3{1, 0, 0})
	if math.Abs(got.Len()-2) > 1e-9 {
		t.Fatalf("expected support point at distance 2 from origin, got %v", got)
	}
}

func TestSphereComputeMassMatchesVolumeFormula(t *testing.T) {
	s := NewSphere(1)
	mass := s.ComputeMass(1.0)
	want := (4.0 / 3.0) * math.Pi
	if math.Abs(mass-want) > 1e-9 {
		t.Fatalf("expected mass %v, got %v", want, mass)
	}
}

func TestCapsuleSupportPicksCorrectEndCap(t *testing.T) {
	c := NewCapsule(0.5, 1.0)
	top := c.Support(mgl64.Vec3{0, 1, 0})
	bottom := c.Support(mgl64.Vec3{0, -1, 0})

	if top.Y() <= 0 || bottom.Y() >= 0 {
		t.Fatalf("expected support to pick the end-cap matching direction, got top=%v bottom=%v", top, bottom)
	}
}

func TestPlaneIsFlatAndFarExtentInWorldSpace(t *testing.T) {
	p := NewPlane(mgl64.Vec3{0, 1, 0}, 0)
	p.SetWorldTransform(spatial.NewTransform())

	aabb := p.AABB()
	if aabb.Max.Y()-aabb.Min.Y() > 2 {
		t.Fatal("expected the plane's slab to stay thin along its own normal")
	}
	if aabb.Max.X() < 1e6 || aabb.Max.Z() < 1e6 {
		t.Fatal("expected the plane's AABB to extend far along its tangent axes")
	}
}

func TestPlaneComputeMassIsInfinite(t *testing.T) {
	p := NewPlane(mgl64.Vec3{0, 1, 0}, 0)
	if !math.IsInf(p.ComputeMass(1.0), 1) {
		t.Fatal("expected a plane to report infinite mass")
	}
}
