package spatial

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestAABBOverlapsDetectsIntersection(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{0.5, 0.5, 0.5}, Max: mgl64.Vec3{1.5, 1.5, 1.5}}
	if !a.Overlaps(b, 0) {
		t.Fatal("expected overlapping AABBs to report overlap")
	}
}

func TestAABBOverlapsRejectsDisjoint(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{10, 10, 10}, Max: mgl64.Vec3{11, 11, 11}}
	if a.Overlaps(b, 0) {
		t.Fatal("expected disjoint AABBs to report no overlap")
	}
}

func TestAABBExpandGrowsToContainBoth(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	b := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{0.5, 0.5, 0.5}}

	e := a.Expand(b)
	if e.Min != (mgl64.Vec3{-1, -1, -1}) || e.Max != (mgl64.Vec3{1, 1, 1}) {
		t.Fatalf("unexpected expanded AABB: %+v", e)
	}
}

func TestAABBContainsPoint(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{0, 0, 0}, Max: mgl64.Vec3{1, 1, 1}}
	if !a.ContainsPoint(mgl64.Vec3{0.5, 0.5, 0.5}) {
		t.Fatal("expected the AABB to contain its own center")
	}
	if a.ContainsPoint(mgl64.Vec3{2, 2, 2}) {
		t.Fatal("expected the AABB to reject a far-outside point")
	}
}

func TestAABBRayIntersectHitsThroughBox(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	hit, dist := a.RayIntersect(mgl64.Vec3{0, 0, -10}, mgl64.Vec3{0, 0, 1}, 1e-9)
	if !hit {
		t.Fatal("expected ray through the box center to hit")
	}
	if math.Abs(dist-9) > 1e-6 {
		t.Fatalf("expected hit distance 9, got %v", dist)
	}
}

func TestAABBRayIntersectMissesParallelRay(t *testing.T) {
	a := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	hit, _ := a.RayIntersect(mgl64.Vec3{0, 10, -10}, mgl64.Vec3{0, 0, 1}, 1e-9)
	if hit {
		t.Fatal("expected a ray passing above the box to miss")
	}
}

func TestAABBTransformIdentityRotationTranslates(t *testing.T) {
	local := AABB{Min: mgl64.Vec3{-1, -1, -1}, Max: mgl64.Vec3{1, 1, 1}}
	rotated := local.Transform(mgl64.Vec3{5, 0, 0}, mgl64.QuatIdent())

	if rotated.Min != (mgl64.Vec3{4, -1, -1}) || rotated.Max != (mgl64.Vec3{6, 1, 1}) {
		t.Fatalf("expected identity-rotation transform to just translate, got %+v", rotated)
	}
}

func TestNewTransformIsIdentity(t *testing.T) {
	tr := NewTransform()
	if tr.Position != (mgl64.Vec3{0, 0, 0}) {
		t.Fatal("expected identity transform to sit at the origin")
	}
	if tr.Rotation != mgl64.QuatIdent() {
		t.Fatal("expected identity transform to carry no rotation")
	}
}

func TestSetRotationKeepsInverseInSync(t *testing.T) {
	var tr Transform
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	tr.SetRotation(q)

	dir := mgl64.Vec3{1, 0, 0}
	roundTrip := tr.InverseRotation.Rotate(tr.Rotation.Rotate(dir))
	if roundTrip.Sub(dir).Len() > 1e-9 {
		t.Fatalf("expected Rotation/InverseRotation to round-trip a direction, got %v", roundTrip)
	}
}

func TestLocalToWorldPointAppliesRotationThenTranslation(t *testing.T) {
	var tr Transform
	tr.SetRotation(mgl64.QuatIdent())
	tr.Position = mgl64.Vec3{1, 2, 3}

	got := tr.LocalToWorldPoint(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{2, 2, 3}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
