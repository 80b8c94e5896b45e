package gjk

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// sphereSupporter is a minimal Supporter for a sphere centered at Center
// with the given Radius, used to exercise GJK without depending on the
// shape package.
type sphereSupporter struct {
	center mgl64.Vec3
	radius float64
}

func (s sphereSupporter) SupportWorld(direction mgl64.Vec3) mgl64.Vec3 {
	if direction.LenSqr() < 1e-18 {
		return s.center
	}
	return s.center.Add(direction.Normalize().Mul(s.radius))
}

func (s sphereSupporter) Center() mgl64.Vec3 { return s.center }

func TestGJKOverlappingSpheres(t *testing.T) {
	a := sphereSupporter{center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := sphereSupporter{center: mgl64.Vec3{1, 0, 0}, radius: 1}

	var simplex Simplex
	if !GJK(a, b, &simplex) {
		t.Fatal("expected overlapping spheres to report overlap")
	}
}

func TestGJKDisjointSpheres(t *testing.T) {
	a := sphereSupporter{center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := sphereSupporter{center: mgl64.Vec3{10, 0, 0}, radius: 1}

	var simplex Simplex
	if GJK(a, b, &simplex) {
		t.Fatal("expected far-apart spheres to report no overlap")
	}
}

func TestGJKTouchingSpheresAtEpsilon(t *testing.T) {
	// Spheres exactly touching (distance between centers == sum of radii)
	// sit right at the GJK boundary; assert it does not panic and returns
	// a well-defined bool either way.
	a := sphereSupporter{center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := sphereSupporter{center: mgl64.Vec3{2, 0, 0}, radius: 1}

	var simplex Simplex
	_ = GJKWithConfig(a, b, &simplex, DefaultEpsilon, DefaultMaxIterations)
}

func TestGJKWithConfigRespectsIterationCap(t *testing.T) {
	a := sphereSupporter{center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := sphereSupporter{center: mgl64.Vec3{0.5, 0, 0}, radius: 1}

	var simplex Simplex
	// A 0-iteration budget can still resolve the trivial 1-point case but
	// must not hang or panic regardless of outcome.
	_ = GJKWithConfig(a, b, &simplex, 1e-6, 0)
}

func TestMinkowskiSupportIsDifferenceOfSupports(t *testing.T) {
	a := sphereSupporter{center: mgl64.Vec3{0, 0, 0}, radius: 1}
	b := sphereSupporter{center: mgl64.Vec3{3, 0, 0}, radius: 1}

	dir := mgl64.Vec3{1, 0, 0}
	got := MinkowskiSupport(a, b, dir)
	want := a.SupportWorld(dir).Sub(b.SupportWorld(dir.Mul(-1)))

	if got.Sub(want).LenSqr() > 1e-12 {
		t.Fatalf("MinkowskiSupport mismatch: got %v, want %v", got, want)
	}
}
