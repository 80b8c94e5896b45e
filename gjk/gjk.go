// Package gjk implements the Gilbert-Johnson-Keerthi (GJK) algorithm for
// convex overlap testing and its conservative-advancement ray-cast variant.
//
// GJK detects whether two convex shapes overlap by testing if their
// Minkowski difference contains the origin. The algorithm builds a simplex
// incrementally, converging toward the origin in typically 3-6 iterations.
//
// References:
//   - Gilbert, Johnson, Keerthi: "A Fast Procedure for Computing the Distance
//     Between Complex Objects in Three-Dimensional Space" (1988)
//   - Van den Bergen: "Collision Detection in Interactive 3D Environments" (2003)
package gjk

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Supporter is anything GJK can query a world-space support point from - a
// RigidBody backed by a Convex collider, or a convex sub-shape carved out of
// a Concave collider together with its world transform.
type Supporter interface {
	SupportWorld(direction mgl64.Vec3) mgl64.Vec3
}

// Simplex represents a set of 1-4 points in the Minkowski difference space.
// Size progression: 1 point -> 2 points (line) -> 3 points (triangle) -> 4
// points (tetrahedron).
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) Reset() {
	s.Count = 0
}

// MinkowskiSupport computes a support point in the Minkowski difference
// (A - B): furthestPoint(A, direction) - furthestPoint(B, -direction). This
// is the only query GJK needs from either shape.
func MinkowskiSupport(a, b Supporter, direction mgl64.Vec3) mgl64.Vec3 {
	supportA := a.SupportWorld(direction)
	supportB := b.SupportWorld(direction.Mul(-1))
	return supportA.Sub(supportB)
}

// centerHint lets callers that know a cheap initial direction (e.g. the
// vector between two body centers) avoid starting from a degenerate guess.
type centerHint interface {
	Center() mgl64.Vec3
}

// DefaultEpsilon and DefaultMaxIterations seed GJK when called via the
// plain GJK entry point; GJKWithConfig lets a caller (typically a World)
// override both from its own Config, per spec.md S6/S9.
const (
	DefaultEpsilon       = 1e-6
	DefaultMaxIterations = 32
)

// GJK performs convex overlap detection between two Supporters using the
// package defaults. The simplex is modified in place and, on a positive
// result, normally ends up a tetrahedron containing the origin - EPA's
// starting polytope. When the first support point lands on the origin, or
// the origin lies on the line segment, it returns true with fewer points.
func GJK(a, b Supporter, simplex *Simplex) bool {
	return GJKWithConfig(a, b, simplex, DefaultEpsilon, DefaultMaxIterations)
}

// GJKWithConfig is GJK with the termination epsilon and iteration cap taken
// from the caller's configuration instead of the package defaults.
func GJKWithConfig(a, b Supporter, simplex *Simplex, epsilon float64, maxIterations int) bool {
	direction := initialDirection(a, b)

	simplex.Points[0] = MinkowskiSupport(a, b, direction)
	simplex.Count = 1

	direction = simplex.Points[0].Mul(-1)
	if direction.LenSqr() < epsilon*epsilon {
		return true
	}

	for i := 0; i < maxIterations; i++ {
		newPoint := MinkowskiSupport(a, b, direction)

		if newPoint.Dot(direction) <= epsilon {
			return false
		}

		simplex.Points[simplex.Count] = newPoint
		simplex.Count++

		if containsOrigin(simplex, &direction) {
			return true
		}
	}

	return false
}

func initialDirection(a, b Supporter) mgl64.Vec3 {
	if ca, ok := a.(centerHint); ok {
		if cb, ok := b.(centerHint); ok {
			d := cb.Center().Sub(ca.Center())
			if d.LenSqr() > 1e-8 {
				return d
			}
		}
	}
	return mgl64.Vec3{1, 0, 0}
}

// containsOrigin tests if the simplex contains the origin and refines it,
// narrowing to whichever feature (point, edge, face) is closest.
func containsOrigin(simplex *Simplex, direction *mgl64.Vec3) bool {
	switch simplex.Count {
	case 2:
		return line(simplex, direction)
	case 3:
		return triangle(simplex, direction)
	case 4:
		return tetrahedron(simplex, direction)
	}
	return false
}

func line(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[1]
	b := simplex.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < 1e-8 {
		if ao.LenSqr() < 1e-8 {
			return true
		}
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	if ab.Dot(ao) <= 0 {
		simplex.Points[0] = a
		simplex.Count = 1
		*direction = ao
		return false
	}

	abPerp := ab.Cross(ao).Cross(ab)
	if abPerp.LenSqr() < 1e-8 {
		return true
	}

	*direction = abPerp
	return false
}

func triangle(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[2]
	b := simplex.Points[1]
	c := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)

	if abc.LenSqr() < 1e-10 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		return line(simplex, direction)
	}

	abPerp := ab.Cross(abc)
	if abPerp.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ab.Cross(ao).Cross(ab)
		return false
	}

	acPerp := abc.Cross(ac)
	if acPerp.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = a
		simplex.Count = 2
		*direction = ac.Cross(ao).Cross(ac)
		return false
	}

	if abc.Dot(ao) > 0 {
		*direction = abc
	} else {
		simplex.Points[0] = a
		simplex.Points[1] = c
		simplex.Points[2] = b
		simplex.Count = 3
		*direction = abc.Mul(-1)
	}

	return false
}

func tetrahedron(simplex *Simplex, direction *mgl64.Vec3) bool {
	a := simplex.Points[3]
	b := simplex.Points[2]
	c := simplex.Points[1]
	d := simplex.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	abc := ab.Cross(ac)
	if abc.Dot(ad) > 0 {
		abc = abc.Mul(-1)
	}

	acd := ac.Cross(ad)
	if acd.Dot(ab) > 0 {
		acd = acd.Mul(-1)
	}

	adb := ad.Cross(ab)
	if adb.Dot(ac) > 0 {
		adb = adb.Mul(-1)
	}

	if abc.LenSqr() < 1e-10 || acd.LenSqr() < 1e-10 || adb.LenSqr() < 1e-10 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if abc.Dot(ao) > 0 {
		simplex.Points[0] = c
		simplex.Points[1] = b
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if acd.Dot(ao) > 0 {
		simplex.Points[0] = d
		simplex.Points[1] = c
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	if adb.Dot(ao) > 0 {
		simplex.Points[0] = b
		simplex.Points[1] = d
		simplex.Points[2] = a
		simplex.Count = 3
		return triangle(simplex, direction)
	}

	return true
}
